package main

import (
	"context"
	"os"

	"github.com/n0madsky/profile-api-assignment/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
