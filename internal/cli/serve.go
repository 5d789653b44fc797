package cli

import (
	"fmt"

	"github.com/n0madsky/profile-api-assignment/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API, gRPC health server and outbox worker",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runtime, err := bootstrap.NewRuntime(cmd.Context(), rootOpts.ConfigPath)
			if err != nil {
				return fmt.Errorf("bootstrap api runtime: %w", err)
			}
			return runtime.RunAPI(cmd.Context())
		},
	}
}
