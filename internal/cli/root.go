package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type RootOptions struct {
	ConfigPath string
	Format     string
}

var validFormats = []string{"text", "json"}

// NewRootCommand builds the profile-api command tree. Without a subcommand
// it serves the API.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	serve := NewServeCommand(opts)

	cmd := &cobra.Command{
		Use:   "profile-api",
		Short: "Profile and product registration API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		RunE:         serve.RunE,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "configs/default.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewResolveCommand(opts))
	return cmd
}
