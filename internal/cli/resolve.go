package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/n0madsky/profile-api-assignment/internal/app/bootstrap"
	"github.com/n0madsky/profile-api-assignment/internal/application"
	"github.com/spf13/cobra"
)

type resolveResult struct {
	SKU    string   `json:"sku"`
	Leaves []string `json:"leaves"`
}

func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "resolve <sku>...",
		Short:        "Print the leaf products each SKU grants when registered",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, rootOpts, args)
		},
	}
}

func runResolve(cmd *cobra.Command, opts *RootOptions, skus []string) error {
	cfg, err := bootstrap.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := bootstrap.NewLogger(cmd.ErrOrStderr(), cfg)
	store, err := bootstrap.LoadStore(cfg, logger)
	if err != nil {
		return err
	}
	service := application.NewService(application.Dependencies{
		Profiles: store.Profiles,
		Products: store.Products,
		Ledger:   store.Ledger,
		Logger:   logger,
	})

	results := make([]resolveResult, 0, len(skus))
	for _, sku := range skus {
		leaves, err := service.ResolveProduct(cmd.Context(), sku)
		if err != nil {
			return err
		}
		results = append(results, resolveResult{SKU: sku, Leaves: leaves.Sorted()})
	}
	return writeResolve(cmd.OutOrStdout(), opts.Format, results)
}

func writeResolve(w io.Writer, format string, results []resolveResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.SKU, strings.Join(r.Leaves, ", ")); err != nil {
			return err
		}
	}
	return nil
}
