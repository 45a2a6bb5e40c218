package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/internal/strategy"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every strategy with its description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var b strings.Builder
			b.WriteString("Available benchmarks:\n")
			for _, s := range strategy.All(keys.BigIntRepr, store.DefaultTarget()) {
				fmt.Fprintf(&b, "  %s: %s\n", s.Name(), s.Description())
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
			return err
		},
	}
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run a single strategy by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !slices.Contains(strategy.Names(), name) {
				return fmt.Errorf("%w: strategy %q (see %q)", bencherr.ErrNotFound, name, "pg-keybench list")
			}
			return runBenchmarks(cmd, opts.resolve(), name)
		},
	}
}

func newAllCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every strategy (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmarks(cmd, opts.resolve(), "")
		},
	}
}

func newSeedCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create and load the lookup table",
		Long: "Creates the lookup table for the selected key type if missing and loads ids\n" +
			"1..--seed-rows with their response text, then analyzes it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts.resolve(), opts.truncate)
		},
	}
	cmd.Flags().BoolVar(&opts.truncate, "truncate", false, "empty the table before loading")
	return cmd
}
