package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"officine.org/internal/grid"
)

func newGridCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "grid",
		Aliases: []string{"grids"},
		Short:   "Browse the built-in evaluation grids",
	}
	cmd.AddCommand(newGridListCommand())
	cmd.AddCommand(newGridShowCommand())
	return cmd
}

func newGridListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available grids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), grid.Summaries())
		},
	}
}

func newGridShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <grid-id>",
		Short: "Show the full sections and criteria of one grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := grid.Find(args[0])
			if !ok {
				return fmt.Errorf("unknown grid %q", args[0])
			}
			return printJSON(cmd.OutOrStdout(), g)
		},
	}
}
