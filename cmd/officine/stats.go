package main

import (
	"github.com/spf13/cobra"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate indicators over the inspections visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			agg, err := opts.cmds.Stats(token, mine)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), agg)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "only inspections you created")
	return cmd
}
