package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResponseCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "response",
		Aliases: []string{"resp"},
		Short:   "Record and inspect evaluation responses",
	}
	cmd.AddCommand(newResponseSaveCommand(opts))
	cmd.AddCommand(newResponseListCommand(opts))
	cmd.AddCommand(newResponseProgressCommand(opts))
	return cmd
}

func newResponseSaveCommand(opts *rootOptions) *cobra.Command {
	var conforme, nonConforme bool
	var observation string

	cmd := &cobra.Command{
		Use:   "save <inspection-id> <criterion-id>",
		Short: "Save one criterion response; saving again overwrites",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if conforme && nonConforme {
				return fmt.Errorf("--conforme and --non-conforme are mutually exclusive")
			}
			var critID int
			if _, err := fmt.Sscanf(args[1], "%d", &critID); err != nil {
				return fmt.Errorf("criterion id must be numeric: %q", args[1])
			}
			var verdict *bool
			if conforme || nonConforme {
				v := conforme
				verdict = &v
			}
			if err := opts.cmds.SaveResponse(token, args[0], critID, verdict, observation); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "saved")
			return nil
		},
	}

	cmd.Flags().BoolVar(&conforme, "conforme", false, "mark the criterion conforming")
	cmd.Flags().BoolVar(&nonConforme, "non-conforme", false, "mark the criterion non-conforming")
	cmd.Flags().StringVar(&observation, "observation", "", "free-text observation")
	return cmd
}

func newResponseListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <inspection-id>",
		Short: "List the saved responses of one inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			responses, err := opts.cmds.GetResponses(token, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), responses)
		},
	}
}

func newResponseProgressCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <inspection-id>",
		Short: "Show the derived progress counts of one inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			progress, err := opts.cmds.GetProgress(token, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), progress)
		},
	}
}
