package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"officine.org/internal/export"
	"officine.org/internal/inspection"
)

func newInspectionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspection",
		Aliases: []string{"insp"},
		Short:   "Manage inspection records",
	}
	cmd.AddCommand(newInspectionCreateCommand(opts))
	cmd.AddCommand(newInspectionListCommand(opts))
	cmd.AddCommand(newInspectionGetCommand(opts))
	cmd.AddCommand(newInspectionUpdateCommand(opts))
	cmd.AddCommand(newInspectionSetStatusCommand(opts))
	cmd.AddCommand(newInspectionDeleteCommand(opts))
	cmd.AddCommand(newInspectionExportCommand(opts))
	return cmd
}

func inspectionMetaFlags(cmd *cobra.Command, req *inspection.CreateRequest) {
	cmd.Flags().StringVar(&req.GridID, "grid", "", "evaluation grid id")
	cmd.Flags().StringVar(&req.DateInspection, "date", "", "inspection date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Establishment, "establishment", "", "establishment name")
	cmd.Flags().StringVar(&req.InspectionType, "type", "", "inspection type")
	cmd.Flags().StringSliceVar(&req.Inspectors, "inspector", nil, "inspector name (repeatable)")
}

func newInspectionCreateCommand(opts *rootOptions) *cobra.Command {
	var req inspection.CreateRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft inspection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			id, err := opts.cmds.CreateInspection(token, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	inspectionMetaFlags(cmd, &req)
	cmd.MarkFlagRequired("grid")
	cmd.MarkFlagRequired("establishment")
	return cmd
}

func newInspectionListCommand(opts *rootOptions) *cobra.Command {
	var mine bool
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inspections visible to you, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			list, err := opts.cmds.ListInspections(token, mine, inspection.Status(status))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "only inspections you created")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func newInspectionGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <inspection-id>",
		Short: "Show one inspection with its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			insp, err := opts.cmds.GetInspection(token, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), insp)
		},
	}
}

func newInspectionUpdateCommand(opts *rootOptions) *cobra.Command {
	var req inspection.CreateRequest

	cmd := &cobra.Command{
		Use:   "update <inspection-id>",
		Short: "Overwrite the inspection metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := opts.cmds.UpdateInspectionMeta(token, args[0], req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated")
			return nil
		},
	}

	inspectionMetaFlags(cmd, &req)
	return cmd
}

func newInspectionSetStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <inspection-id> <status>",
		Short: "Move an inspection to an explicit status",
		Long:  "Valid statuses: draft, in_progress, completed, validated, archived. Entering validated requires the admin or lead_inspector role and stamps the validator.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := opts.cmds.SetInspectionStatus(token, args[0], inspection.Status(args[1])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status set")
			return nil
		},
	}
}

func newInspectionDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <inspection-id>",
		Short: "Delete an inspection and its responses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := opts.cmds.DeleteInspection(token, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func newInspectionExportCommand(opts *rootOptions) *cobra.Command {
	var mine bool
	var status, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export visible inspections as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			list, err := opts.cmds.ListInspections(token, mine, inspection.Status(status))
			if err != nil {
				return err
			}
			csv, err := export.InspectionsCSV(list)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), csv)
				return nil
			}
			return os.WriteFile(out, []byte(csv), 0o644)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "only inspections you created")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	return cmd
}
