package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"officine.org/internal/audit"
)

func newAuditCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the append-only audit trail",
	}
	cmd.AddCommand(newAuditQueryCommand(opts))
	cmd.AddCommand(newAuditCountCommand(opts))
	return cmd
}

func auditFilterFlags(cmd *cobra.Command, f *audit.Filter, from, to *string) {
	cmd.Flags().StringVar(&f.UserID, "user", "", "filter by actor user id")
	cmd.Flags().StringVar(&f.Action, "action", "", "filter by action label")
	cmd.Flags().StringVar(&f.EntityType, "entity-type", "", "filter by entity type")
	cmd.Flags().StringVar(&f.EntityID, "entity-id", "", "filter by entity id")
	cmd.Flags().StringVar(from, "from", "", "inclusive lower timestamp bound (RFC 3339)")
	cmd.Flags().StringVar(to, "to", "", "inclusive upper timestamp bound (RFC 3339)")
}

func parseAuditBounds(f *audit.Filter, from, to string) error {
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return fmt.Errorf("bad --from: %w", err)
		}
		f.From = &t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return fmt.Errorf("bad --to: %w", err)
		}
		f.To = &t
	}
	return nil
}

func newAuditQueryCommand(opts *rootOptions) *cobra.Command {
	var f audit.Filter
	var from, to string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List matching audit entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := parseAuditBounds(&f, from, to); err != nil {
				return err
			}
			entries, err := opts.cmds.QueryAudit(token, f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}

	auditFilterFlags(cmd, &f, &from, &to)
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "page size (0 uses the configured default)")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "rows to skip")
	return cmd
}

func newAuditCountCommand(opts *rootOptions) *cobra.Command {
	var f audit.Filter
	var from, to string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count matching audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(opts)
			if err != nil {
				return err
			}
			if err := parseAuditBounds(&f, from, to); err != nil {
				return err
			}
			n, err := opts.cmds.CountAudit(token, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	auditFilterFlags(cmd, &f, &from, &to)
	return cmd
}
