package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"officine.org/internal/command"
	"officine.org/internal/config"
	"officine.org/internal/obs"
	"officine.org/internal/store"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	token string

	cmds  *command.Commands
	store *store.Store
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "officine",
		Short:         "Pharmaceutical establishment inspection registry",
		Long:          "Local inspection registry: accounts, inspection lifecycle, evaluation responses and an append-only audit trail over one embedded database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			obs.Init()
			opts.cmds, opts.store, err = command.Bootstrap(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.store != nil {
				opts.store.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("OFFICINE_TOKEN"), "session token (defaults to $OFFICINE_TOKEN)")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newUserCommand(opts))
	cmd.AddCommand(newInspectionCommand(opts))
	cmd.AddCommand(newResponseCommand(opts))
	cmd.AddCommand(newAuditCommand(opts))
	cmd.AddCommand(newGridCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))

	return cmd
}

// newInitCommand exists so a fresh deployment has an explicit first step.
// Opening the store and seeding the default administrator already happened
// in the persistent pre-run; this just confirms and names the database file.
func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and seed the default administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database ready at %s\n", cfg.Database.Path)
			return nil
		},
	}
}

// printJSON renders command output as indented JSON on stdout.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireToken(opts *rootOptions) (string, error) {
	if opts.token == "" {
		return "", fmt.Errorf("no session token: pass --token or set OFFICINE_TOKEN")
	}
	return opts.token, nil
}
