package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups of the policy file, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		backups, err := env.store.Backups()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(backups) == 0 {
			fmt.Fprintf(out, "No backups of %s\n", env.store.Path())
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tPATH")
		for _, b := range backups {
			fmt.Fprintf(w, "%s\t%s\n", b.CreatedAt.Format("2006-01-02 15:04:05.000"), b.Path)
		}
		return w.Flush()
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the most recent backup of the policy file",
	Long: `Copy the most recent backup over the policy file.

The backup is restored as-is without validation. Same as 'zerobrave --restore'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}
		return runRestore(cmd, env)
	},
}

func runRestore(cmd *cobra.Command, env *environment) error {
	handle, err := env.restoreService().Restore(cmd.Context(), skipChecks)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", env.store.Path(), handle.Path)
	return nil
}

func init() {
	RootCmd.AddCommand(backupsCmd)
	RootCmd.AddCommand(restoreCmd)
}
