package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/watch"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/storage"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the policy file whenever it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w, err := watch.NewPolicyWatcher(env.store.Path(), watchDebounce, func(c watch.Change) {
			reportChange(out, env.store, c)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Watching %s for changes... (Ctrl+C to stop)\n", env.store.Path())
		if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func reportChange(out io.Writer, store *storage.PolicyStore, c watch.Change) {
	stamp := time.Now().Format("15:04:05")
	if c.Removed() {
		fmt.Fprintf(out, "[%s] %s was removed; Brave will fall back to its defaults\n", stamp, c.Path)
		return
	}

	doc, err := store.Read()
	if err == nil {
		err = policy.Validate(doc)
	}
	if err != nil {
		fmt.Fprintf(out, "[%s] %s changed (%s): INVALID: %v\n", stamp, c.Path, c.Op, err)
		return
	}
	fmt.Fprintf(out, "[%s] %s changed (%s): %d policies, valid\n", stamp, c.Path, c.Op, len(doc))
	for _, a := range policy.Advisories(doc) {
		fmt.Fprintf(out, "  warning: %s\n", a)
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "wait this long for writes to settle")
	RootCmd.AddCommand(watchCmd)
}
