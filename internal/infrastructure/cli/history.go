package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/audit"
	"github.com/spf13/cobra"
)

var (
	historyVerify bool
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the applied and restored policy runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := historyFile()
		if err != nil {
			return err
		}
		events, err := h.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyVerify {
			violations := audit.Verify(events)
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintf(out, "  - %s\n", v)
				}
				return fmt.Errorf("%d integrity violations in %s", len(violations), h.Path())
			}
			fmt.Fprintf(out, "History intact: %d events verified\n", len(events))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}
		if historyLimit > 0 && len(events) > historyLimit {
			events = events[len(events)-historyLimit:]
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tACTOR\tDETAILS")
		for i := len(events) - 1; i >= 0; i-- {
			e := events[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Actor, formatMetadata(e.Metadata))
		}
		return w.Flush()
	},
}

func formatMetadata(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "run_id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "check the hash chain for tampering")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	RootCmd.AddCommand(historyCmd)
}
