package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/spf13/cobra"
)

var categoriesVerbose bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the policy categories and profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		profiles := policy.Profiles()

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTAG\tNAME\tPOLICIES\tPROFILES\tSUMMARY")
		for _, c := range policy.Categories() {
			var in []string
			for _, p := range profiles {
				if policy.SelectionFor(p).Enabled(c.ID) {
					in = append(in, string(p.Name))
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", c.ID, c.Tag, c.Name, len(c.Policies), strings.Join(in, ","), c.Summary)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if categoriesVerbose {
			for _, c := range policy.Categories() {
				fmt.Fprintf(out, "\n%s %s\n  %s\n", c.Tag, c.Name, c.Help)
				for _, k := range policy.Document(c.Policies).Keys() {
					v, err := json.Marshal(c.Policies[k])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "    %s = %s\n", k, v)
				}
			}
		}

		fmt.Fprintf(out, "\nBase policies (always applied): %s\n", strings.Join(policy.BasePolicies().Keys(), ", "))
		return nil
	},
}

func init() {
	categoriesCmd.Flags().BoolVarP(&categoriesVerbose, "verbose", "v", false, "show every policy in each category")
	RootCmd.AddCommand(categoriesCmd)
}
