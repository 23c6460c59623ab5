package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/spf13/cobra"
)

var schemaTable bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the policy document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !schemaTable {
			_, err := fmt.Fprintln(out, string(policy.JSONSchema()))
			return err
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POLICY\tTYPE")
		for _, k := range policy.SchemaKeys() {
			kind, _ := policy.ExpectedKind(k)
			fmt.Fprintf(w, "%s\t%s\n", k, kind)
		}
		return w.Flush()
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaTable, "table", false, "print a key/type table instead of JSON Schema")
	RootCmd.AddCommand(schemaCmd)
}
