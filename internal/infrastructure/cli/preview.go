package cli

import (
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the policy document without checks or writes",
	Long: `Print the policy document that would be written.

The document is built from --profile or --categories, or loaded with
--local, --url or --remote, and validated. Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd, cfg)
		if err != nil {
			return err
		}
		env := &environment{cfg: cfg, logger: logger}

		sel, explicit, err := selectionFromFlags(env)
		if err != nil {
			return err
		}
		doc, _, err := externalDocument(cmd.Context(), env, explicit)
		if err != nil {
			return err
		}
		if doc == nil {
			doc = policy.Build(sel)
		}
		if err := policy.Validate(doc); err != nil {
			return err
		}

		data, err := doc.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	addSourceFlags(previewCmd, previewCmd.Flags())
	RootCmd.AddCommand(previewCmd)
}
