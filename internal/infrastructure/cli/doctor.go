package cli

import (
	"fmt"

	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/audit"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/source"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment and the installed policy file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Running ZeroBrave Doctor...")

		env, err := loadEnvironment(cmd)
		if err != nil {
			return err
		}

		hasIssues := false
		check := func(name string, fn func() error) {
			fmt.Fprintf(out, "Checking %s... ", name)
			if err := fn(); err != nil {
				fmt.Fprintf(out, "FAIL\n  Error: %v\n", err)
				hasIssues = true
			} else {
				fmt.Fprintf(out, "PASS\n")
			}
		}
		warn := func(name, msg string) {
			fmt.Fprintf(out, "Checking %s... WARN\n  %s\n", name, msg)
		}

		fmt.Fprintf(out, "Policy file: %s\n", env.store.Path())

		check("Platform", func() error {
			_, err := platform.ResolvePolicyPath(env.os)
			return err
		})

		check("Permissions", func() error {
			return system.CheckPermissions(env.host, env.os)
		})

		if env.host.BraveInstalled() {
			check("Brave Installation", func() error { return nil })
		} else {
			warn("Brave Installation", "Brave was not found in any known location")
		}

		if env.os == platform.Linux && env.host.FlatpakInstalled(cmd.Context()) {
			warn("Flatpak", "Brave is a Flatpak; run 'zerobrave --grant-flatpak' so it can read "+platform.LinuxPolicyRoot)
		}

		if !env.store.Exists() {
			warn("Policy File", "no policy file installed yet")
		} else {
			check("Policy File", func() error {
				raw, err := env.store.ReadRaw()
				if err != nil {
					return err
				}
				problems, err := source.SchemaCheck(raw)
				if err != nil {
					return err
				}
				if len(problems) > 0 {
					return fmt.Errorf("%d schema problems: %v", len(problems), problems)
				}
				doc, err := source.Decode(raw)
				if err != nil {
					return err
				}
				if err := policy.Validate(doc); err != nil {
					return err
				}
				for _, a := range policy.Advisories(doc) {
					fmt.Fprintf(out, "(%s) ", a)
				}
				return nil
			})
		}

		check("Backups", func() error {
			backups, err := env.store.Backups()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "(%d found) ", len(backups))
			return nil
		})

		check("Run History", func() error {
			events, err := env.history.Load()
			if err != nil {
				return err
			}
			if v := audit.Verify(events); len(v) > 0 {
				return fmt.Errorf("%d integrity violations found (run 'zerobrave history --verify')", len(v))
			}
			fmt.Fprintf(out, "(%d runs) ", len(events))
			return nil
		})

		if hasIssues {
			fmt.Fprintln(out, "\nissues found! Please fix them before continuing.")
			return fmt.Errorf("doctor found issues")
		}
		fmt.Fprintln(out, "\nEverything looks good!")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
