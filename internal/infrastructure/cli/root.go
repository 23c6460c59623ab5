package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	debugLog   bool
	quiet      bool
	targetPath string
	skipChecks bool
)

// RootCmd writes the policy document when called without a subcommand.
var RootCmd = &cobra.Command{
	Use:     "zerobrave",
	Version: Version,
	Short:   "Privacy-first managed policies for the Brave browser",
	Long: `ZeroBrave writes a managed-policy file that Brave enforces on every start.

Pick categories in the interactive menu, choose a profile with --profile,
or supply your own document with --local or --url. Writing the system
policy file requires root (Linux, macOS) or an administrator prompt
(Windows).`,
	Example: `  sudo zerobrave
  sudo zerobrave --profile balanced --backup
  zerobrave --dry-run --categories ai,telemetry
  sudo zerobrave --restore`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApply,
}

// Execute runs the root command until it finishes or the process is
// interrupted. Returned errors are already mapped for display.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return MapError(RootCmd.ExecuteContext(ctx))
}

func init() {
	RootCmd.SetVersionTemplate("zerobrave {{.Version}}\n")

	pf := RootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/zerobrave/config.yaml)")
	pf.BoolVar(&debugLog, "debug", false, "enable debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	pf.StringVar(&targetPath, "target", "", "policy file to manage instead of the platform default")
	pf.BoolVar(&skipChecks, "skip-checks", false, "skip the permission and installation checks")

	addApplyFlags(RootCmd)
}
