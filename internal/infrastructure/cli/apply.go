package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/zerobrave/internal/application"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/tui"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/source"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	dryRun       bool
	backupFlag   bool
	restoreFlag  bool
	noTUI        bool
	grantFlatpak bool

	localFile    string
	sourceURL    string
	remote       bool
	profileName  string
	categoryList string
)

// runMenu is replaced in tests.
var runMenu = tui.Run

func addApplyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&dryRun, "dry-run", "n", false, "print the policies instead of writing them")
	f.BoolVarP(&backupFlag, "backup", "b", false, "back up the existing policy file before writing")
	f.BoolVarP(&restoreFlag, "restore", "r", false, "restore the most recent backup")
	f.BoolVar(&noTUI, "no-tui", false, "never open the interactive menu")
	f.BoolVar(&grantFlatpak, "grant-flatpak", false, "allow a Flatpak install of Brave to read the policy directory")
	addSourceFlags(cmd, f)
	for _, name := range []string{"dry-run", "backup", "local", "url", "remote", "profile", "categories"} {
		cmd.MarkFlagsMutuallyExclusive("restore", name)
	}
}

func addSourceFlags(cmd *cobra.Command, f *pflag.FlagSet) {
	f.StringVarP(&localFile, "local", "l", "", "use a local JSON or JSONC policy file")
	f.StringVar(&sourceURL, "url", "", "download the policy document from URL")
	f.BoolVar(&remote, "remote", false, "download the published ZeroBrave policy document")
	f.StringVarP(&profileName, "profile", "p", "", "profile to apply: strict, balanced or minimal")
	f.StringVar(&categoryList, "categories", "", "comma-separated categories to enable (see 'zerobrave categories')")
	cmd.MarkFlagsMutuallyExclusive("local", "url", "remote", "profile", "categories")
}

// selectionFromFlags returns the selection named by --categories or
// --profile, falling back to the configured profile. explicit reports
// whether a flag chose it.
func selectionFromFlags(env *environment) (sel policy.Selection, explicit bool, err error) {
	switch {
	case categoryList != "":
		sel, err = policy.ParseCategories(categoryList)
		return sel, true, err
	case profileName != "":
		p, err := policy.LookupProfile(profileName)
		if err != nil {
			return policy.Selection{}, true, err
		}
		return policy.SelectionFor(p), true, nil
	}

	name := env.cfg.Profile
	if name == "" {
		name = string(policy.ProfileStrict)
	}
	p, err := policy.LookupProfile(name)
	if err != nil {
		return policy.Selection{}, false, err
	}
	return policy.SelectionFor(p), false, nil
}

// externalDocument loads the document named by --local, --url, --remote or
// the configured source_url. It returns nil when the built-in categories
// should be used. origin names the source for the run history.
func externalDocument(ctx context.Context, env *environment, explicit bool) (doc policy.Document, origin string, err error) {
	var url string
	switch {
	case localFile != "":
		env.logger.Info("loading local policy file", "path", localFile)
		doc, err = source.LoadFile(localFile)
		return doc, "local:" + localFile, err
	case sourceURL != "":
		url = sourceURL
	case remote:
		url = source.DefaultURL
	case !explicit && env.cfg.SourceURL != "":
		url = env.cfg.SourceURL
	default:
		return nil, "", nil
	}

	env.logger.Info("downloading policies", "url", url)
	doc, err = source.NewFetcher().Fetch(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download policies: %w", err)
	}
	return doc, "url:" + url, nil
}

func selectionOrigin(sel policy.Selection) string {
	if p := sel.Profile(); p != policy.ProfileCustom {
		return "profile:" + string(p)
	}
	ids := make([]string, 0, sel.Len())
	for _, id := range sel.IDs() {
		ids = append(ids, string(id))
	}
	return "categories:" + strings.Join(ids, ",")
}

func wantBackup(cmd *cobra.Command, env *environment) bool {
	if cmd.Flags().Changed("backup") {
		return backupFlag
	}
	return env.cfg.Backup
}

func runApply(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	if restoreFlag {
		return runRestore(cmd, env)
	}

	ctx := cmd.Context()
	sel, explicit, err := selectionFromFlags(env)
	if err != nil {
		return err
	}
	doc, origin, err := externalDocument(ctx, env, explicit)
	if err != nil {
		return err
	}

	req := application.ApplyRequest{
		DryRun:       dryRun,
		Backup:       wantBackup(cmd, env),
		SkipChecks:   skipChecks,
		GrantFlatpak: grantFlatpak,
	}

	if doc == nil && !explicit && !noTUI && isInteractive() {
		return runInteractive(cmd, env, sel, req)
	}
	if doc == nil {
		doc = policy.Build(sel)
		origin = selectionOrigin(sel)
	}

	req.Document = doc
	req.Origin = origin
	result, err := env.applyService().Apply(ctx, req)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

// runInteractive alternates between the menu and apply runs until the user
// quits. Only permission failures end the session early.
func runInteractive(cmd *cobra.Command, env *environment, sel policy.Selection, req application.ApplyRequest) error {
	ctx := cmd.Context()
	opts := tui.Options{DryRun: req.DryRun}

	for {
		res, err := runMenu(ctx, sel, opts)
		if err != nil {
			return err
		}
		if res.Action != tui.ActionApply {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes written.")
			return nil
		}
		sel = res.Selection
		opts.Changes = res.Changes

		req.Document = policy.Build(sel)
		req.Origin = selectionOrigin(sel)
		result, err := env.applyService().Apply(ctx, req)
		if err != nil {
			if errors.Is(err, system.ErrPermission) {
				return err
			}
			opts.Notice = "Error: " + err.Error()
			continue
		}
		opts.Notice = summary(result)
	}
}

func summary(r *application.ApplyResult) string {
	if !r.Written {
		return fmt.Sprintf("Dry run: %d policies would be written to %s", len(r.Document), r.Path)
	}
	msg := fmt.Sprintf("Applied %d policies to %s", len(r.Document), r.Path)
	if r.Backup != nil {
		msg += fmt.Sprintf(" (backup: %s)", r.Backup.Path)
	}
	return msg
}

func printResult(w io.Writer, r *application.ApplyResult) {
	if r.Preview != nil {
		_, _ = w.Write(r.Preview)
		return
	}
	fmt.Fprintln(w, summary(r))
	fmt.Fprintln(w, "Restart Brave and open brave://policy to verify.")
}
