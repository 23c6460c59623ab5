package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/system"
	"github.com/felixgeelhaar/zerobrave/internal/infrastructure/tui"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type fakeHost struct {
	elevated  bool
	installed bool
	flatpak   bool
	granted   []string
}

func (h *fakeHost) IsElevated() bool { return h.elevated }
func (h *fakeHost) BraveInstalled() bool { return h.installed }
func (h *fakeHost) FlatpakInstalled(ctx context.Context) bool { return h.flatpak }
func (h *fakeHost) GrantFlatpakAccess(ctx context.Context, dir string) error {
	h.granted = append(h.granted, dir)
	return nil
}

// testEnv points the CLI at a temp policy path and config file and swaps the
// host probes for a fake.
type testEnv struct {
	dir    string
	target string
	config string
	host   *fakeHost
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		target: filepath.Join(dir, "managed", "policies.json"),
		config: filepath.Join(dir, "config.yaml"),
		host:   &fakeHost{elevated: true, installed: true},
	}

	oldHost, oldInteractive, oldMenu := newHost, isInteractive, runMenu
	newHost = func() system.Host { return env.host }
	isInteractive = func() bool { return false }
	runMenu = func(ctx context.Context, sel policy.Selection, opts tui.Options) (tui.Result, error) {
		t.Fatal("menu opened unexpectedly")
		return tui.Result{}, nil
	}
	t.Cleanup(func() {
		newHost, isInteractive, runMenu = oldHost, oldInteractive, oldMenu
	})
	return env
}

// run executes the root command with --config and --target pointing into the
// temp directory.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--config", e.config, "--target", e.target}, args...)
	return execute(t, full...)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(args)
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	}()

	err := RootCmd.ExecuteContext(context.Background())
	if testing.Verbose() && stderr.Len() > 0 {
		t.Logf("stderr:\n%s", stderr.String())
	}
	return stdout.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func readPolicy(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func encoded(t *testing.T, doc policy.Document) string {
	t.Helper()
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(data)
}

func profileSelection(t *testing.T, name string) policy.Selection {
	t.Helper()
	p, err := policy.LookupProfile(name)
	if err != nil {
		t.Fatalf("LookupProfile(%q): %v", name, err)
	}
	return policy.SelectionFor(p)
}
