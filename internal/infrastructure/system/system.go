// Package system inspects the host: elevation, Brave installation and the
// Flatpak sandbox.
package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/platform"
)

const flatpakAppID = "com.brave.Browser"

// ErrPermission is matched by PermissionError.
var ErrPermission = errors.New("insufficient permissions")

// PermissionError reports that the process is not elevated.
type PermissionError struct {
	OS platform.OS
}

func (e *PermissionError) Error() string {
	if e.OS == platform.Windows {
		return "insufficient permissions: run from an administrator prompt"
	}
	return "insufficient permissions: run with sudo"
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermission
}

// Host is the set of host probes zerobrave needs. Tests substitute a fake.
type Host interface {
	IsElevated() bool
	BraveInstalled() bool
	FlatpakInstalled(ctx context.Context) bool
	GrantFlatpakAccess(ctx context.Context, dir string) error
}

// LocalHost probes the machine the binary runs on.
type LocalHost struct {
	OS       platform.OS
	Resolver platform.Resolver
}

func NewLocalHost() *LocalHost {
	return &LocalHost{OS: platform.Current(), Resolver: platform.NewResolver()}
}

func (h *LocalHost) IsElevated() bool {
	return isElevated()
}

// BraveInstalled reports whether any known Brave location exists.
func (h *LocalHost) BraveInstalled() bool {
	for _, p := range h.Resolver.InstallLocations(h.OS) {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// FlatpakInstalled reports whether Brave is installed as a Flatpak.
func (h *LocalHost) FlatpakInstalled(ctx context.Context) bool {
	if h.OS != platform.Linux {
		return false
	}
	cmd := exec.CommandContext(ctx, "flatpak", "info", flatpakAppID)
	return cmd.Run() == nil
}

// GrantFlatpakAccess lets the sandboxed browser read dir.
func (h *LocalHost) GrantFlatpakAccess(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "flatpak", "override", "--system", flatpakAppID, "--filesystem="+dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("flatpak override: %w: %s", err, out)
	}
	return nil
}

// CheckPermissions returns a *PermissionError when host is not elevated.
func CheckPermissions(host Host, target platform.OS) error {
	if host.IsElevated() {
		return nil
	}
	return &PermissionError{OS: target}
}
