// Package platform maps operating systems to Brave's managed-policy location.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"
)

// OS is an operating system identifier as reported by runtime.GOOS.
type OS string

const (
	Linux   OS = "linux"
	Windows OS = "windows"
	Darwin  OS = "darwin"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

// LinuxPolicyRoot is the directory a sandboxed Brave must be allowed to read.
const LinuxPolicyRoot = "/etc/brave"

const defaultProgramFiles = `C:\Program Files`

// Current returns the OS the binary runs on.
func Current() OS {
	return OS(runtime.GOOS)
}

// Supported lists the operating systems with a known policy location.
func Supported() []OS {
	return []OS{Linux, Windows, Darwin}
}

// Resolver computes policy paths. Both functions may be replaced in tests.
type Resolver struct {
	Getenv  func(string) string
	HomeDir func() (string, error)
}

// NewResolver returns a Resolver backed by the process environment.
func NewResolver() Resolver {
	return Resolver{Getenv: os.Getenv, HomeDir: os.UserHomeDir}
}

// ResolvePolicyPath returns the managed-policy file for target. Paths are
// built with the target's separator, not the host's.
func (r Resolver) ResolvePolicyPath(target OS) (string, error) {
	switch target {
	case Linux:
		return path.Join(LinuxPolicyRoot, "policies", "managed", "policies.json"), nil
	case Windows:
		base := defaultProgramFiles
		if r.Getenv != nil {
			if v := strings.TrimSpace(r.Getenv("ProgramFiles")); v != "" {
				base = strings.TrimRight(v, `\`)
			}
		}
		return windowsJoin(base, "BraveSoftware", "Brave-Browser", "Application", "policy", "managed", "policies.json"), nil
	case Darwin:
		if r.HomeDir == nil {
			return "", fmt.Errorf("resolve home directory: no lookup configured")
		}
		home, err := r.HomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return path.Join(home, "Library", "Application Support", "BraveSoftware", "Brave-Browser", "policies", "managed", "policies.json"), nil
	default:
		return "", fmt.Errorf("%w: %q (supported: linux, windows, darwin)", ErrUnsupportedPlatform, string(target))
	}
}

// ResolvePolicyPath resolves for target using the process environment.
func ResolvePolicyPath(target OS) (string, error) {
	return NewResolver().ResolvePolicyPath(target)
}

// InstallLocations lists the places a Brave installation is usually found.
func (r Resolver) InstallLocations(target OS) []string {
	switch target {
	case Linux:
		return []string{
			"/usr/bin/brave",
			"/usr/bin/brave-browser",
			"/snap/bin/brave",
			"/opt/brave.com/brave/brave",
		}
	case Windows:
		return []string{
			windowsJoin(defaultProgramFiles, "BraveSoftware", "Brave-Browser", "Application", "brave.exe"),
			windowsJoin(`C:\Program Files (x86)`, "BraveSoftware", "Brave-Browser", "Application", "brave.exe"),
		}
	case Darwin:
		locations := []string{"/Applications/Brave Browser.app"}
		if r.HomeDir != nil {
			if home, err := r.HomeDir(); err == nil {
				locations = append(locations, path.Join(home, "Applications", "Brave Browser.app"))
			}
		}
		return locations
	default:
		return nil
	}
}

func windowsJoin(elem ...string) string {
	return strings.Join(elem, `\`)
}
