// Package toolchain wraps the external binaries the pipeline shells out
// to. The wrappers are deliberately narrow interfaces so tests can swap in
// stubs without the real tools installed.
package toolchain

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/RESTGroup/dftd3-bindgen/textutils"
)

// Generator produces one binding source file from a staged C header.
type Generator interface {
	// Generate runs the generator in dir against header, writing outFile
	// (relative to dir).
	Generate(dir, header, outFile string) error
}

// Formatter formats the binding crate in place.
type Formatter interface {
	Format(crateRoot string) error
}

// Bindgen invokes the rust-bindgen CLI.
type Bindgen struct {
	// Path to the bindgen binary. Defaults to "bindgen" on $PATH.
	Path string
	// Stderr receives the tool's diagnostics. Defaults to [os.Stderr].
	Stderr io.Writer
}

func (b *Bindgen) path() string {
	if b.Path != "" {
		return b.Path
	}
	return "bindgen"
}

func (b *Bindgen) stderr() io.Writer {
	if b.Stderr != nil {
		return b.Stderr
	}
	return os.Stderr
}

// Args returns the fixed bindgen argument list for header: declarations
// are restricted to symbols from the header itself, layout tests are
// disabled, primitive types come from core and repeated extern blocks are
// merged.
func Args(header, outFile string) []string {
	return []string{
		header, "-o", outFile,
		"--allowlist-file", header,
		"--no-layout-tests",
		"--use-core",
		"--merge-extern-blocks",
	}
}

// Generate implements [Generator]. The tool's exit status propagates as
// the returned error; its stderr goes to [Bindgen.Stderr].
func (b *Bindgen) Generate(dir, header, outFile string) error {
	cmd := exec.Command(b.path(), Args(header, outFile)...)
	cmd.Dir = dir
	cmd.Stderr = b.stderr()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("bindgen %v: %w", header, err)
	}
	return nil
}

// Version reports the generator's version as canonical semver ("v0.69.4").
func (b *Bindgen) Version() (string, error) {
	out, err := exec.Command(b.path(), "--version").Output()
	if err != nil {
		return "", fmt.Errorf("bindgen --version: %w", err)
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts a semver version from "bindgen 0.69.4" style
// version output.
func ParseVersion(out string) (string, error) {
	fields := strings.Fields(textutils.FirstLine(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("cannot parse version output %q", out)
	}
	v := fields[len(fields)-1]
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("cannot parse version output %q", out)
	}
	return v, nil
}

// VersionMismatch reports whether got differs from the version want that
// the patch table was verified against. Either argument may omit the "v"
// prefix.
func VersionMismatch(got, want string) bool {
	if !strings.HasPrefix(got, "v") {
		got = "v" + got
	}
	if !strings.HasPrefix(want, "v") {
		want = "v" + want
	}
	return semver.Compare(got, want) != 0
}

// CargoFmt invokes "cargo fmt" on a crate.
type CargoFmt struct {
	// Path to the cargo binary. Defaults to "cargo" on $PATH.
	Path string
	// Stderr receives the tool's diagnostics. Defaults to [os.Stderr].
	Stderr io.Writer
}

func (f *CargoFmt) path() string {
	if f.Path != "" {
		return f.Path
	}
	return "cargo"
}

// Format implements [Formatter]. Stdout is discarded; a formatting
// failure only surfaces through the exit status.
func (f *CargoFmt) Format(crateRoot string) error {
	cmd := exec.Command(f.path(), "fmt")
	cmd.Dir = crateRoot
	if f.Stderr != nil {
		cmd.Stderr = f.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cargo fmt: %w", err)
	}
	return nil
}
