// Package stage moves header files between the upstream checkout, the
// persistent header directory and the per-run scratch directory.
package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies a single regular file, preserving its mode.
// An existing destination file is overwritten.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("expected %v to be a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Headers copies the named header files from includeDir into headerDir,
// creating headerDir if needed. A missing source header is an error.
func Headers(includeDir, headerDir string, names []string) error {
	if err := os.MkdirAll(headerDir, os.ModePerm); err != nil {
		return err
	}
	for _, name := range names {
		src := filepath.Join(includeDir, name)
		dst := filepath.Join(headerDir, name)
		if err := CopyFile(src, dst); err != nil {
			return fmt.Errorf("copy header %v: %w", name, err)
		}
	}
	return nil
}

// ResetDir deletes dir and recreates it empty, guaranteeing a clean slate
// for the run.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, os.ModePerm)
}

// Mirror copies all regular files directly contained in srcDir into dstDir.
// Subdirectories are ignored (the header directory is flat).
func Mirror(srcDir, dstDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(srcDir, entry.Name())
		dst := filepath.Join(dstDir, entry.Name())
		if err := CopyFile(src, dst); err != nil {
			return fmt.Errorf("mirror %v: %w", entry.Name(), err)
		}
	}
	return nil
}
