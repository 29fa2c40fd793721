package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Resolved holds the absolute locations a single run operates on.
type Resolved struct {
	// Upstream checkout (or extraction cache entry) root.
	Repo       string
	HeaderDir  string
	ScratchDir string
	CrateRoot  string
	CacheDir   string
}

// Resolve turns the configured paths into absolute ones, anchoring
// relative paths at baseDir. The process working directory is never
// consulted or changed; every pipeline step receives explicit directories.
func (c *Config) Resolve(baseDir string) (*Resolved, error) {
	if len(c.Bindgen.Headers) == 0 {
		return nil, errors.New("no headers configured")
	}
	for name, p := range map[string]string{
		"paths.header-dir":  c.Paths.HeaderDir,
		"paths.scratch-dir": c.Paths.ScratchDir,
		"paths.crate-root":  c.Paths.CrateRoot,
	} {
		if p == "" {
			return nil, fmt.Errorf("%v is not set", name)
		}
	}

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	repo := c.Upstream.Repo
	if repo == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("default upstream repo: %w", err)
		}
		repo = filepath.Join(home, "Git-Others", "simple-dftd3")
	} else {
		repo = abs(repo)
	}

	cacheDir := c.Upstream.CacheDir
	if cacheDir == "" {
		cacheDir = "_upstream"
	}

	return &Resolved{
		Repo:       repo,
		HeaderDir:  abs(c.Paths.HeaderDir),
		ScratchDir: abs(c.Paths.ScratchDir),
		CrateRoot:  abs(c.Paths.CrateRoot),
		CacheDir:   abs(cacheDir),
	}, nil
}
