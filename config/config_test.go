package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RESTGroup/dftd3-bindgen/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	path := writeConfig(t, t.TempDir(), "bindgen.toml", `
[upstream]
repo = "/opt/simple-dftd3"
ref = "v1.2.1"

[paths]
header-dir = "../header"
scratch-dir = "tmp"
crate-root = ".."

[bindgen]
headers = ["s-dftd3.h"]
output = "ffi.rs"
expected-version = "0.69.4"

[[patch.replace]]
old = "foo"
new = "bar"
`)

	cfg, err := config.Load(path)
	require.NoError(err)
	require.Equal("/opt/simple-dftd3", cfg.Upstream.Repo)
	require.Equal([]string{"s-dftd3.h"}, cfg.Bindgen.Headers)
	require.Equal("ffi.rs", cfg.Bindgen.Output)
	require.Len(cfg.Patch.Replace, 1)
	require.Equal(config.Replace{Old: "foo", New: "bar"}, cfg.Patch.Replace[0])
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	require := require.New(t)

	path := writeConfig(t, t.TempDir(), "bindgen.toml", `
[bindgen]
no-such-option = true
`)

	_, err := config.Load(path)
	require.Error(err)
	var cfgErr *config.Error
	require.ErrorAs(err, &cfgErr)
	require.Contains(cfgErr.String(), "bindgen.toml")
}

func TestLoadMergesImports(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	writeConfig(t, dir, "common.toml", `
[paths]
header-dir = "../header"
scratch-dir = "tmp"
crate-root = ".."

[[patch.replace]]
old = "shared"
new = "common"
`)
	path := writeConfig(t, dir, "bindgen.toml", `
imports = ["common.toml"]

[bindgen]
headers = ["s-dftd3.h"]
`)

	cfg, err := config.Load(path)
	require.NoError(err)
	require.Equal("../header", cfg.Paths.HeaderDir)
	require.Equal([]string{"s-dftd3.h"}, cfg.Bindgen.Headers)
	require.Len(cfg.Patch.Replace, 1)
}

func TestLoadOrCreateDefault(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "bindgen.toml")

	cfg, created, err := config.LoadOrCreateDefault(path)
	require.NoError(err)
	require.True(created)
	require.Nil(cfg)

	cfg, created, err = config.LoadOrCreateDefault(path)
	require.NoError(err)
	require.False(created)
	require.Equal("dftd3/simple-dftd3", cfg.Upstream.GitHub)
	require.Equal([]string{"s-dftd3.h"}, cfg.Bindgen.Headers)
	require.Equal("0.69.4", cfg.Bindgen.ExpectedVersion)
}

func TestResolve(t *testing.T) {
	require := require.New(t)

	cfg := &config.Config{}
	cfg.Upstream.Repo = "/opt/simple-dftd3"
	cfg.Paths = config.Paths{
		HeaderDir:  "../header",
		ScratchDir: "tmp",
		CrateRoot:  "..",
	}
	cfg.Bindgen.Headers = []string{"s-dftd3.h"}

	paths, err := cfg.Resolve("/work/dftd3-rs/scripts")
	require.NoError(err)
	require.Equal("/opt/simple-dftd3", paths.Repo)
	require.Equal("/work/dftd3-rs/header", paths.HeaderDir)
	require.Equal("/work/dftd3-rs/scripts/tmp", paths.ScratchDir)
	require.Equal("/work/dftd3-rs", paths.CrateRoot)
}

func TestResolveDefaultsRepoToHome(t *testing.T) {
	require := require.New(t)

	cfg := &config.Config{}
	cfg.Paths = config.Paths{HeaderDir: "h", ScratchDir: "s", CrateRoot: "c"}
	cfg.Bindgen.Headers = []string{"s-dftd3.h"}

	paths, err := cfg.Resolve(t.TempDir())
	require.NoError(err)

	home, err := os.UserHomeDir()
	require.NoError(err)
	require.Equal(filepath.Join(home, "Git-Others", "simple-dftd3"), paths.Repo)
}

func TestResolveRequiresHeaders(t *testing.T) {
	require := require.New(t)

	cfg := &config.Config{}
	cfg.Paths = config.Paths{HeaderDir: "h", ScratchDir: "s", CrateRoot: "c"}

	_, err := cfg.Resolve(t.TempDir())
	require.Error(err)
	require.ErrorContains(err, "no headers")
}
