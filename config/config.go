package config

import (
	"bytes"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultConfig []byte

// Upstream locates the simple-dftd3 sources.
type Upstream struct {
	// Local checkout. Empty means $HOME/Git-Others/simple-dftd3.
	Repo string `toml:"repo"`
	// GitHub repository ("owner/name") to fetch a source archive from
	// when the local checkout is missing and Fetch is set.
	GitHub   string `toml:"github"`
	Ref      string `toml:"ref"`
	Fetch    bool   `toml:"fetch"`
	CacheDir string `toml:"cache-dir"`
}

// Paths are the directories the pipeline operates on. Relative paths are
// resolved against the config file's directory.
type Paths struct {
	HeaderDir  string `toml:"header-dir"`
	ScratchDir string `toml:"scratch-dir"`
	CrateRoot  string `toml:"crate-root"`
}

// Bindgen configures the external generator invocation.
type Bindgen struct {
	// Headers staged from the upstream include directory. Bindings are
	// generated for each of them.
	Headers []string `toml:"headers"`
	// Output file name. Only honored with a single header; otherwise the
	// name is derived from the header name.
	Output string `toml:"output"`
	// bindgen release the built-in patch table was verified against.
	ExpectedVersion string `toml:"expected-version"`
}

// Replace is an extra literal substitution applied after the built-in
// patch table.
type Replace struct {
	Old string `toml:"old"`
	New string `toml:"new"`
}

type Patch struct {
	Replace []Replace `toml:"replace"`
}

type Config struct {
	Imports  []string `toml:"imports"`
	Upstream Upstream `toml:"upstream"`
	Paths    Paths    `toml:"paths"`
	Bindgen  Bindgen  `toml:"bindgen"`
	Patch    Patch    `toml:"patch"`
}

type Error struct {
	filePath string
	err      error  // short, single-line error
	str      string // full, multi-line error string, or err string, if none
}

// Error returns a short error message.
func (e *Error) Error() string {
	return e.filePath + ": " + e.err.Error()
}

// String returns the full multi-line error string.
func (e *Error) String() string {
	if e.str != "" {
		return "Error in file " + strconv.Quote(e.filePath) + ":\n" + e.str
	} else {
		return e.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

// Load reads the TOML config at path. Files named in imports are loaded
// recursively (relative to the importing file) and merged in.
func Load(path string) (_ *Config, err error) {
	defer func() {
		if err != nil {
			if tErr := (&toml.DecodeError{}); errors.As(err, &tErr) {
				err = &Error{filePath: path, err: err, str: tErr.String()}
			} else if tErr := (&toml.StrictMissingError{}); errors.As(err, &tErr) {
				err = &Error{filePath: path, err: err, str: tErr.String()}
			} else {
				err = &Error{filePath: path, err: err}
			}
		}
	}()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	err = toml.NewDecoder(bytes.NewReader(file)).
		DisallowUnknownFields().
		Decode(&c)
	if err != nil {
		return nil, err
	}

	var importedCs []*Config // collect imported files first so their imports don't leak into our file's imports
	for _, imp := range c.Imports {
		if !filepath.IsAbs(imp) {
			imp = filepath.Join(filepath.Dir(path), imp)
		}
		newC, err := Load(imp)
		if err != nil {
			return nil, err
		}
		importedCs = append(importedCs, newC)
	}
	for _, newC := range importedCs {
		if err := mergo.Merge(c, newC, mergo.WithAppendSlice); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// LoadOrCreateDefault loads the config at path, writing the embedded
// default config there first if no file exists. createdDefault tells the
// caller to prompt the operator to review the fresh file instead of
// running the pipeline.
func LoadOrCreateDefault(path string) (cfg *Config, createdDefault bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, false, err
		}
		if err := os.WriteFile(path, defaultConfig, 0666); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}
