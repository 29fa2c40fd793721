package dftd3bindgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/olekukonko/tablewriter"

	"github.com/RESTGroup/dftd3-bindgen/config"
	"github.com/RESTGroup/dftd3-bindgen/patch"
	"github.com/RESTGroup/dftd3-bindgen/stage"
	"github.com/RESTGroup/dftd3-bindgen/toolchain"
	"github.com/RESTGroup/dftd3-bindgen/upstream"
)

// Options configures a single pipeline run.
type Options struct {
	Config *config.Config
	// BaseDir anchors relative config paths. Usually the directory of
	// the config file.
	BaseDir string
	// Generator defaults to the real bindgen binary.
	Generator toolchain.Generator
	// Formatter defaults to "cargo fmt".
	Formatter toolchain.Formatter
	// GeneratorVersion reports the generator's version for the
	// expected-version check. Leave nil to skip the check.
	GeneratorVersion func() (string, error)
	// Log may be nil for a silent run.
	Log *Logger
	// StatsWriter receives the timing summary. Nil disables it.
	StatsWriter io.Writer
}

// Run executes the whole regeneration pipeline: ensure upstream sources,
// stage the headers, generate bindings, patch them and publish them into
// the crate. Steps run strictly in sequence; the first failure aborts the
// run with the underlying error.
func Run(opts Options) error {
	log := opts.Log
	if log == nil {
		log = &Logger{}
	}
	gen := opts.Generator
	if gen == nil {
		gen = &toolchain.Bindgen{}
	}
	fmtr := opts.Formatter
	if fmtr == nil {
		fmtr = &toolchain.CargoFmt{}
	}
	cfg := opts.Config

	paths, err := cfg.Resolve(opts.BaseDir)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}

	timeStart := time.Now()

	repoDir := paths.Repo
	if _, err := os.Stat(repoDir); os.IsNotExist(err) && cfg.Upstream.Fetch {
		src := &upstream.Source{
			GitHub:   cfg.Upstream.GitHub,
			Ref:      cfg.Upstream.Ref,
			CacheDir: paths.CacheDir,
		}
		have, err := src.Have()
		if err != nil {
			return fmt.Errorf("check upstream cache: %w", err)
		}
		if !have {
			log.Log(INFO, "downloading %v %v", cfg.Upstream.GitHub, cfg.Upstream.Ref)
			if err := src.Get(); err != nil {
				return fmt.Errorf("fetch upstream: %w", err)
			}
		}
		repoDir = src.Dir()
	}

	timeUpstream := time.Since(timeStart)
	timeStart = time.Now()

	includeDir := filepath.Join(repoDir, "include")
	if err := stage.Headers(includeDir, paths.HeaderDir, cfg.Bindgen.Headers); err != nil {
		return fmt.Errorf("stage headers: %w", err)
	}
	if err := stage.ResetDir(paths.ScratchDir); err != nil {
		return fmt.Errorf("reset scratch dir: %w", err)
	}
	if err := stage.Mirror(paths.HeaderDir, paths.ScratchDir); err != nil {
		return fmt.Errorf("mirror headers: %w", err)
	}

	timeStage := time.Since(timeStart)
	timeStart = time.Now()

	if opts.GeneratorVersion != nil && cfg.Bindgen.ExpectedVersion != "" {
		if got, err := opts.GeneratorVersion(); err != nil {
			log.Log(WARN, "cannot determine bindgen version: %v", err)
		} else if toolchain.VersionMismatch(got, cfg.Bindgen.ExpectedVersion) {
			log.Log(WARN, "bindgen %v differs from %v, which the patch table was verified against; re-check the replacements",
				got, cfg.Bindgen.ExpectedVersion)
		}
	}

	reps := patch.Defaults()
	for _, rep := range cfg.Patch.Replace {
		reps = append(reps, patch.Replacement(rep))
	}

	outFiles := make([]string, 0, len(cfg.Bindgen.Headers))
	for _, header := range cfg.Bindgen.Headers {
		outFile := outputName(cfg, header)
		log.Log(INFO, "generating %v from %v", outFile, header)
		if err := gen.Generate(paths.ScratchDir, header, outFile); err != nil {
			return fmt.Errorf("generate bindings: %w", err)
		}

		outPath := filepath.Join(paths.ScratchDir, outFile)
		raw, err := os.ReadFile(outPath)
		if err != nil {
			return fmt.Errorf("read generated bindings: %w", err)
		}
		processed := patch.Process(string(raw), reps)
		if err := os.WriteFile(outPath, []byte(processed), 0666); err != nil {
			return fmt.Errorf("write patched bindings: %w", err)
		}
		outFiles = append(outFiles, outFile)
	}

	timeGenerate := time.Since(timeStart)
	timeStart = time.Now()

	srcDir := filepath.Join(paths.CrateRoot, "src")
	if err := os.MkdirAll(srcDir, os.ModePerm); err != nil {
		return err
	}
	for _, outFile := range outFiles {
		src := filepath.Join(paths.ScratchDir, outFile)
		dst := filepath.Join(srcDir, outFile)
		if err := stage.CopyFile(src, dst); err != nil {
			return fmt.Errorf("publish %v: %w", outFile, err)
		}
	}
	if err := fmtr.Format(paths.CrateRoot); err != nil {
		return fmt.Errorf("format crate: %w", err)
	}

	timePublish := time.Since(timeStart)

	if opts.StatsWriter != nil {
		tbl := tablewriter.NewWriter(opts.StatsWriter)
		tbl.SetHeader([]string{"Task", "Time"})
		tbl.AppendBulk([][]string{
			{"Ensure upstream", timeUpstream.String()},
			{"Stage headers", timeStage.String()},
			{"Generate and patch", timeGenerate.String()},
			{"Publish and format", timePublish.String()},
		})
		tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})
		tbl.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		tbl.SetCenterSeparator("|")
		tbl.Render()
	}

	log.Log(INFO, "wrote bindings to %v", srcDir)
	return nil
}

// outputName returns the binding file name for header. The configured
// output name is honored for single-header runs; with several headers each
// file is named after its header.
func outputName(cfg *config.Config, header string) string {
	if cfg.Bindgen.Output != "" && len(cfg.Bindgen.Headers) == 1 {
		return cfg.Bindgen.Output
	}
	base := strings.TrimSuffix(header, filepath.Ext(header))
	return strcase.ToSnake(base) + ".rs"
}
