// Command dftd3-bindgen regenerates the Rust FFI bindings of the dftd3-rs
// crate from the simple-dftd3 C header.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	dftd3bindgen "github.com/RESTGroup/dftd3-bindgen"
	"github.com/RESTGroup/dftd3-bindgen/config"
	"github.com/RESTGroup/dftd3-bindgen/toolchain"
)

const version = "0.1.0"

func NewCLI() *cobra.Command {
	var configPath string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "dftd3-bindgen",
		Short: "Regenerate the dftd3-rs FFI bindings",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "bindgen.toml", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log each pipeline step")

	cobra.EnableCommandSorting = false

	var repoOverride string
	var fetch bool

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full bindgen pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, createdDefault, err := config.LoadOrCreateDefault(configPath)
			if err != nil {
				var cfgErr *config.Error
				if errors.As(err, &cfgErr) {
					fmt.Fprintln(os.Stderr, cfgErr.String())
				}
				return err
			}
			if createdDefault {
				fmt.Printf("created default config at %v; review it and rerun\n", configPath)
				return nil
			}

			if repoOverride != "" {
				cfg.Upstream.Repo = repoOverride
			}
			if cmd.Flags().Changed("fetch") {
				cfg.Upstream.Fetch = fetch
			}

			baseDir, err := filepath.Abs(filepath.Dir(configPath))
			if err != nil {
				return err
			}

			log := &dftd3bindgen.Logger{Writer: os.Stderr, MinLevel: dftd3bindgen.WARN}
			if verbose {
				log.MinLevel = dftd3bindgen.INFO
			}

			bg := &toolchain.Bindgen{}
			return dftd3bindgen.Run(dftd3bindgen.Options{
				Config:           cfg,
				BaseDir:          baseDir,
				Generator:        bg,
				Formatter:        &toolchain.CargoFmt{},
				GeneratorVersion: bg.Version,
				Log:              log,
				StatsWriter:      os.Stdout,
			})
		},
	}
	generateCmd.Flags().StringVar(&repoOverride, "repo", "", "Override the upstream simple-dftd3 checkout")
	generateCmd.Flags().BoolVar(&fetch, "fetch", false, "Fetch the pinned upstream archive if the checkout is missing")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, createdDefault, err := config.LoadOrCreateDefault(configPath)
			if err != nil {
				return err
			}
			if !createdDefault {
				return fmt.Errorf("%v already exists", configPath)
			}
			fmt.Printf("created default config at %v\n", configPath)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dftd3-bindgen", version)
		},
	}

	rootCmd.AddCommand(
		generateCmd,
		initCmd,
		versionCmd,
	)
	rootCmd.RunE = generateCmd.RunE

	return rootCmd
}

func main() {
	_ = godotenv.Load()

	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
