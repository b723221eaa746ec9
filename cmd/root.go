package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/app"
	"github.com/bnema/modctl/internal/config"
	"github.com/bnema/modctl/internal/logger"
	"github.com/bnema/modctl/internal/scanner"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "modctl",
	Short:   "Friday Night Funkin' mod manager",
	Version: version + " (" + commit + ")",
	Long: `A Go CLI tool to install, browse and launch Friday Night Funkin' mods.
Mods are downloaded from GameBanana into the install location and tracked
by their metadata.json.

Quick start:
  modctl search "vs"     Browse the GameBanana catalog
  modctl download <id>   Install a mod from the catalog
  modctl launch <mod>    Start an installed mod`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded", "file", config.FilePath(), "install_location", cfg.Mods.InstallLocation)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
}

// getLogger returns the logger tagged for component
func getLogger(component string) *log.Logger {
	return logger.For(component)
}

// loadState builds the shared state and fills the registry from the install
// location
func loadState() (*app.State, *scanner.Scanner, error) {
	state := app.NewState()
	sc := scanner.New(cfg.Mods.InstallLocation, cfg.Mods.Validate, getLogger("scanner"))

	if err := sc.EnsureRoot(); err != nil {
		return nil, nil, fmt.Errorf("failed to create install location: %w", err)
	}

	result, err := sc.Sync(state.Mods)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan mods: %w", err)
	}
	for _, r := range result.Rejected {
		logger.Warn("Skipping mod", "path", r.Path, "error", r.Err)
	}

	return state, sc, nil
}
