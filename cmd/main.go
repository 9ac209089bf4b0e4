package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"proteinstruct/internal/config"
	"proteinstruct/internal/logging"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// app carries the loaded configuration and logger to every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	logger   *log.Logger
	closeLog func() error
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closeLog, err := logging.New(logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Verbose: a.verbose,
		Out:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.cfg, a.logger, a.closeLog = cfg, logger, closeLog

	// Debug: show loaded config
	logger.Debug("loaded config", "log_file", cfg.LogFile, "log_level", cfg.LogLevel, "uniprot", cfg.UniProtBaseURL, "swissmodel", cfg.SwissModelBaseURL, "min_length", cfg.MinLength, "wrap_width", cfg.WrapWidth)
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.closeLog != nil {
		return a.closeLog()
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:                "proteinstruct",
		Short:              "Fetch reviewed proteomes from UniProt and inspect proteins",
		Version:            version,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.json (optional)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose (debug) logging")

	root.AddCommand(newSpeciesCmd(a), newFetchCmd(a), newStructureCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
