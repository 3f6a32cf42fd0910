package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is where commands look for the config file when --config is not given
const DefaultConfigPath = "config/config.yaml"

var (
	cfgFile   string
	verbose   bool
	cfg       *config.Config
	cfgErr    error
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "conference-clipper",
	Short: "Cut conference room recordings into talks and publish them",
	Long: `conference-clipper turns a schedule of conference talks into one
YouTube video per talk:

  - Download one recording per room
  - Cut each talk out of its room recording (stream copy, no re-encode)
  - Upload every clip to YouTube, one at a time per room

Rooms are processed concurrently. A failing room never stops the others.

Example:
  conference-clipper run --config config/config.yaml`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = DefaultConfigPath
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Config file is optional for some commands (like setup and help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}

	opts := logging.Options{Verbose: verbose}
	if cfg != nil {
		opts.Verbose = opts.Verbose || cfg.Logging.Verbose
		opts.File = cfg.Logging.File
	}

	closer, err := logging.Init(opts)
	if err != nil {
		// Fall back to console-only logging
		closer, _ = logging.Init(logging.Options{Verbose: opts.Verbose})
		log.Warn().Err(err).Msg("log file unavailable")
	}
	logCloser = closer
}

// requireConfig returns the loaded configuration or explains why there is none
func requireConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil && !errors.Is(cfgErr, fs.ErrNotExist) {
		return nil, cfgErr
	}
	return nil, fmt.Errorf("config file %s not found. Run 'conference-clipper setup' first", cfgFile)
}
