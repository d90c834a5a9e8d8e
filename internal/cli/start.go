package cli

import (
	"fmt"

	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/daemon"
	"github.com/harun/mira/internal/logger"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Mira relay",
	Long: `Start the Mira relay in the foreground. The relay polls Telegram for
messages, forwards them to the configured completion provider, and serves a
health probe. Fatal failures trigger a bounded number of automatic restarts.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: true,
		Pretty:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	sup := daemon.NewSupervisor(func() error {
		return daemon.Run(cfg, log)
	}, log.GetZerolog())

	if err := sup.Run(); err != nil {
		return fmt.Errorf("relay terminated: %w", err)
	}

	return nil
}
