package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/HanTheDev/review-reply-gateway/internal/config"
	"github.com/HanTheDev/review-reply-gateway/internal/logger"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Review reply gateway",
		Long:          "Generates owner replies to customer reviews behind per-user quotas.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newTokenCmd(),
		newQuotaCmd(),
	)
	return root
}

// loadConfig reads the environment and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.LogLevel)
	return cfg, nil
}
