package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	logger     = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ziwei",
		Short: "Zi Wei Dou Shu natal charts, decade cycles and profiles",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := buildLogger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.SilenceUsage = true

	root.PersistentFlags().StringVar(&configPath, "config", "", "Project config file (default ./ziwei.yaml when present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(chartCmd())
	root.AddCommand(decadesCmd())
	root.AddCommand(activationsCmd())
	root.AddCommand(lunarCmd())
	root.AddCommand(profileCmd())
	root.AddCommand(importCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	return root
}

// buildLogger writes JSON logs to stderr. --verbose wins over the config's
// log level.
func buildLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	switch {
	case verbose:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg, err := loadOptionalConfig()
		if err != nil {
			return nil, err
		}
		if cfg != nil && cfg.Log.Level != "" {
			level, err := zapcore.ParseLevel(cfg.Log.Level)
			if err != nil {
				return nil, err
			}
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}
	return config.Build()
}
