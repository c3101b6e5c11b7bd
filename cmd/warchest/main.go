// Command warchest is the campaign data core CLI: profile, asset vault,
// polling, social connections, content generation, and the realtime
// speech-coaching session, backed by the dual-mode persistence layer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/soworklabs/warchest/internal/config"
	"github.com/soworklabs/warchest/internal/content"
	"github.com/soworklabs/warchest/internal/gateway"
	"github.com/soworklabs/warchest/internal/notify"
	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/syncdata"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// Populated by the root PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "warchest",
	Short: "warchest - campaign data core",
	Long: `warchest is the headless core of the campaign dashboard.

Data commands read and write through the synchronized data service: when a
session token is held they go to the backend API, otherwise (or when the
backend is unreachable) they fall back to the local store. Content commands
call the Gemini API directly; coach runs a realtime voice-coaching session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cfgPath == "" {
			cfgPath = config.DefaultPath()
		}
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if !verbose {
			switch cfg.Logging.Level {
			case "debug":
				zapCfg.Level.SetLevel(zapcore.DebugLevel)
			case "warn":
				zapCfg.Level.SetLevel(zapcore.WarnLevel)
			case "error":
				zapCfg.Level.SetLevel(zapcore.ErrorLevel)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app wires the persistence stack for one command invocation.
type app struct {
	local   *store.Local
	history *store.History
	remote  *gateway.Client
	bus     *notify.Bus
	data    *syncdata.Service
}

func newApp() (*app, error) {
	local, err := store.Open(store.Config{Path: cfg.Storage.DataDir, Logger: logger})
	if err != nil {
		return nil, err
	}

	history, err := store.OpenHistory(cfg.Storage.HistoryPath)
	if err != nil {
		local.Close()
		return nil, err
	}

	remote, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.APITimeout(),
	}, local, logger)
	if err != nil {
		history.Close()
		local.Close()
		return nil, err
	}

	bus := notify.NewBus()
	return &app{
		local:   local,
		history: history,
		remote:  remote,
		bus:     bus,
		data:    syncdata.New(local, remote, bus, logger),
	}, nil
}

func (a *app) Close() {
	a.bus.Close()
	if err := a.history.Close(); err != nil {
		logger.Warn("closing history archive", zap.Error(err))
	}
	if err := a.local.Close(); err != nil {
		logger.Warn("closing local store", zap.Error(err))
	}
}

// generator builds the Gemini-backed content generator, archiving results
// into the local history.
func (a *app) generator(ctx context.Context) (*content.Generator, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("no Gemini API key configured (set gemini.api_key or GEMINI_API_KEY)")
	}
	return content.NewGenerator(ctx, cfg.Gemini.APIKey, a.history, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.warchest/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
	rootCmd.AddCommand(dnaCmd, assetsCmd, pollingCmd, socialCmd)
	rootCmd.AddCommand(intelCmd, briefingCmd, strategyCmd, tasksCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(coachCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
