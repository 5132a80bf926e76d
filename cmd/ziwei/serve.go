package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ziwei/internal/mcp"
	"ziwei/internal/metrics"
)

func serveCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")
	return cmd
}

func runServe(metricsAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadOptionalConfig()
	if err != nil {
		return err
	}
	kb, err := loadKnowledgeBase(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	serverCfg := mcp.Config{
		Engine:   newEngine(cfg),
		Meanings: kb,
		Metrics:  m,
		Logger:   logger,
	}
	if cfg != nil {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())
		serverCfg.Profiles = db
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics listening", zap.String("addr", metricsAddr))
	}

	logger.Info("mcp server starting", zap.String("version", version), zap.Bool("profiles", serverCfg.Profiles != nil))
	server := mcp.NewServer(serverCfg, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
