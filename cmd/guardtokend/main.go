package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"guardtoken/config"
	"guardtoken/core"
	"guardtoken/observability/logging"
	"guardtoken/rpc"
	"guardtoken/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "Path to the config file")
	flag.Parse()

	logger := logging.Setup("guardtokend", os.Getenv("GUARDTOKEN_ENV"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	governance, err := cfg.Governance()
	if err != nil {
		logger.Error("invalid governance address", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		logger.Error("failed to open database", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ledger, err := core.NewLedger(db, core.Config{
		TokenName:  cfg.TokenName,
		ChainID:    cfg.ChainID,
		Governance: governance,
	})
	if err != nil {
		logger.Error("failed to construct ledger", "error", err)
		os.Exit(1)
	}

	authToken := cfg.RPCToken()
	if authToken == "" {
		logger.Warn("rpc auth token not set; privileged methods disabled", "env", cfg.RPCTokenEnv)
	}

	rpcServer := rpc.NewServer(ledger, authToken, cfg.RateLimitPerMin)
	httpServer := &http.Server{Addr: cfg.RPCAddress, Handler: rpcServer.Handler()}
	opsServer := &http.Server{Addr: cfg.OpsAddress, Handler: rpc.NewOpsRouter()}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("starting JSON-RPC server", "addr", cfg.RPCAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("starting ops server", "addr", cfg.OpsAddress)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server failure", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	_ = opsServer.Shutdown(ctx)
}
