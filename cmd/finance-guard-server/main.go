package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/internal/config"
	"github.com/iwvelando/finance-guard/internal/dispatch"
	"github.com/iwvelando/finance-guard/internal/server"
	"github.com/iwvelando/finance-guard/pkg/audit"
	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/guard"
	"github.com/iwvelando/finance-guard/pkg/rules"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to verification configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	conf := config.Default()
	if _, statErr := os.Stat(*configLocation); statErr == nil {
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			logger.Fatal(fmt.Sprintf("failed to load configuration at %s", *configLocation),
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	policy, err := conf.Policy()
	if err != nil {
		logger.Fatal("failed to build tolerance policy", zap.String("op", "main"), zap.Error(err))
	}
	rulebook, err := rules.New(logger, conf.Compliance, conf.Rules)
	if err != nil {
		logger.Fatal("failed to compile compliance rules", zap.String("op", "main"), zap.Error(err))
	}
	set, err := guard.NewSet(logger, policy, rulebook)
	if err != nil {
		logger.Fatal("failed to build guards", zap.String("op", "main"), zap.Error(err))
	}

	trail := audit.NewTrail()
	handler := server.NewHandler(logger, dispatch.New(logger, set, trail), trail, serverConf, version)

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.String("op", "main"), zap.Error(err))
		}
	}()

	logger.Info("starting verification server",
		zap.String("op", "main"),
		zap.String("address", serverConf.Address),
		zap.String("session_id", trail.SessionID()),
		zap.String("version", version),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.String("op", "main"), zap.Error(err))
	}

	summary := trail.Summary()
	logger.Info("server stopped",
		zap.String("op", "main"),
		zap.Int("verified", summary.Total),
		zap.Int("approved", summary.Approved),
		zap.Int("blocked", summary.Blocked),
		zap.Int("rejected", summary.Rejected),
	)
}
