package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tron/internal/about"
	"tron/internal/app"
	"tron/internal/config"
	"tron/internal/logging"
	"tron/internal/mcpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		return err
	}

	svc, err := app.NewService(cfg, log)
	if err != nil {
		return err
	}
	handler, transports := newHandler(cfg, svc, log)

	// No WriteTimeout: the MCP SSE transport holds streams open.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
		defer cancel()
		var errs []error
		if transports != nil {
			errs = append(errs, transports.Shutdown(shutdownCtx))
		}
		errs = append(errs, srv.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})
	return g.Wait()
}

// newHandler assembles routes, the MCP transports (when enabled) and the
// middleware chain. transports is nil when MCP is disabled.
func newHandler(cfg config.Config, svc looker, log logrus.FieldLogger) (http.Handler, *mcpserver.Transports) {
	mux := http.NewServeMux()
	registerRoutes(mux, cfg.Server.RoutePrefix, svc, log)

	var transports *mcpserver.Transports
	if cfg.MCP.Enabled {
		mcpCfg := mcpserver.Config{
			Name:        cfg.MCP.Name,
			Version:     about.ServiceVersion,
			Description: cfg.MCP.Description,
			HTTPPath:    cfg.MCP.HTTPPath,
			SSEPath:     cfg.MCP.SSEPath,
			MessagePath: cfg.MCP.MessagePath,
			BaseURL:     cfg.MCP.BaseURL,
		}
		transports = mcpserver.Mount(mux, mcpCfg, mcpserver.New(mcpCfg, svc))
		log.WithFields(logrus.Fields{
			"http": cfg.MCP.HTTPPath,
			"sse":  cfg.MCP.SSEPath,
		}).Info("mcp transports mounted")
	}

	return withRequestID(withAccessLog(log, recoverPanic(log, withCORS(mux)))), transports
}
