package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ai-visibility-validator/internal/config"
	"ai-visibility-validator/internal/server"
	"ai-visibility-validator/internal/wiring"
	"ai-visibility-validator/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("AIVIS_CONFIG"), "YAML config file (optional)")
	port := flag.Int("port", 0, "listen port (overrides config and PORT)")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	l := logger.NewWithOptions(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	c := wiring.New(cfg, l)
	defer c.Close()

	sw := server.NewSwitch(c.Server().Router())
	if *configPath != "" {
		w, err := config.NewWatcher(*configPath, cfg.ReloadDebounce, l, func(next config.Config) {
			c.Reload(next)
			sw.Store(c.Server().Router())
		})
		if err != nil {
			l.Warn("config hot reload disabled", "err", err)
		} else {
			w.Start()
			defer w.Stop()
		}
	}

	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      sw,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		l.Info("server listening", "addr", addr, "bots", len(cfg.Catalog.Bots), "probe_profiles", len(cfg.Catalog.Profiles))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("shutdown", "err", err)
	}
	l.Info("bye")
}
