package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maynagashev/glutenfree/internal/config"
	"github.com/maynagashev/glutenfree/internal/devserver"
	"github.com/maynagashev/glutenfree/internal/logging"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// main вызывает run и завершает процесс с кодом 1 при ошибке.
func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Ошибка выполнения сервера", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	f, err := parseFlags(flag.NewFlagSet("devserver", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	applyFlags(cfg, f)

	logger := logging.New(os.Stdout, logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	srv := devserver.New(devserver.Options{
		JWTSecret: cfg.DevServer.JWTSecret,
		TokenTTL:  cfg.DevServer.TokenTTL,
		Seed:      !cfg.DevServer.NoSeed,
	})
	server := &http.Server{
		Addr:         cfg.DevServer.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Запуск dev-сервера", "addr", server.Addr, "prefix", devserver.APIPrefix, "seed", !cfg.DevServer.NoSeed)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Остановка dev-сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return nil
}

// applyFlags накладывает заданные флаги поверх конфигурации.
func applyFlags(cfg *config.Config, f *flags) {
	if f.Addr != "" {
		cfg.DevServer.Addr = f.Addr
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.NoSeed {
		cfg.DevServer.NoSeed = true
	}
}
