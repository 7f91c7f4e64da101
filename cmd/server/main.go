package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/compgen/internal/api"
	"github.com/dgallion1/compgen/internal/config"
	"github.com/dgallion1/compgen/internal/llm"
	"github.com/dgallion1/compgen/internal/parser"
	"github.com/dgallion1/compgen/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		log.Error("load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize model client.
	backend, err := llm.New(ctx, cfg)
	if err != nil {
		log.Error("llm client", "error", err)
		os.Exit(1)
	}
	stats := llm.NewLLMStats(time.Hour)
	streamer := llm.Instrument(backend, stats)

	// Initialize pipeline.
	p := parser.New(parser.Options{
		FenceAwareSplit: cfg.SplitFenceAware,
		Logger:          log,
	})
	store := pipeline.NewStore(cfg.GenerationStoreSize, cfg.GenerationTTL)
	runner := pipeline.NewRunner(streamer, p, store, log, cfg.MaxConcurrentGenerations, cfg.StreamTimeout)

	// Initialize HTTP server.
	srv := api.NewServer(runner, store, p, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting compgen",
		"port", cfg.Port,
		"provider", cfg.Provider,
		"model", backend.Model(),
		"auth", cfg.APIKey != "",
	)
	err = serve(httpServer, ln, sigCh, 10*time.Second, log, func() {
		// Streams still open after the grace period are cut.
		cancel()
		backend.Close()
	})
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// serve runs srv on ln until a signal arrives, then drains in-flight
// requests for up to grace before calling onShutdown. It returns only after
// the shutdown sequence has finished.
func serve(srv *http.Server, ln net.Listener, sig <-chan os.Signal, grace time.Duration, log *slog.Logger, onShutdown func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-sig
		log.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("graceful shutdown incomplete", "error", err)
		}
		onShutdown()
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
