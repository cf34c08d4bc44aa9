package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bodul/clockofclocks/clockface"
	"github.com/bodul/clockofclocks/render"
	"github.com/gogpu/gg"
	"github.com/jonboulle/clockwork"
)

func main() {
	renderPath := flag.String("render", "", "write a PNG of the current clock face to this file and exit")
	flag.Parse()

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalide : %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	gg.SetLogger(logger)

	if *renderPath != "" {
		if err := renderFile(*renderPath); err != nil {
			slog.Error("rendu impossible", "path", *renderPath, "err", err)
			os.Exit(1)
		}
		slog.Info("cadran écrit", "path", *renderPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("arrêt du serveur", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) error {
	var gemini *GeminiClient
	if cfg.Gemini.ProjectID != "" {
		var err error
		gemini, err = NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			return fmt.Errorf("initialiser Gemini : %w", err)
		}
		defer gemini.Close()
		slog.Info("client Gemini initialisé", "project", cfg.Gemini.ProjectID)
	} else {
		slog.Info("GCP_PROJECT_ID non défini — textes des démos statiques")
	}

	clock := clockwork.NewRealClock()
	store := NewStore(clock)
	sse := NewBroadcaster()

	go NewPoller(clock, cfg.PollInterval, sse, store).Run(ctx)

	srv := NewServer(store, sse, gemini)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx }, // ends SSE streams on shutdown
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("serveur démarré", "url", "http://localhost:"+cfg.Port, "poll", cfg.PollInterval)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func renderFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Face(f, clockface.Sample(), render.DefaultOptions()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
