package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rfweber/qsotrainer/internal/api"
	"github.com/rfweber/qsotrainer/internal/audio"
	"github.com/rfweber/qsotrainer/internal/config"
	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/internal/storage/sqlite"
	"github.com/rfweber/qsotrainer/internal/websocket"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "qsotrainer: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting qsotrainer",
		logger.String("host", cfg.Server.Host),
		logger.Int("port", cfg.Server.Port),
	)

	// Storage for the session review history.
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	sessionStorage, err := sqlite.NewSessionStorage(db, log)
	if err != nil {
		return err
	}

	// Event push for connected UIs.
	wsServer := websocket.NewServer(cfg.Server.CORSAllowedOrigins, log)
	defer wsServer.Close()

	audioCfg, err := cfg.AudioEngine()
	if err != nil {
		return err
	}

	// Each session gets its own player. The paced sink plays tokens at
	// their real duration; clients that want the rendered audio can
	// swap in a real output.
	playerFactory := func(sessionID string) (session.TokenPlayer, error) {
		return audio.NewPlayer(audioCfg, audio.NewPacedSink(audioCfg.SampleRate), log)
	}

	manager := session.NewManager(qso.NewGenerator(), playerFactory, sessionStorage, wsServer, log)
	defer manager.CloseAll()

	router := api.NewRouter(manager, sessionStorage, wsServer, cfg, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
