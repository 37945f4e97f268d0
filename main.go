package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"typerace/passage"
	"typerace/race"
	"typerace/transport"
)

func main() {
	cfg := MustLoadConfig()
	setupLogger(cfg.LogLevel)

	texts := passage.NewSource()
	if cfg.PassagesFile != "" {
		loaded, err := passage.Load(cfg.PassagesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.PassagesFile).Msg("Error while loading passages")
		}
		texts = loaded
		LogLoadedPassages(cfg.PassagesFile, texts.Len())
	}

	hub := transport.NewHub()
	registry := race.NewRegistry(texts, cfg.Race.Countdown)
	coordinator := race.NewCoordinator(registry, hub, clockwork.NewRealClock(), cfg.Race)
	router := race.NewRouter(coordinator, hub)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewHTTPServer(cfg, hub, coordinator, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		LogStartedServer(cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	connections, _ := hub.Stats()
	LogShuttingDown(registry.Len(), connections)
	coordinator.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error while shutting down server")
	}
}
