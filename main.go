package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gateway/api"
	"gateway/config"
	"gateway/integration/hass"
	"gateway/integration/mqtt"
	"gateway/logging"
	"gateway/vacuum"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Get(config.Path())
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	slog.SetDefault(log)

	var state vacuum.StatePort
	var commands vacuum.CommandPort

	switch cfg.Backend {
	case config.BackendMQTT:
		client, err := mqtt.New(cfg.MQTT)
		if err != nil {
			log.Error("Failed to connect to mqtt", "error", err)
			os.Exit(1)
		}

		store := mqtt.NewStore(cfg.MQTT.Prefix, cfg.MQTT.StateTTL)
		store.Start()
		defer store.Stop()

		if err := store.Subscribe(client); err != nil {
			log.Error("Failed to subscribe to statestream", "error", err)
			os.Exit(1)
		}
		defer mqtt.Delete(client, store.Topic())

		state = store
		commands = mqtt.NewCommander(client, cfg.MQTT.CommandTopic)

	default:
		client := hass.New(cfg.Hass)
		state = client
		commands = client
	}

	log.Info("Initializing Vacuum Control", "backend", cfg.Backend)

	gateway := vacuum.New(cfg.Vacuum, state, commands)
	r := api.NewRouter(cfg.HTTP, gateway, log)

	srv := http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error("Failed to shut down server", "error", err)
		}
	}()

	log.Info("Starting server", "addr", cfg.HTTP.Addr, "pid", os.Getpid())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server stopped", "error", err)
	}
}
