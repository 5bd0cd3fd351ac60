package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/coordinator"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on process environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	brokerURL := os.Getenv("MQTT_BROKER_URL")
	if databaseURL == "" {
		log.Fatal().Msg("Missing required environment variables")
	}
	if brokerURL == "" {
		brokerURL = "tcp://0.0.0.0:1883"
	}
	if os.Getenv("APP_ENV") == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := db.Init(databaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	store := db.NewStore()

	busConn, err := bus.Connect(brokerURL, "rappel-worker")
	if err != nil {
		log.Fatal().Err(err).Msg("MQTT connect failed")
	}
	defer busConn.Disconnect()

	notifier := notify.NewDeviceNotifier(busConn, store)
	coord := coordinator.New(store, notifier, busConn)
	if err := coord.Bind(busConn); err != nil {
		log.Fatal().Err(err).Msg("topic subscription failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord.Run(ctx)
}
