package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/adhan"
	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/ledger"
	"github.com/teranga-labs/rappel/internal/model"
	redisclient "github.com/teranga-labs/rappel/internal/redis"
	"github.com/teranga-labs/rappel/internal/scheduler"
	"github.com/teranga-labs/rappel/internal/timetable"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on process environment")
	}

	env := LoadEnvironment()
	if env.Environment == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	store := db.NewStore()

	redisclient.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	busConn, err := bus.Connect(env.MQTTBrokerURL, "rappel-server")
	if err != nil {
		log.Fatal().Err(err).Msg("MQTT connect failed")
	}
	defer busConn.Disconnect()

	storageSystem := InitStorage(env)

	aladhan := timetable.NewClient(env.AladhanBaseURL, 30)
	provider := timetable.NewProvider(aladhan, timetable.RedisCache{}, model.DefaultMethod)

	player := adhan.NewPlayer(adhan.NewDeviceEngine(busConn, store), env.AdhanAudioURL, adhan.DefaultCeiling)
	sched := scheduler.New(provider, ledger.New(store), player, busConn, store, time.Second)

	// the worker (and other server instances) can stop a ringing adhan
	if err := busConn.Subscribe(bus.TopicForeground, func(payload []byte) {
		var ev bus.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Warn().Err(err).Msg("discarding malformed foreground event")
			return
		}
		switch ev.Type {
		case bus.EvtStopAdhan:
			player.Stop()
		case bus.EvtNewVersion:
			log.Info().Msg("new version available")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("foreground event subscription failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sched.Run(ctx)

	if env.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, env, store, storageSystem, sched, player, busConn)

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
