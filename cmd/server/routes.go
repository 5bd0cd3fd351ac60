package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/teranga-labs/rappel/internal/adhan"
	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/http/api"
	"github.com/teranga-labs/rappel/internal/http/api/client"
	clientapi "github.com/teranga-labs/rappel/internal/http/api/client/endpoints"
	"github.com/teranga-labs/rappel/internal/scheduler"
	"github.com/teranga-labs/rappel/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	storageSystem storage.Storage,
	sched *scheduler.Scheduler,
	player *adhan.Player,
	pub bus.Publisher,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/client",
		Auth:   false,
	},
		clientapi.PairingModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/client",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		clientapi.PreferencesModule(store, sched),
		clientapi.TimetableModule(sched),
		clientapi.AlertsModule(sched, player, store, pub, storageSystem, env.AdhanAudioURL),
	)

	// countdown stream; the socket carries no device-scoped data
	r.GET("/api/client/alerts/ws", client.AlertsWebSocket(sched))

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
