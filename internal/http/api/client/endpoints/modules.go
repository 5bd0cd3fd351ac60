package endpoints

import (
	"github.com/teranga-labs/rappel/internal/adhan"
	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/http/api"
	"github.com/teranga-labs/rappel/internal/scheduler"
	"github.com/teranga-labs/rappel/internal/storage"
)

// PairingModule mounts the public device registration and pairing routes.
func PairingModule(jwtSecret string, store db.Store) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		RegisterPairingRoutes(c.Group, jwtSecret, store)
	})
}

// PreferencesModule mounts the preferences routes.
func PreferencesModule(store db.Store, sched *scheduler.Scheduler) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		RegisterPreferenceRoutes(c.Group, store, sched)
	})
}

// TimetableModule mounts the timetable routes.
func TimetableModule(sched *scheduler.Scheduler) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		RegisterTimetableRoutes(c.Group, sched)
	})
}

// AlertsModule mounts the alert status and control routes.
func AlertsModule(
	sched *scheduler.Scheduler,
	player *adhan.Player,
	store db.Store,
	pub bus.Publisher,
	st storage.Storage,
	audioURL string,
) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		RegisterAlertRoutes(c.Group, sched, player, store, pub, st, audioURL)
	})
}
