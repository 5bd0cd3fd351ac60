package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/http/api/client/packets"
	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/scheduler"
)

type PreferencesController struct {
	store db.Store
	sched *scheduler.Scheduler
}

func RegisterPreferenceRoutes(r gin.IRoutes, store db.Store, sched *scheduler.Scheduler) {
	ctl := &PreferencesController{store: store, sched: sched}

	r.GET("/preferences", ctl.getPreferences)
	r.PUT("/preferences", ctl.updatePreferences)
}

// GET /api/client/preferences
func (p *PreferencesController) getPreferences(c *gin.Context) {
	prefs, err := p.store.LoadPreferences()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Msg("could not load preferences")
		return
	}
	c.JSON(http.StatusOK, prefs.WithDefaults())
}

// PUT /api/client/preferences
func (p *PreferencesController) updatePreferences(c *gin.Context) {
	var request packets.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		log.Debug().Err(err).Msg("error binding JSON")
		return
	}

	prefs := model.Preferences{
		City:                 request.City,
		UseManualDay:         request.UseManualDay,
		ManualDay:            request.ManualDay,
		NotificationsEnabled: request.NotificationsEnabled,
		NotificationSettings: model.NotificationSettings{
			Suhoor: request.NotificationSettings.Suhoor,
			Iftar:  request.NotificationSettings.Iftar,
			Daily:  request.NotificationSettings.Daily,
		},
	}.WithDefaults()

	if err := p.store.SavePreferences(prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Msg("could not save preferences")
		return
	}

	p.sched.ApplyPreferences(prefs)
	c.JSON(http.StatusOK, prefs)
}
