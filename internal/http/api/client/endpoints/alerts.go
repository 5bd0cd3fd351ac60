package endpoints

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/adhan"
	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/http/api"
	"github.com/teranga-labs/rappel/internal/http/api/client/packets"
	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/scheduler"
	"github.com/teranga-labs/rappel/internal/storage"
)

type AlertsController struct {
	sched   *scheduler.Scheduler
	player  *adhan.Player
	store   db.Store
	pub     bus.Publisher
	storage storage.Storage

	mu       sync.Mutex
	audioURL string
}

func RegisterAlertRoutes(
	r gin.IRoutes,
	sched *scheduler.Scheduler,
	player *adhan.Player,
	store db.Store,
	pub bus.Publisher,
	st storage.Storage,
	audioURL string,
) {
	ctl := &AlertsController{
		sched:    sched,
		player:   player,
		store:    store,
		pub:      pub,
		storage:  st,
		audioURL: audioURL,
	}

	r.GET("/alerts/status", ctl.getStatus)
	r.POST("/alerts/stop", ctl.stopAdhan)
	r.POST("/alerts/unlock", ctl.unlockAudio)
	r.PUT("/alerts/sound", ctl.setSound)
	r.PUT("/alerts/permission", api.ResolveEndpointWithDevice(ctl.reportPermission))
	r.POST("/alerts/clicked", ctl.notificationClicked)
	r.GET("/alerts/audio", ctl.getAudio)
	r.POST("/alerts/audio", ctl.uploadAudio)
}

// GET /api/client/alerts/status
func (a *AlertsController) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.sched.Status())
}

// POST /api/client/alerts/stop
func (a *AlertsController) stopAdhan(c *gin.Context) {
	a.player.Stop()
	// other foreground instances stop through the event topic
	if err := a.pub.Publish(bus.TopicForeground, bus.Event{Type: bus.EvtStopAdhan}); err != nil {
		log.Warn().Err(err).Msg("failed to broadcast adhan stop")
	}
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}

// POST /api/client/alerts/unlock
func (a *AlertsController) unlockAudio(c *gin.Context) {
	a.player.Unlock()
	c.JSON(http.StatusOK, gin.H{"unlocked": true})
}

// PUT /api/client/alerts/sound
func (a *AlertsController) setSound(c *gin.Context) {
	var request packets.SetSoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.player.SetSoundEnabled(*request.Enabled)
	c.JSON(http.StatusOK, gin.H{"sound_enabled": *request.Enabled})
}

// PUT /api/client/alerts/permission
func (a *AlertsController) reportPermission(c *gin.Context, device *model.Device) (any, *api.Error) {
	var request packets.ReportPermissionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	state := model.PermissionState(request.State)
	if err := a.store.SetDevicePermission(device.ID, state); err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("could not record permission")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "Something went wrong, please try again"}
	}

	log.Info().Int("device_id", device.ID).Str("state", request.State).Msg("notification permission reported")
	return gin.H{"state": request.State}, nil
}

// POST /api/client/alerts/clicked
func (a *AlertsController) notificationClicked(c *gin.Context) {
	var request packets.NotificationClickedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch request.Action {
	case "stop":
		a.player.Stop()
		if err := a.pub.Publish(bus.TopicForeground, bus.Event{Type: bus.EvtStopAdhan}); err != nil {
			log.Warn().Err(err).Msg("failed to broadcast adhan stop")
		}
	case "open":
		// the client handles navigation itself
	default:
		log.Debug().Str("action", request.Action).Str("tag", request.Tag).Msg("ignoring notification action")
	}
	c.JSON(http.StatusOK, gin.H{"handled": true})
}

// GET /api/client/alerts/audio
func (a *AlertsController) getAudio(c *gin.Context) {
	a.mu.Lock()
	url := a.audioURL
	a.mu.Unlock()
	c.JSON(http.StatusOK, packets.AudioResponse{URL: url})
}

// POST /api/client/alerts/audio
func (a *AlertsController) uploadAudio(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	url, err := a.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("audio upload failed")
		return
	}

	a.mu.Lock()
	a.audioURL = url
	a.mu.Unlock()
	a.player.SetAsset(url)

	c.JSON(http.StatusCreated, packets.AudioResponse{URL: url})
}
