package endpoints

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/http/api/client/packets"
	"github.com/teranga-labs/rappel/internal/http/middleware"
)

type PairingController struct {
	jwtSecret string
	store     db.Store
}

func pairingController(secret string, store db.Store) *PairingController {
	return &PairingController{jwtSecret: secret, store: store}
}

// mounts pairing routes under /api/client
func RegisterPairingRoutes(r gin.IRoutes, jwtSecret string, store db.Store) {
	ctl := pairingController(jwtSecret, store)

	r.POST("/devices/register", ctl.registerDevice)
	r.POST("/devices/pair", ctl.pairDevice)
}

// POST /api/client/devices/register
func (p *PairingController) registerDevice(c *gin.Context) {
	var request packets.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		log.Debug().Err(err).Msg("error binding JSON")
		return
	}

	hashed, err := middleware.HashSecret(request.Secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Str("device", request.Name).Msg("error hashing device secret")
		return
	}

	// short code the user retypes on the device, not a full uuid
	code := strings.Split(uuid.NewString(), "-")[0]

	device, err := p.store.CreateDevice(request.Name, hashed, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Str("device", request.Name).Msg("could not create device")
		return
	}

	c.JSON(http.StatusCreated, packets.RegisterDeviceResponse{
		DeviceID:    device.ID,
		PairingCode: code,
	})
}

// POST /api/client/devices/pair
func (p *PairingController) pairDevice(c *gin.Context) {
	var request packets.PairDeviceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		log.Debug().Err(err).Msg("error binding JSON")
		return
	}

	device, err := p.store.GetDeviceByPairingCode(request.PairingCode)
	if err != nil || !middleware.CheckSecret(device.SecretHash, request.Secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid pairing code or secret"})
		log.Debug().Str("code", request.PairingCode).Msg("pairing failed")
		return
	}

	if err := p.store.MarkDevicePaired(device.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Int("device_id", device.ID).Msg("could not mark device paired")
		return
	}

	token, err := middleware.GenerateJWT(device.ID, p.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Int("device_id", device.ID).Msg("could not generate JWT")
		return
	}

	c.JSON(http.StatusOK, packets.PairDeviceResponse{Token: token})
}
