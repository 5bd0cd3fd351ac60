package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teranga-labs/rappel/internal/http/middleware"
	"github.com/teranga-labs/rappel/internal/model"
)

type Error struct {
	Code    int
	Message string
}

type HandlerFuncWithDevice func(ctx *gin.Context, device *model.Device) (any, *Error)
type HandlerFunc func(ctx *gin.Context) (any, *Error)

func ResolveEndpointWithDevice(h HandlerFuncWithDevice) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		device, ok := middleware.GetCurrentDevice(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, error := h(ctx, device)
		if error != nil {
			ctx.JSON(error.Code, gin.H{"error": error.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, error := h(ctx)
		if error != nil {
			ctx.JSON(error.Code, gin.H{"error": error.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}
