package client

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/scheduler"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AlertsWebSocket streams the evaluator snapshot once per second so the
// client never has to poll for the countdown.
func AlertsWebSocket(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		closed := make(chan struct{})
		go func() {
			// read pump, only to notice the peer going away
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		if err := conn.WriteJSON(sched.Status()); err != nil {
			return
		}
		for {
			select {
			case <-closed:
				return
			case <-ticker.C:
				if err := conn.WriteJSON(sched.Status()); err != nil {
					return
				}
			}
		}
	}
}
