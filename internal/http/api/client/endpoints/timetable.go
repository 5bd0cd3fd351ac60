package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teranga-labs/rappel/internal/scheduler"
)

type TimetableController struct {
	sched *scheduler.Scheduler
}

func RegisterTimetableRoutes(r gin.IRoutes, sched *scheduler.Scheduler) {
	ctl := &TimetableController{sched: sched}

	r.GET("/timetable", ctl.getTimetable)
}

// GET /api/client/timetable
func (t *TimetableController) getTimetable(c *gin.Context) {
	table, ok := t.sched.Timetable()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timetable not available yet"})
		return
	}
	c.JSON(http.StatusOK, table)
}
