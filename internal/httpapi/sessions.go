package httpapi

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

type SessionHandler struct {
	Tracker *tracker.Tracker
}

func NewSessionHandler(t *tracker.Tracker) *SessionHandler {
	return &SessionHandler{Tracker: t}
}

type clockInRequest struct {
	PersonName string `json:"person_name" binding:"required"`
	JobName    string `json:"job_name"`
}

type clockOutRequest struct {
	PersonName string `json:"person_name" binding:"required"`
}

// sessionView is an open session with the person's time worked today.
type sessionView struct {
	PersonName     string `json:"person_name"`
	JobName        string `json:"job_name"`
	StartTime      int64  `json:"startTime"`
	Started        string `json:"started"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
}

func (h *SessionHandler) List(c *gin.Context) {
	zone := h.Tracker.Zone()
	views := []sessionView{}
	for _, s := range h.Tracker.Sessions() {
		elapsed := h.Tracker.LiveElapsed(s.PersonName)
		views = append(views, sessionView{
			PersonName:     s.PersonName,
			JobName:        s.JobName,
			StartTime:      s.StartTime,
			Started:        timecalc.To12Hour(zone.TimeOfDay(s.StartTime)),
			ElapsedSeconds: int64(elapsed.Seconds()),
			Elapsed:        timecalc.FormatDurationHHMMSS(elapsed),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].PersonName < views[j].PersonName })
	c.JSON(http.StatusOK, views)
}

func (h *SessionHandler) ClockIn(c *gin.Context) {
	var req clockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_name required"})
		return
	}
	s, err := h.Tracker.ClockIn(req.PersonName, req.JobName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SessionHandler) ClockOut(c *gin.Context) {
	var req clockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_name required"})
		return
	}
	e, ok := h.Tracker.ClockOut(req.PersonName)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not clocked in"})
		return
	}
	c.JSON(http.StatusOK, e)
}
