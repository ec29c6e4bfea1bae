package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/session"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
	"github.com/Abcdabansu666/TimeSheet/internal/validate"
)

type EntryHandler struct {
	Tracker *tracker.Tracker
}

func NewEntryHandler(t *tracker.Tracker) *EntryHandler {
	return &EntryHandler{Tracker: t}
}

// entryRequest is the editable part of an entry. duration_mins and
// created_at are never taken from the client.
type entryRequest struct {
	PersonName string `json:"person_name"`
	JobName    string `json:"job_name"`
	Date       string `json:"date"`
	ClockIn    string `json:"clock_in"`
	ClockOut   string `json:"clock_out"`
	Lunch30Min bool   `json:"lunch_30_min"`
	Notes      string `json:"notes"`
}

func (r entryRequest) entry(id string) model.TimeEntry {
	return model.TimeEntry{
		ID:         id,
		PersonName: r.PersonName,
		JobName:    r.JobName,
		Date:       r.Date,
		ClockIn:    r.ClockIn,
		ClockOut:   r.ClockOut,
		Lunch30Min: r.Lunch30Min,
		Notes:      r.Notes,
	}
}

func (h *EntryHandler) List(c *gin.Context) {
	person := c.Query("person")
	date := c.Query("date")

	entries := []model.TimeEntry{}
	for _, e := range h.Tracker.Entries() {
		if person != "" && e.PersonName != person {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		entries = append(entries, e)
	}
	c.JSON(http.StatusOK, entries)
}

func (h *EntryHandler) Get(c *gin.Context) {
	e, err := h.Tracker.Entry(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EntryHandler) Create(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	e, err := h.Tracker.SaveEntry(req.entry(""))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *EntryHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Tracker.Entry(id); err != nil {
		writeError(c, err)
		return
	}
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	e, err := h.Tracker.SaveEntry(req.entry(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	if !h.Tracker.DeleteEntry(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// writeError maps tracker errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case validate.IsValidationError(err),
		errors.Is(err, tracker.ErrNoPerson),
		errors.Is(err, tracker.ErrNoJob):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrAlreadyClockedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
