package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

// RegistryHandler serves the people and job lists.
type RegistryHandler struct {
	Tracker *tracker.Tracker
}

func NewRegistryHandler(t *tracker.Tracker) *RegistryHandler {
	return &RegistryHandler{Tracker: t}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *RegistryHandler) People(c *gin.Context) {
	c.JSON(http.StatusOK, h.Tracker.People())
}

func (h *RegistryHandler) Jobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.Tracker.Jobs())
}

func (h *RegistryHandler) AddPerson(c *gin.Context) {
	h.add(c, h.Tracker.AddPerson, h.Tracker.People)
}

func (h *RegistryHandler) AddJob(c *gin.Context) {
	h.add(c, h.Tracker.AddJob, h.Tracker.Jobs)
}

func (h *RegistryHandler) add(c *gin.Context, add func(string) (bool, error), list func() []string) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	added, err := add(req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"added": added, "names": list()})
}
