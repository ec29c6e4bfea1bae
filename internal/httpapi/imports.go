package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/bulk"
	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

type ImportHandler struct {
	Tracker *tracker.Tracker
}

func NewImportHandler(t *tracker.Tracker) *ImportHandler {
	return &ImportHandler{Tracker: t}
}

type importRequest struct {
	Text string `json:"text" binding:"required"`
}

type previewLine struct {
	Line  int             `json:"line"`
	Raw   string          `json:"raw"`
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Entry model.TimeEntry `json:"entry"`
}

type previewResponse struct {
	Lines      []previewLine `json:"lines"`
	Importable int           `json:"importable"`
	Failed     int           `json:"failed"`
}

func newPreviewResponse(p bulk.Preview) previewResponse {
	resp := previewResponse{Lines: []previewLine{}}
	for _, l := range p.Lines {
		pl := previewLine{Line: l.No, Raw: l.Raw, OK: l.OK(), Entry: l.Entry}
		if l.Err != nil {
			pl.Error = l.Err.Error()
			resp.Failed++
		} else {
			resp.Importable++
		}
		resp.Lines = append(resp.Lines, pl)
	}
	return resp
}

// Preview parses the pasted text without storing anything.
func (h *ImportHandler) Preview(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	c.JSON(http.StatusOK, newPreviewResponse(h.Tracker.PreviewImport(req.Text)))
}

// Confirm parses the text again and stores the lines that pass.
func (h *ImportHandler) Confirm(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	p := h.Tracker.PreviewImport(req.Text)
	added := h.Tracker.ConfirmImport(p)
	if added == nil {
		added = []model.TimeEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"imported": added, "skipped": len(p.Failed())})
}
