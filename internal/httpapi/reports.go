package httpapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

type ReportHandler struct {
	Tracker *tracker.Tracker
}

func NewReportHandler(t *tracker.Tracker) *ReportHandler {
	return &ReportHandler{Tracker: t}
}

type approveRequest struct {
	EntryIDs []string `json:"entry_ids" binding:"required"`
}

// Get builds the report for ?person=&from=&to= and renders it as json
// (default), csv or text.
func (h *ReportHandler) Get(c *gin.Context) {
	f := report.Filter{
		Person: c.Query("person"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}
	reports, err := h.Tracker.Report(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if reports == nil {
		reports = []report.PersonReport{}
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, reports)
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, reports); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="timesheet.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "text":
		var sb strings.Builder
		for i, r := range reports {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(report.PlainText(r))
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sb.String()))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, csv or text"})
	}
}

// Approve deletes the given entries. It responds with the ids that existed.
func (h *ReportHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry_ids required"})
		return
	}
	removed := h.Tracker.Approve(req.EntryIDs)
	if removed == nil {
		removed = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"approved": removed})
}
