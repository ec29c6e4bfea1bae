package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Abcdabansu666/TimeSheet/internal/httpapi"
	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/report"
	"github.com/Abcdabansu666/TimeSheet/internal/session"
	"github.com/Abcdabansu666/TimeSheet/internal/syncer"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

type fixedStatus struct{ st syncer.Status }

func (f fixedStatus) Status() syncer.Status { return f.st }

func newServer(t *testing.T, policy session.Policy, entries []model.TimeEntry) (*gin.Engine, *tracker.Tracker) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	z, err := timecalc.NewZone("America/New_York", func() time.Time { return now })
	if err != nil {
		t.Fatal(err)
	}
	tr := tracker.New(tracker.Options{Zone: z, Policy: policy}, entries, model.DefaultSettings())
	router := gin.New()
	httpapi.Register(router, tr, fixedStatus{syncer.Status{Synced: 4, Unsynced: 1}}, nil)
	return router, tr
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newServer(t, session.PolicyOverwrite, nil)
	w := do(t, router, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestEntriesCRUD(t *testing.T) {
	router, _ := newServer(t, session.PolicyOverwrite, nil)

	w := do(t, router, http.MethodPost, "/api/entries", map[string]any{
		"person_name":   "Ann",
		"job_name":      "Maintenance",
		"date":          "2026-02-01",
		"clock_in":      "08:00",
		"clock_out":     "12:00",
		"lunch_30_min":  true,
		"duration_mins": 9999,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	var created model.TimeEntry
	decode(t, w, &created)
	if created.ID == "" || created.DurationMins != 210 {
		t.Errorf("created = %+v", created)
	}

	w = do(t, router, http.MethodPut, "/api/entries/"+created.ID, map[string]any{
		"person_name": "Ann",
		"date":        "2026-02-01",
		"clock_in":    "09:00",
		"clock_out":   "12:00",
	})
	var updated model.TimeEntry
	decode(t, w, &updated)
	if w.Code != http.StatusOK || updated.ID != created.ID || updated.DurationMins != 180 || updated.CreatedAt != created.CreatedAt {
		t.Errorf("update = %d %+v", w.Code, updated)
	}

	w = do(t, router, http.MethodGet, "/api/entries?person=Ann", nil)
	var list []model.TimeEntry
	decode(t, w, &list)
	if len(list) != 1 {
		t.Errorf("list = %+v", list)
	}

	if w := do(t, router, http.MethodDelete, "/api/entries/"+created.ID, nil); w.Code != http.StatusOK {
		t.Errorf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/api/entries/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/api/entries/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d", w.Code)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	router, _ := newServer(t, session.PolicyOverwrite, nil)
	w := do(t, router, http.MethodPost, "/api/entries", map[string]any{
		"person_name": "Ann",
		"date":        "2026-02-01",
		"clock_in":    "12:00",
		"clock_out":   "08:00",
	})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "after clock-in") {
		t.Errorf("create = %d %s", w.Code, w.Body.String())
	}

	if w := do(t, router, http.MethodPut, "/api/entries/missing", map[string]any{}); w.Code != http.StatusNotFound {
		t.Errorf("update unknown = %d", w.Code)
	}
}

func TestSessions(t *testing.T) {
	router, _ := newServer(t, session.PolicyReject, nil)

	if w := do(t, router, http.MethodPost, "/api/sessions/clock-in", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("clock-in without person = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/sessions/clock-in", map[string]any{"person_name": "Ann", "job_name": "Site Survey"}); w.Code != http.StatusOK {
		t.Fatalf("clock-in = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodPost, "/api/sessions/clock-in", map[string]any{"person_name": "Ann"}); w.Code != http.StatusConflict {
		t.Errorf("second clock-in = %d", w.Code)
	}

	w := do(t, router, http.MethodGet, "/api/sessions", nil)
	var sessions []map[string]any
	decode(t, w, &sessions)
	if len(sessions) != 1 || sessions[0]["person_name"] != "Ann" || sessions[0]["started"] != "10:00 AM" || sessions[0]["elapsed"] != "00:00:00" {
		t.Errorf("sessions = %+v", sessions)
	}

	w = do(t, router, http.MethodPost, "/api/sessions/clock-out", map[string]any{"person_name": "Ann"})
	var e model.TimeEntry
	decode(t, w, &e)
	if w.Code != http.StatusOK || e.Notes != "Clock session: Site Survey" {
		t.Errorf("clock-out = %d %+v", w.Code, e)
	}
	if w := do(t, router, http.MethodPost, "/api/sessions/clock-out", map[string]any{"person_name": "Ann"}); w.Code != http.StatusNotFound {
		t.Errorf("second clock-out = %d", w.Code)
	}
}

func TestReportAndApprove(t *testing.T) {
	entries := []model.TimeEntry{
		{ID: "1", PersonName: "Bob", JobName: "Maintenance", Date: "2026-02-01", ClockIn: "08:00", ClockOut: "10:00", DurationMins: 120, CreatedAt: 1},
		{ID: "2", PersonName: "alice", JobName: "Site Survey", Date: "2026-01-31", ClockIn: "08:00", ClockOut: "09:30", DurationMins: 90, CreatedAt: 2},
	}
	router, tr := newServer(t, session.PolicyOverwrite, entries)

	w := do(t, router, http.MethodGet, "/api/report", nil)
	var reports []report.PersonReport
	decode(t, w, &reports)
	if len(reports) != 2 || reports[0].PersonName != "alice" || reports[1].TotalMinutes != 120 {
		t.Errorf("reports = %+v", reports)
	}

	w = do(t, router, http.MethodGet, "/api/report?format=csv&person=Bob", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bob,2026-02-01,Maintenance,2:00") {
		t.Errorf("csv = %d %q", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/api/report?format=text", nil); !strings.Contains(w.Body.String(), report.TotalLabel) {
		t.Errorf("text = %q", w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/api/report?format=pdf", nil); w.Code != http.StatusBadRequest {
		t.Errorf("pdf format = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/api/report?from=yesterday", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad bound = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/api/report/approve", map[string]any{"entry_ids": []string{"1", "nope"}})
	var approved struct {
		Approved []string `json:"approved"`
	}
	decode(t, w, &approved)
	if len(approved.Approved) != 1 || approved.Approved[0] != "1" {
		t.Errorf("approved = %+v", approved)
	}
	if got := len(tr.Entries()); got != 1 {
		t.Errorf("entries left = %d, want 1", got)
	}
}

func TestImportPreviewAndConfirm(t *testing.T) {
	router, tr := newServer(t, session.PolicyOverwrite, nil)
	text := "John Doe | 2026-01-30 | 08:00 - 17:00 | lunch\nbroken line\n"

	w := do(t, router, http.MethodPost, "/api/import/preview", map[string]any{"text": text})
	var preview struct {
		Importable int `json:"importable"`
		Failed     int `json:"failed"`
	}
	decode(t, w, &preview)
	if preview.Importable != 1 || preview.Failed != 1 {
		t.Errorf("preview = %+v", preview)
	}
	if len(tr.Entries()) != 0 {
		t.Fatal("preview stored entries")
	}

	w = do(t, router, http.MethodPost, "/api/import/confirm", map[string]any{"text": text})
	var confirm struct {
		Imported []model.TimeEntry `json:"imported"`
		Skipped  int               `json:"skipped"`
	}
	decode(t, w, &confirm)
	if len(confirm.Imported) != 1 || confirm.Skipped != 1 || confirm.Imported[0].DurationMins != 510 {
		t.Errorf("confirm = %+v", confirm)
	}
}

func TestRegistryAndSync(t *testing.T) {
	router, _ := newServer(t, session.PolicyOverwrite, nil)

	if w := do(t, router, http.MethodPost, "/api/people", map[string]any{"name": "Ann"}); w.Code != http.StatusCreated {
		t.Errorf("add person = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/people", map[string]any{"name": "Ann"}); w.Code != http.StatusOK {
		t.Errorf("add duplicate = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/jobs", map[string]any{"name": "  "}); w.Code != http.StatusBadRequest {
		t.Errorf("add blank job = %d", w.Code)
	}

	var people []string
	decode(t, do(t, router, http.MethodGet, "/api/people", nil), &people)
	if len(people) != 1 || people[0] != "Ann" {
		t.Errorf("people = %v", people)
	}

	var st syncer.Status
	decode(t, do(t, router, http.MethodGet, "/api/sync", nil), &st)
	if st.Synced != 4 || st.Unsynced != 1 {
		t.Errorf("sync = %+v", st)
	}
}
