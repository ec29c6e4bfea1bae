package timecalc_test

import (
	"testing"
	"time"

	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

func TestZoneAnchorsToday(t *testing.T) {
	// 03:30 UTC on Feb 2 is still Feb 1 in New York.
	instant := time.Date(2026, 2, 2, 3, 30, 0, 0, time.UTC)
	z, err := timecalc.NewZone("America/New_York", func() time.Time { return instant })
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	if got := z.ISODate(); got != "2026-02-01" {
		t.Errorf("ISODate = %q, want %q", got, "2026-02-01")
	}
	if got := z.CurrentTimeOfDay(); got != "22:30" {
		t.Errorf("CurrentTimeOfDay = %q, want %q", got, "22:30")
	}
	if got := z.CurrentDate(); got.Hour() != 0 || got.Day() != 1 {
		t.Errorf("CurrentDate = %v, want midnight Feb 1", got)
	}
	if got := z.TimeOfDay(instant.UnixMilli()); got != "22:30" {
		t.Errorf("TimeOfDay = %q, want %q", got, "22:30")
	}
	if got := z.DateOf(instant.UnixMilli()); got != "2026-02-01" {
		t.Errorf("DateOf = %q, want %q", got, "2026-02-01")
	}
	if got := z.NowMillis(); got != instant.UnixMilli() {
		t.Errorf("NowMillis = %d, want %d", got, instant.UnixMilli())
	}
}

func TestNewZoneUnknown(t *testing.T) {
	if _, err := timecalc.NewZone("Mars/Olympus", nil); err == nil {
		t.Error("expected error for unknown zone")
	}
}
