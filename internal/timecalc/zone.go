package timecalc

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Zone anchors every "today" decision to one operating timezone, whatever
// the host machine's local zone is.
type Zone struct {
	loc   *time.Location
	clock func() time.Time
}

// NewZone loads the named IANA zone. A nil clock means time.Now.
func NewZone(name string, clock func() time.Time) (Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return FixedZone(loc, clock), nil
}

// FixedZone wraps an already loaded location.
func FixedZone(loc *time.Location, clock func() time.Time) Zone {
	if clock == nil {
		clock = time.Now
	}
	return Zone{loc: loc, clock: clock}
}

// Location returns the operating timezone.
func (z Zone) Location() *time.Location { return z.loc }

// Now returns the current instant expressed in the operating timezone.
func (z Zone) Now() time.Time { return z.clock().In(z.loc) }

// NowMillis returns the current instant in epoch milliseconds.
func (z Zone) NowMillis() int64 { return z.clock().UnixMilli() }

// CurrentDate returns midnight of the operating-timezone "today".
func (z Zone) CurrentDate() time.Time { return StartOfDay(z.Now()) }

// CurrentTimeOfDay returns the operating-timezone wall clock as HH:mm.
func (z Zone) CurrentTimeOfDay() string { return z.Now().Format(TimeLayout) }

// ISODate returns today as YYYY-MM-DD in the operating timezone.
func (z Zone) ISODate() string { return z.Now().Format(DateLayout) }

// TimeOfDay formats an epoch-millisecond instant as HH:mm in the operating timezone.
func (z Zone) TimeOfDay(ms int64) string {
	return time.UnixMilli(ms).In(z.loc).Format(TimeLayout)
}

// DateOf formats an epoch-millisecond instant as YYYY-MM-DD in the operating timezone.
func (z Zone) DateOf(ms int64) string {
	return time.UnixMilli(ms).In(z.loc).Format(DateLayout)
}
