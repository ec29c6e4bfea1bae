package model

// TimeEntry is a completed work record for one worker on one job site.
//
// DurationMins is derived from ClockIn, ClockOut and Lunch30Min and stored
// alongside them so reports can sum it without re-parsing times.
type TimeEntry struct {
	ID           string  `json:"id" gorm:"primaryKey;column:id;size:64"`
	PersonName   string  `json:"person_name" gorm:"column:person_name;size:191;index"`
	JobName      string  `json:"job_name" gorm:"column:job_name;size:191"`
	Date         string  `json:"date" gorm:"column:date;size:10;index"`
	ClockIn      string  `json:"clock_in" gorm:"column:clock_in;size:5"`
	ClockOut     string  `json:"clock_out" gorm:"column:clock_out;size:5"`
	Lunch30Min   bool    `json:"lunch_30_min" gorm:"column:lunch_30_min"`
	Notes        string  `json:"notes" gorm:"column:notes"`
	CreatedAt    int64   `json:"created_at" gorm:"column:created_at;autoCreateTime:false"`
	DurationMins float64 `json:"duration_mins" gorm:"column:duration_mins"`
}

// TableName pins the table used by the SQL backends.
func (TimeEntry) TableName() string { return "time_entries" }

// LunchDeductionMins is subtracted from a shift flagged with Lunch30Min.
const LunchDeductionMins = 30

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Date    string      `json:"date"`
	Entries []TimeEntry `json:"entries"`
}
