package progress

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout documents the stored date format: DD.MM.YYYY.
// Parsing is tolerant of missing zero-padding (split on ".").
const DateLayout = "02.01.2006"

// Record tracks one student's progress on one activity of their plan template.
// Absence of a record means "not completed"; un-completing deletes the record.
//
// A record created through SetDate only carries Completed=false until a time is
// set too: completion is implied by date+time presence. This mirrors the app's
// historical state machine and is kept on purpose.
type Record struct {
	StudentID     string `json:"-"`
	ActivityIndex int    `json:"-"`
	Completed     bool   `json:"completed"`
	Date          string `json:"date"` // DD.MM.YYYY or empty
	Time          string `json:"time"` // session label, e.g. "08:00 - 08:20", or empty
}

// FormatDate renders t in the stored DD.MM.YYYY form.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d.%02d.%d", t.Day(), int(t.Month()), t.Year())
}

// ParseDate splits a stored date on "." into day, month and year.
// ok is false for empty or malformed dates.
func ParseDate(s string) (day, month, year int, ok bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var err error
	if day, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, 0, false
	}
	if year, err = strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
		return 0, 0, 0, false
	}
	return day, month, year, true
}

// InMonth reports whether a stored date falls in the given month.
func InMonth(date string, year, month int) bool {
	_, m, y, ok := ParseDate(date)
	return ok && m == month && y == year
}

// Stats summarizes a student's overall progress against their current plan.
type Stats struct {
	StudentID           string `json:"student_id"`
	TotalActivities     int    `json:"total_activities"`
	CompletedActivities int    `json:"completed_activities"`
	Percentage          int    `json:"percentage"`
	Remaining           int    `json:"remaining"`
}

// MonthlyEntry is one completed activity inside a monthly summary.
type MonthlyEntry struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// StudentMonthly is one student's slice of a monthly summary.
type StudentMonthly struct {
	StudentID       string         `json:"student_id"`
	Name            string         `json:"name"`
	Grade           string         `json:"grade"`
	PlanType        int            `json:"plan_type"`
	Completed       []MonthlyEntry `json:"completed"`
	TotalActivities int            `json:"total_activities"`
	Percentage      int            `json:"percentage"`
}
