package progress

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	got := FormatDate(time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC))
	if want := "05.03.2026"; got != want {
		t.Errorf("FormatDate() = %q, want %q", got, want)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		day   int
		month int
		year  int
		ok    bool
	}{
		{name: "empty", date: ""},
		{name: "garbage", date: "not a date"},
		{name: "two parts", date: "05.2026"},
		{name: "non-numeric part", date: "05.march.2026"},
		{name: "padded", date: "05.03.2026", day: 5, month: 3, year: 2026, ok: true},
		{name: "unpadded", date: "5.3.2026", day: 5, month: 3, year: 2026, ok: true},
		{name: "inner spaces", date: "5. 3 .2026", day: 5, month: 3, year: 2026, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, month, year, ok := ParseDate(tt.date)
			if ok != tt.ok {
				t.Fatalf("ParseDate() ok = %v, want %v", ok, tt.ok)
			}
			if day != tt.day || month != tt.month || year != tt.year {
				t.Errorf("ParseDate() = (%d, %d, %d), want (%d, %d, %d)", day, month, year, tt.day, tt.month, tt.year)
			}
		})
	}
}

func TestInMonth(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		year  int
		month int
		want  bool
	}{
		{name: "match", date: "05.03.2026", year: 2026, month: 3, want: true},
		{name: "unpadded match", date: "5.3.2026", year: 2026, month: 3, want: true},
		{name: "wrong month", date: "05.04.2026", year: 2026, month: 3},
		{name: "wrong year", date: "05.03.2025", year: 2026, month: 3},
		{name: "empty date", date: "", year: 2026, month: 3},
		{name: "malformed date", date: "2026-03-05", year: 2026, month: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InMonth(tt.date, tt.year, tt.month); got != tt.want {
				t.Errorf("InMonth(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func Test_percentage(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{name: "empty plan", completed: 0, total: 0, want: 0},
		{name: "none done", completed: 0, total: 4, want: 0},
		{name: "half", completed: 2, total: 4, want: 50},
		{name: "rounds up", completed: 1, total: 3, want: 33},
		{name: "rounds to nearest", completed: 2, total: 3, want: 67},
		{name: "all done", completed: 4, total: 4, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentage(tt.completed, tt.total); got != tt.want {
				t.Errorf("percentage(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
			}
		})
	}
}
