// Package report renders the weekly schedule and monthly progress as plain
// text. The layout is a stable contract only insofar as generation never
// fails on empty schedules or plans: explicit placeholder lines are printed
// instead.
package report

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/student"
)

const (
	ScheduleFilename = "schedule_report.txt"
	ProgressFilename = "progress_report.txt"
)

var dayTitles = map[schedule.Day]string{
	schedule.Monday:    "Monday",
	schedule.Tuesday:   "Tuesday",
	schedule.Wednesday: "Wednesday",
	schedule.Thursday:  "Thursday",
	schedule.Friday:    "Friday",
}

type (
	// GridSource provides the weekly grid.
	GridSource interface {
		Grid(ctx context.Context, ownerID string) (schedule.Grid, error)
	}

	// RosterSource provides the roster in insertion order.
	RosterSource interface {
		QueryAll(ctx context.Context, ownerID string) ([]student.Student, error)
	}

	// SummarySource provides the monthly progress rollup.
	SummarySource interface {
		MonthlySummary(ctx context.Context, ownerID string, year, month int) ([]progress.StudentMonthly, error)
	}

	Service struct {
		conf    *core.Config
		grid    GridSource
		roster  RosterSource
		summary SummarySource
		mailSvc core.EmailService
	}
)

func NewService(conf *core.Config, grid GridSource, roster RosterSource, summary SummarySource, mailSvc core.EmailService) *Service {
	return &Service{conf: conf, grid: grid, roster: roster, summary: summary, mailSvc: mailSvc}
}

// Schedule renders the weekly schedule report.
func (svc *Service) Schedule(ctx context.Context, ownerID string) (string, error) {
	grid, err := svc.grid.Grid(ctx, ownerID)
	if err != nil {
		return "", errors.Wrap(err, "loading grid")
	}
	students, err := svc.roster.QueryAll(ctx, ownerID)
	if err != nil {
		return "", errors.Wrap(err, "loading roster")
	}
	byID := make(map[string]student.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly Schedule - %s\n\n", svc.conf.AppName)
	for _, day := range schedule.Days {
		fmt.Fprintf(&b, "%s\n%s\n", dayTitles[day], strings.Repeat("=", 30))
		var hasSessions bool
		for slot, ts := range schedule.TimeSlots {
			cell := grid[day][slot]
			if len(cell) == 0 {
				continue
			}
			hasSessions = true
			fmt.Fprintf(&b, "%s (%s / %s):\n", ts.Label, ts.Early, ts.Late)
			for _, sid := range cell {
				if st, ok := byID[sid]; ok {
					fmt.Fprintf(&b, "  - %s - %s\n", st.Grade, st.Name)
				}
			}
		}
		if !hasSessions {
			b.WriteString("No sessions scheduled\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Progress renders the monthly progress report.
func (svc *Service) Progress(ctx context.Context, ownerID string, year, month int) (string, error) {
	summary, err := svc.summary.MonthlySummary(ctx, ownerID, year, month)
	if err != nil {
		return "", errors.Wrap(err, "loading monthly summary")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Progress Report - %s\n\n", svc.conf.AppName)
	fmt.Fprintf(&b, "Month: %d/%d\n\n", month, year)
	if len(summary) == 0 {
		b.WriteString("No students on the roster\n")
		return b.String(), nil
	}
	for _, sm := range summary {
		fmt.Fprintf(&b, "%s - %s\n", sm.Grade, sm.Name)
		fmt.Fprintf(&b, "Completed activities: %d/%d (%d%%)\n", len(sm.Completed), sm.TotalActivities, sm.Percentage)
		if len(sm.Completed) == 0 {
			b.WriteString("No completed activities this month\n")
		} else {
			for _, entry := range sm.Completed {
				fmt.Fprintf(&b, "  - %s (%s %s)\n", entry.Text, entry.Date, entry.Time)
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Email sends a rendered report as a text attachment to the given address.
func (svc *Service) Email(to mail.Address, subject, filename, content string) error {
	msg := &core.EmailMessage{
		To:      []mail.Address{to},
		Subject: subject,
		BodyStr: fmt.Sprintf("Attached: %s", filename),
	}
	if err := msg.Attach(bytes.NewBufferString(content), filename, "text/plain; charset=utf-8"); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}
