// Package snapshot serializes the whole dataset of one account into a single
// document and restores it. Partial documents are allowed: collections absent
// from an import leave current state untouched, and each collection is
// replaced all-or-nothing.
package snapshot

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/plan"
	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/student"
)

// Document is the exported dataset. The JSON shape matches the app's export
// file: plan slots are keyed "1".."6" and progress indices are stringified.
type Document struct {
	Students        []student.Student                     `json:"students"`
	Schedule        map[schedule.Day][][]string           `json:"schedule"`
	PlanTemplates   map[string][]string                   `json:"planTemplates"`
	StudentProgress map[string]map[string]progress.Record `json:"studentProgress"`
}

type Service struct {
	students student.Repository
	grid     schedule.Repository
	plans    plan.Repository
	records  progress.Repository
}

func NewService(students student.Repository, grid schedule.Repository, plans plan.Repository, records progress.Repository) *Service {
	return &Service{students: students, grid: grid, plans: plans, records: records}
}

// Export assembles the account's full dataset.
func (svc *Service) Export(ctx context.Context, ownerID string) (Document, error) {
	students, err := svc.students.QueryAllStudents(ctx, ownerID)
	if err != nil {
		return Document{}, errors.Wrap(err, "exporting students")
	}
	grid, err := svc.grid.GetGrid(ctx, ownerID)
	if err != nil {
		return Document{}, errors.Wrap(err, "exporting schedule")
	}
	templates, err := svc.plans.ListAllActivities(ctx, ownerID)
	if err != nil {
		return Document{}, errors.Wrap(err, "exporting plan templates")
	}
	records, err := svc.records.ListAllRecords(ctx, ownerID)
	if err != nil {
		return Document{}, errors.Wrap(err, "exporting progress")
	}

	doc := Document{
		Students:        students,
		Schedule:        grid,
		PlanTemplates:   make(map[string][]string, plan.MaxPlanType),
		StudentProgress: make(map[string]map[string]progress.Record, len(records)),
	}
	for pt := plan.MinPlanType; pt <= plan.MaxPlanType; pt++ {
		doc.PlanTemplates[strconv.Itoa(pt)] = plan.Texts(templates[pt])
	}
	for sid, perStudent := range records {
		out := make(map[string]progress.Record, len(perStudent))
		for idx, rec := range perStudent {
			out[strconv.Itoa(idx)] = rec
		}
		doc.StudentProgress[sid] = out
	}
	return doc, nil
}

// Import restores collections present in the document. Each collection
// replacement is transactional; a malformed document is rejected as a
// ParseError before anything is applied.
func (svc *Service) Import(ctx context.Context, ownerID string, doc Document) error {
	templates, err := parseTemplates(doc.PlanTemplates)
	if err != nil {
		return err
	}
	records, err := parseProgress(doc.StudentProgress)
	if err != nil {
		return err
	}
	grid, err := parseGrid(doc.Schedule)
	if err != nil {
		return err
	}

	if doc.Students != nil {
		if err := svc.students.ReplaceStudents(ctx, ownerID, doc.Students); err != nil {
			return errors.Wrap(err, "importing students")
		}
	}

	// entries referencing students absent from the roster are dropped, the
	// same way stale ids are skipped on the read side
	roster, err := svc.students.QueryAllStudents(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "loading roster")
	}
	known := make(map[string]struct{}, len(roster))
	for _, st := range roster {
		known[st.ID] = struct{}{}
	}
	if grid != nil {
		for day, cells := range grid {
			for slot, cell := range cells {
				kept := make([]string, 0, len(cell))
				for _, id := range cell {
					if _, ok := known[id]; ok {
						kept = append(kept, id)
					}
				}
				grid[day][slot] = kept
			}
		}
	}
	if records != nil {
		for sid := range records {
			if _, ok := known[sid]; !ok {
				delete(records, sid)
			}
		}
	}

	if grid != nil {
		if err := svc.grid.ReplaceGrid(ctx, ownerID, grid); err != nil {
			return errors.Wrap(err, "importing schedule")
		}
	}
	if templates != nil {
		if err := svc.plans.ReplaceAllActivities(ctx, ownerID, templates); err != nil {
			return errors.Wrap(err, "importing plan templates")
		}
	}
	if records != nil {
		if err := svc.records.ReplaceAllRecords(ctx, ownerID, records); err != nil {
			return errors.Wrap(err, "importing progress")
		}
	}
	return nil
}

func parseTemplates(raw map[string][]string) (map[int][]string, error) {
	if raw == nil {
		return nil, nil
	}
	templates := make(map[int][]string, len(raw))
	for key, texts := range raw {
		pt, err := strconv.Atoi(key)
		if err != nil || !plan.ValidPlanType(pt) {
			return nil, core.NewParseError(errors.Errorf("unknown plan slot %q", key))
		}
		templates[pt] = texts
	}
	return templates, nil
}

func parseProgress(raw map[string]map[string]progress.Record) (map[string]map[int]progress.Record, error) {
	if raw == nil {
		return nil, nil
	}
	records := make(map[string]map[int]progress.Record, len(raw))
	for sid, perStudent := range raw {
		out := make(map[int]progress.Record, len(perStudent))
		for key, rec := range perStudent {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return nil, core.NewParseError(errors.Errorf("invalid activity index %q for student %s", key, sid))
			}
			rec.StudentID = sid
			rec.ActivityIndex = idx
			out[idx] = rec
		}
		records[sid] = out
	}
	return records, nil
}

func parseGrid(raw map[schedule.Day][][]string) (schedule.Grid, error) {
	if raw == nil {
		return nil, nil
	}
	grid := schedule.NewGrid()
	for day, cells := range raw {
		if !schedule.ValidDay(day) {
			return nil, core.NewParseError(errors.Errorf("unknown day %q", day))
		}
		if len(cells) > schedule.SlotsPerDay {
			return nil, core.NewParseError(errors.Errorf("day %q has %d slots, want at most %d", day, len(cells), schedule.SlotsPerDay))
		}
		for slot, cell := range cells {
			grid[day][slot] = append([]string{}, cell...)
		}
	}
	return grid, nil
}
