package progress

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core/plan"
	"github.com/logopedika/kabinet/core/student"
)

var NowFunc = time.Now // mockable

type (
	// Repository persists completion records per owning account, keyed by
	// (studentID, activityIndex).
	Repository interface {
		GetRecord(ctx context.Context, ownerID, studentID string, activityIndex int) (Record, error)
		ListByStudent(ctx context.Context, ownerID, studentID string) ([]Record, error)
		ListAllRecords(ctx context.Context, ownerID string) (map[string]map[int]Record, error)
		UpsertRecord(ctx context.Context, ownerID string, rec Record) (Record, error)
		DeleteRecord(ctx context.Context, ownerID, studentID string, activityIndex int) error
		ReplaceAllRecords(ctx context.Context, ownerID string, records map[string]map[int]Record) error
	}

	// StudentDirectory gives access to the roster; operations on a student the
	// caller does not own surface student.ErrNotFound.
	StudentDirectory interface {
		GetByID(ctx context.Context, ownerID, id string) (student.Student, error)
		QueryAll(ctx context.Context, ownerID string) ([]student.Student, error)
	}

	// PlanDirectory resolves a student's current plan template.
	PlanDirectory interface {
		List(ctx context.Context, ownerID string, planType int) ([]plan.Activity, error)
	}

	Service struct {
		repo     Repository
		students StudentDirectory
		plans    PlanDirectory
	}
)

// ErrNoRecord is returned when the addressed progress record does not exist.
var ErrNoRecord = errors.New("progress record not found")

func NewService(repo Repository, students StudentDirectory, plans PlanDirectory) *Service {
	return &Service{repo: repo, students: students, plans: plans}
}

// SetCompleted marks an activity done or not. Completing stamps the current
// date and leaves the time unset; un-completing deletes the record entirely:
// absence of a record means "not completed".
func (svc *Service) SetCompleted(ctx context.Context, ownerID, studentID string, activityIndex int, completed bool) (Record, error) {
	if _, err := svc.students.GetByID(ctx, ownerID, studentID); err != nil {
		return Record{}, err
	}

	if !completed {
		if err := svc.repo.DeleteRecord(ctx, ownerID, studentID, activityIndex); err != nil && errors.Cause(err) != ErrNoRecord {
			return Record{}, errors.Wrap(err, "deleting record")
		}
		return Record{}, nil
	}

	rec := Record{
		StudentID:     studentID,
		ActivityIndex: activityIndex,
		Completed:     true,
		Date:          FormatDate(NowFunc()),
	}
	return svc.repo.UpsertRecord(ctx, ownerID, rec)
}

// SetDate sets the completion date, creating the record on first write.
// The completed flag is left as-is: a record with a date but no time stays
// un-completed until SetTime confirms it.
func (svc *Service) SetDate(ctx context.Context, ownerID, studentID string, activityIndex int, date string) (Record, error) {
	if _, err := svc.students.GetByID(ctx, ownerID, studentID); err != nil {
		return Record{}, err
	}

	rec, err := svc.repo.GetRecord(ctx, ownerID, studentID, activityIndex)
	if err != nil {
		if errors.Cause(err) != ErrNoRecord {
			return Record{}, errors.Wrap(err, "getting record")
		}
		rec = Record{StudentID: studentID, ActivityIndex: activityIndex}
	}
	rec.Date = date
	return svc.repo.UpsertRecord(ctx, ownerID, rec)
}

// SetTime sets the session time, creating the record on first write, and flips
// completed to true once both date and time are non-empty.
func (svc *Service) SetTime(ctx context.Context, ownerID, studentID string, activityIndex int, t string) (Record, error) {
	if _, err := svc.students.GetByID(ctx, ownerID, studentID); err != nil {
		return Record{}, err
	}

	rec, err := svc.repo.GetRecord(ctx, ownerID, studentID, activityIndex)
	if err != nil {
		if errors.Cause(err) != ErrNoRecord {
			return Record{}, errors.Wrap(err, "getting record")
		}
		rec = Record{StudentID: studentID, ActivityIndex: activityIndex}
	}
	rec.Time = t
	if rec.Date != "" && rec.Time != "" {
		rec.Completed = true
	}
	return svc.repo.UpsertRecord(ctx, ownerID, rec)
}

// ByStudent returns the student's progress map keyed by activity index.
func (svc *Service) ByStudent(ctx context.Context, ownerID, studentID string) (map[int]Record, error) {
	if _, err := svc.students.GetByID(ctx, ownerID, studentID); err != nil {
		return nil, err
	}
	recs, err := svc.repo.ListByStudent(ctx, ownerID, studentID)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Record, len(recs))
	for _, rec := range recs {
		out[rec.ActivityIndex] = rec
	}
	return out, nil
}

// Stats counts records present (regardless of month) against the student's
// current plan length.
func (svc *Service) Stats(ctx context.Context, ownerID, studentID string) (Stats, error) {
	st, err := svc.students.GetByID(ctx, ownerID, studentID)
	if err != nil {
		return Stats{}, err
	}
	activities, err := svc.plans.List(ctx, ownerID, st.PlanType)
	if err != nil {
		return Stats{}, err
	}
	recs, err := svc.repo.ListByStudent(ctx, ownerID, studentID)
	if err != nil {
		return Stats{}, err
	}

	total := len(activities)
	completed := len(recs)
	return Stats{
		StudentID:           studentID,
		TotalActivities:     total,
		CompletedActivities: completed,
		Percentage:          percentage(completed, total),
		Remaining:           total - completed,
	}, nil
}

// MonthlySummary rolls up every student's progress for one month. A record
// counts toward the month when its stored date parses to that year/month.
// Entries are sorted ascending by parsed date; the percentage is taken against
// the student's *current* plan length, not against overall completions.
// Indices pointing past the current template (after it shrank) are skipped.
func (svc *Service) MonthlySummary(ctx context.Context, ownerID string, year, month int) ([]StudentMonthly, error) {
	students, err := svc.students.QueryAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	records, err := svc.repo.ListAllRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := make([]StudentMonthly, 0, len(students))
	for _, st := range students {
		activities, err := svc.plans.List(ctx, ownerID, st.PlanType)
		if err != nil {
			return nil, err
		}

		completed := make([]MonthlyEntry, 0)
		for idx, rec := range records[st.ID] {
			if !InMonth(rec.Date, year, month) {
				continue
			}
			if idx < 0 || idx >= len(activities) { // orphaned index, template shrank
				continue
			}
			completed = append(completed, MonthlyEntry{
				Index: idx,
				Text:  activities[idx].Text,
				Date:  rec.Date,
				Time:  rec.Time,
			})
		}
		sort.SliceStable(completed, func(i, j int) bool {
			return dateOrdinal(completed[i].Date) < dateOrdinal(completed[j].Date)
		})

		summary = append(summary, StudentMonthly{
			StudentID:       st.ID,
			Name:            st.Name,
			Grade:           st.Grade,
			PlanType:        st.PlanType,
			Completed:       completed,
			TotalActivities: len(activities),
			Percentage:      percentage(len(completed), len(activities)),
		})
	}
	return summary, nil
}

func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func dateOrdinal(date string) int {
	d, m, y, ok := ParseDate(date)
	if !ok {
		return 0
	}
	return y*10000 + m*100 + d
}
