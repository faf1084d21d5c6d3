package plan

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
)

var (
	// ErrNotFound is returned when an addressed activity does not exist.
	ErrNotFound = errors.New("activity not found")
	// ErrNoActivities is returned when a bulk import yields nothing usable.
	ErrNoActivities = errors.New("no activities found")
)

type (
	// Repository persists the 6 plan template slots per owning account.
	// Replace operations are transactional: the stored list is never left
	// half-written.
	Repository interface {
		ListActivities(ctx context.Context, ownerID string, planType int) ([]Activity, error)
		ListAllActivities(ctx context.Context, ownerID string) (map[int][]Activity, error)
		AppendActivity(ctx context.Context, ownerID string, planType int, text string) (Activity, error)
		ReplaceActivities(ctx context.Context, ownerID string, planType int, texts []string) error
		// DeleteActivityAt removes one activity and shifts subsequent indices down.
		DeleteActivityAt(ctx context.Context, ownerID string, planType, index int) error
		ClearActivities(ctx context.Context, ownerID string, planType int) error
		ReplaceAllActivities(ctx context.Context, ownerID string, templates map[int][]string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func errInvalidPlanType(pt int) error {
	return core.NewValidationError(
		fmt.Errorf("plan type must be between %d and %d", MinPlanType, MaxPlanType),
		core.FieldError{Field: "planType", Error: fmt.Sprintf("invalid plan type %d", pt)},
	)
}

// List returns the ordered activities of one plan slot. An empty slot yields an
// empty list, never an error: all 6 slots always exist.
func (svc *Service) List(ctx context.Context, ownerID string, planType int) ([]Activity, error) {
	if !ValidPlanType(planType) {
		return nil, errInvalidPlanType(planType)
	}
	return svc.repo.ListActivities(ctx, ownerID, planType)
}

// ListAll returns all 6 plan slots, including empty ones.
func (svc *Service) ListAll(ctx context.Context, ownerID string) (map[int][]Activity, error) {
	all, err := svc.repo.ListAllActivities(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for pt := MinPlanType; pt <= MaxPlanType; pt++ {
		if _, ok := all[pt]; !ok {
			all[pt] = []Activity{}
		}
	}
	return all, nil
}

// Add appends one activity at the end of a plan slot.
func (svc *Service) Add(ctx context.Context, ownerID string, planType int, text string) (Activity, error) {
	if !ValidPlanType(planType) {
		return Activity{}, errInvalidPlanType(planType)
	}
	text = core.CleanString(text)
	if text == "" {
		return Activity{}, core.NewValidationError(
			errors.New("activity text is required"),
			core.FieldError{Field: "activity_text", Error: "this field is required"},
		)
	}
	return svc.repo.AppendActivity(ctx, ownerID, planType, text)
}

// Replace overwrites the whole slot with the given lines, trimming whitespace
// and dropping blank ones.
func (svc *Service) Replace(ctx context.Context, ownerID string, planType int, lines []string) ([]Activity, error) {
	if !ValidPlanType(planType) {
		return nil, errInvalidPlanType(planType)
	}
	texts := cleanLines(lines)
	if err := svc.repo.ReplaceActivities(ctx, ownerID, planType, texts); err != nil {
		return nil, errors.Wrap(err, "replacing activities")
	}
	return svc.repo.ListActivities(ctx, ownerID, planType)
}

// DeleteAt removes the activity at index; the ones after it shift down.
// Progress records keyed by the old indices are left alone: stale indices are
// tolerated (skipped) on the read side.
func (svc *Service) DeleteAt(ctx context.Context, ownerID string, planType, index int) error {
	if !ValidPlanType(planType) {
		return errInvalidPlanType(planType)
	}
	return svc.repo.DeleteActivityAt(ctx, ownerID, planType, index)
}

// Clear empties one plan slot.
func (svc *Service) Clear(ctx context.Context, ownerID string, planType int) error {
	if !ValidPlanType(planType) {
		return errInvalidPlanType(planType)
	}
	return svc.repo.ClearActivities(ctx, ownerID, planType)
}

// ImportRows replaces a plan slot from raw spreadsheet rows, reading the
// designated column of each row. Rows where that column is missing or blank
// are skipped. An import that yields nothing is rejected with ErrNoActivities
// and the stored list is left untouched.
func (svc *Service) ImportRows(ctx context.Context, ownerID string, planType int, rows [][]string, column int) ([]Activity, error) {
	if !ValidPlanType(planType) {
		return nil, errInvalidPlanType(planType)
	}
	texts := ActivitiesFromRows(rows, column)
	if len(texts) == 0 {
		return nil, core.NewValidationError(ErrNoActivities)
	}
	if err := svc.repo.ReplaceActivities(ctx, ownerID, planType, texts); err != nil {
		return nil, errors.Wrap(err, "importing activities")
	}
	return svc.repo.ListActivities(ctx, ownerID, planType)
}

// ActivitiesFromRows derives an ordered activity list from tabular rows by
// reading the given column, trimming, and discarding blanks.
func ActivitiesFromRows(rows [][]string, column int) []string {
	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		if column >= len(row) {
			continue
		}
		if text := core.CleanString(row[column]); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func cleanLines(lines []string) []string {
	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := core.CleanString(line); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}
