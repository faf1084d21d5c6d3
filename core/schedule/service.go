package schedule

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
)

// ErrDuplicateAssignment is returned by repositories when a student is
// assigned twice to the same cell outside of a full cell replacement.
var ErrDuplicateAssignment = errors.New("student already scheduled for this time slot")

type (
	// Repository persists the weekly grid per owning account.
	// ReplaceCell swaps a cell's full membership in one transaction.
	Repository interface {
		GetGrid(ctx context.Context, ownerID string) (Grid, error)
		GetCell(ctx context.Context, ownerID string, day Day, slot int) ([]string, error)
		ReplaceCell(ctx context.Context, ownerID string, day Day, slot int, studentIDs []string) error
		RemoveFromCell(ctx context.Context, ownerID string, day Day, slot int, studentID string) error
		ClearGrid(ctx context.Context, ownerID string) error
		ReplaceGrid(ctx context.Context, ownerID string, grid Grid) error
	}

	// StudentDirectory validates assigned ids against the roster.
	StudentDirectory interface {
		FilterExistingIDs(ctx context.Context, ownerID string, ids []string) ([]string, error)
	}

	Service struct {
		repo     Repository
		students StudentDirectory
	}
)

func NewService(repo Repository, students StudentDirectory) *Service {
	return &Service{repo: repo, students: students}
}

func validateCell(day Day, slot int) error {
	if !ValidDay(day) {
		return core.NewValidationError(
			fmt.Errorf("unknown day %q", day),
			core.FieldError{Field: "day", Error: fmt.Sprintf("unknown day %q", day)},
		)
	}
	if !ValidSlot(slot) {
		return core.NewValidationError(
			fmt.Errorf("time slot must be between 0 and %d", SlotsPerDay-1),
			core.FieldError{Field: "time_slot", Error: fmt.Sprintf("invalid time slot %d", slot)},
		)
	}
	return nil
}

// Grid returns the full weekly grid, all cells present.
func (svc *Service) Grid(ctx context.Context, ownerID string) (Grid, error) {
	return svc.repo.GetGrid(ctx, ownerID)
}

// Cell returns the ordered student ids of one cell.
func (svc *Service) Cell(ctx context.Context, ownerID string, day Day, slot int) ([]string, error) {
	if err := validateCell(day, slot); err != nil {
		return nil, err
	}
	return svc.repo.GetCell(ctx, ownerID, day, slot)
}

// Assign replaces the cell's full membership in one atomic operation.
// Ids with no matching student on the roster are dropped silently; duplicates
// within the call keep their first position. Assigning the same set twice
// yields the same state.
func (svc *Service) Assign(ctx context.Context, ownerID string, day Day, slot int, studentIDs []string) ([]string, error) {
	if err := validateCell(day, slot); err != nil {
		return nil, err
	}

	existing, err := svc.students.FilterExistingIDs(ctx, ownerID, dedupe(studentIDs))
	if err != nil {
		return nil, errors.Wrap(err, "validating student ids")
	}
	if err := svc.repo.ReplaceCell(ctx, ownerID, day, slot, existing); err != nil {
		return nil, errors.Wrap(err, "replacing cell")
	}
	return existing, nil
}

// Remove takes one student out of one cell.
func (svc *Service) Remove(ctx context.Context, ownerID string, day Day, slot int, studentID string) error {
	if err := validateCell(day, slot); err != nil {
		return err
	}
	return svc.repo.RemoveFromCell(ctx, ownerID, day, slot, studentID)
}

// ClearAll resets every cell of the grid to empty.
func (svc *Service) ClearAll(ctx context.Context, ownerID string) error {
	return svc.repo.ClearGrid(ctx, ownerID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
