package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a student does not exist or is not owned by the caller.
	ErrNotFound = errors.New("student not found")

	NowFunc = time.Now // mockable
)

type (
	// Repository persists the roster for one or more owning accounts.
	// DeleteStudent must cascade: the student's progress records and every
	// schedule cell reference go with it, atomically. A failed cleanup step
	// fails the whole delete.
	Repository interface {
		CreateStudent(ctx context.Context, ownerID string, st Student) (Student, error)
		QueryAllStudents(ctx context.Context, ownerID string) ([]Student, error) // roster insertion order
		GetStudentByID(ctx context.Context, ownerID, id string) (Student, error)
		// FilterExistingIDs returns the subset of ids that exist on the owner's
		// roster, preserving the order given.
		FilterExistingIDs(ctx context.Context, ownerID string, ids []string) ([]string, error)
		UpdateStudent(ctx context.Context, ownerID string, st Student) (Student, error)
		DeleteStudent(ctx context.Context, ownerID, id string) error
		ReplaceStudents(ctx context.Context, ownerID string, students []Student) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ownerID string, ns NewStudent) (Student, error) {
	now := NowFunc().UTC()
	st := Student{
		Name:      ns.Name,
		Grade:     ns.Grade,
		PlanType:  ns.PlanType,
		Notes:     ns.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateStudent(ctx, ownerID, st)
}

func (svc *Service) QueryAll(ctx context.Context, ownerID string) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx, ownerID)
}

func (svc *Service) GetByID(ctx context.Context, ownerID, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, ownerID, id)
}

func (svc *Service) FilterExistingIDs(ctx context.Context, ownerID string, ids []string) ([]string, error) {
	return svc.repo.FilterExistingIDs(ctx, ownerID, ids)
}

func (svc *Service) Update(ctx context.Context, ownerID, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(ctx, ownerID, id)
	if err != nil {
		return Student{}, err
	}
	st := Student{
		ID:        id,
		Name:      us.Name,
		Grade:     us.Grade,
		PlanType:  us.PlanType,
		Notes:     orig.Notes,
		CreatedAt: orig.CreatedAt,
		UpdatedAt: NowFunc().UTC(),
	}
	if us.Notes != nil {
		st.Notes = *us.Notes
	}
	return svc.repo.UpdateStudent(ctx, ownerID, st)
}

// Delete removes the student along with its progress records and schedule references.
func (svc *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := svc.repo.GetStudentByID(ctx, ownerID, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteStudent(ctx, ownerID, id), "deleting student")
}
