package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/student"
)

type studentRow struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Name      string    `db:"name"`
	Grade     string    `db:"grade"`
	PlanType  int       `db:"plan_type"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:        r.ID,
		Name:      r.Name,
		Grade:     r.Grade,
		PlanType:  r.PlanType,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, ownerID string, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO student (id, owner_id, name, grade, plan_type, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		st.ID, ownerID, st.Name, st.Grade, st.PlanType, st.Notes, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, ownerID string) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM student WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, ownerID, id string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM student WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by ID")
	}
	return row.student(), nil
}

func (repo *studentRepository) FilterExistingIDs(ctx context.Context, ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM student WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building filter query")
	}
	var found []string
	if err := repo.db.SelectContext(ctx, &found, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering student ids")
	}

	existing := make(map[string]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}
	out := make([]string, 0, len(found)) // keep caller order
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, ownerID string, st student.Student) (student.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student SET name = $1, grade = $2, plan_type = $3, notes = $4, updated_at = $5
		 WHERE owner_id = $6 AND id = $7`,
		st.Name, st.Grade, st.PlanType, st.Notes, st.UpdatedAt, ownerID, st.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

// DeleteStudent relies on FK cascades: the student's progress records and
// schedule entries go in the same statement.
func (repo *studentRepository) DeleteStudent(ctx context.Context, ownerID, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM student WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) ReplaceStudents(ctx context.Context, ownerID string, students []student.Student) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM student WHERE owner_id = $1`, ownerID); err != nil {
			return errors.Wrap(err, "clearing students")
		}
		base := time.Now().UTC()
		for i, st := range students {
			if st.ID == "" {
				st.ID = uuid.New().String()
			}
			// QueryAllStudents orders by created_at; keep the list order for
			// rows that carry no timestamp of their own.
			if st.CreatedAt.IsZero() {
				st.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
			}
			if st.UpdatedAt.IsZero() {
				st.UpdatedAt = st.CreatedAt
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO student (id, owner_id, name, grade, plan_type, notes, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				st.ID, ownerID, st.Name, st.Grade, st.PlanType, st.Notes, st.CreatedAt, st.UpdatedAt)
			if err != nil {
				return errors.Wrap(err, "inserting student")
			}
		}
		return nil
	})
}
