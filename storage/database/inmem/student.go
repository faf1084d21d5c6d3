package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/logopedika/kabinet/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, ownerID string, st student.Student) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	st.ID = uuid.New().String()
	repo.db.student.table[ownerID] = append(repo.db.student.table[ownerID], &st)
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, ownerID string) ([]student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	roster := repo.db.student.table[ownerID]
	students := make([]student.Student, 0, len(roster))
	for _, st := range roster {
		students = append(students, *st)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, ownerID, id string) (student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	for _, st := range repo.db.student.table[ownerID] {
		if st.ID == id {
			return *st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterExistingIDs(ctx context.Context, ownerID string, ids []string) ([]string, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	existing := make(map[string]struct{}, len(repo.db.student.table[ownerID]))
	for _, st := range repo.db.student.table[ownerID] {
		existing[st.ID] = struct{}{}
	}
	out := make([]string, 0, len(ids)) // keep caller order
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, ownerID string, st student.Student) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	for i, orig := range repo.db.student.table[ownerID] {
		if orig.ID == st.ID {
			repo.db.student.table[ownerID][i] = &st
			return st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

// DeleteStudent also drops the student's progress records and schedule entries.
func (repo *studentRepository) DeleteStudent(ctx context.Context, ownerID, id string) error {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	roster := repo.db.student.table[ownerID]
	idx := -1
	for i, st := range roster {
		if st.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return student.ErrNotFound
	}
	repo.db.student.table[ownerID] = append(roster[:idx], roster[idx+1:]...)

	repo.db.progress.Lock()
	delete(repo.db.progress.table[ownerID], id)
	repo.db.progress.Unlock()

	repo.db.schedule.Lock()
	if grid, ok := repo.db.schedule.table[ownerID]; ok {
		for day, cells := range grid {
			for slot, cell := range cells {
				kept := make([]string, 0, len(cell))
				for _, sid := range cell {
					if sid != id {
						kept = append(kept, sid)
					}
				}
				grid[day][slot] = kept
			}
		}
	}
	repo.db.schedule.Unlock()
	return nil
}

func (repo *studentRepository) ReplaceStudents(ctx context.Context, ownerID string, students []student.Student) error {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	roster := make([]*student.Student, 0, len(students))
	for _, st := range students {
		st := st
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		roster = append(roster, &st)
	}
	repo.db.student.table[ownerID] = roster
	return nil
}
