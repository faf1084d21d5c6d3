package inmemdb

import (
	"context"
	"sort"

	"github.com/logopedika/kabinet/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) byStudent(ownerID, studentID string) map[int]progress.Record {
	if records, ok := repo.db.table[ownerID]; ok {
		return records[studentID]
	}
	return nil
}

func (repo *progressRepository) GetRecord(ctx context.Context, ownerID, studentID string, activityIndex int) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.byStudent(ownerID, studentID)[activityIndex]; ok {
		return rec, nil
	}
	return progress.Record{}, progress.ErrNoRecord
}

func (repo *progressRepository) ListByStudent(ctx context.Context, ownerID, studentID string) ([]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byIndex := repo.byStudent(ownerID, studentID)
	records := make([]progress.Record, 0, len(byIndex))
	for _, rec := range byIndex {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ActivityIndex < records[j].ActivityIndex })
	return records, nil
}

func (repo *progressRepository) ListAllRecords(ctx context.Context, ownerID string) (map[string]map[int]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	all := make(map[string]map[int]progress.Record, len(repo.db.table[ownerID]))
	for studentID, byIndex := range repo.db.table[ownerID] {
		out := make(map[int]progress.Record, len(byIndex))
		for idx, rec := range byIndex {
			out[idx] = rec
		}
		all[studentID] = out
	}
	return all, nil
}

func (repo *progressRepository) UpsertRecord(ctx context.Context, ownerID string, rec progress.Record) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[ownerID]; !ok {
		repo.db.table[ownerID] = make(map[string]map[int]progress.Record)
	}
	if _, ok := repo.db.table[ownerID][rec.StudentID]; !ok {
		repo.db.table[ownerID][rec.StudentID] = make(map[int]progress.Record)
	}
	repo.db.table[ownerID][rec.StudentID][rec.ActivityIndex] = rec
	return rec, nil
}

func (repo *progressRepository) DeleteRecord(ctx context.Context, ownerID, studentID string, activityIndex int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	byIndex := repo.byStudent(ownerID, studentID)
	if _, ok := byIndex[activityIndex]; !ok {
		return progress.ErrNoRecord
	}
	delete(byIndex, activityIndex)
	return nil
}

func (repo *progressRepository) ReplaceAllRecords(ctx context.Context, ownerID string, records map[string]map[int]progress.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	next := make(map[string]map[int]progress.Record, len(records))
	for studentID, byIndex := range records {
		out := make(map[int]progress.Record, len(byIndex))
		for idx, rec := range byIndex {
			rec.StudentID = studentID
			rec.ActivityIndex = idx
			out[idx] = rec
		}
		next[studentID] = out
	}
	repo.db.table[ownerID] = next
	return nil
}
