package inmemdb

import (
	"context"

	"github.com/logopedika/kabinet/core/schedule"
)

type scheduleRepository struct {
	db *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) grid(ownerID string) schedule.Grid {
	grid, ok := repo.db.table[ownerID]
	if !ok {
		grid = schedule.NewGrid()
		repo.db.table[ownerID] = grid
	}
	return grid
}

func copyGrid(grid schedule.Grid) schedule.Grid {
	out := schedule.NewGrid()
	for day, cells := range grid {
		for slot, cell := range cells {
			out[day][slot] = append([]string{}, cell...)
		}
	}
	return out
}

func (repo *scheduleRepository) GetGrid(ctx context.Context, ownerID string) (schedule.Grid, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return copyGrid(repo.grid(ownerID)), nil
}

func (repo *scheduleRepository) GetCell(ctx context.Context, ownerID string, day schedule.Day, slot int) ([]string, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return append([]string{}, repo.grid(ownerID)[day][slot]...), nil
}

func (repo *scheduleRepository) ReplaceCell(ctx context.Context, ownerID string, day schedule.Day, slot int, studentIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.grid(ownerID)[day][slot] = append([]string{}, studentIDs...)
	return nil
}

func (repo *scheduleRepository) RemoveFromCell(ctx context.Context, ownerID string, day schedule.Day, slot int, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	grid := repo.grid(ownerID)
	cell := grid[day][slot]
	kept := make([]string, 0, len(cell))
	for _, id := range cell {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	grid[day][slot] = kept
	return nil
}

func (repo *scheduleRepository) ClearGrid(ctx context.Context, ownerID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[ownerID] = schedule.NewGrid()
	return nil
}

func (repo *scheduleRepository) ReplaceGrid(ctx context.Context, ownerID string, grid schedule.Grid) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[ownerID] = copyGrid(grid)
	return nil
}
