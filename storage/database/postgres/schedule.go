package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/schedule"
)

type scheduleEntryRow struct {
	Day       string `db:"day"`
	TimeSlot  int    `db:"time_slot"`
	StudentID string `db:"student_id"`
	Position  int    `db:"position"`
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) GetGrid(ctx context.Context, ownerID string) (schedule.Grid, error) {
	var rows []scheduleEntryRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT day, time_slot, student_id, position FROM schedule_entry
		 WHERE owner_id = $1 ORDER BY day, time_slot, position`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying schedule")
	}

	grid := schedule.NewGrid()
	for _, row := range rows {
		day := schedule.Day(row.Day)
		if !schedule.ValidDay(day) || !schedule.ValidSlot(row.TimeSlot) {
			continue
		}
		grid[day][row.TimeSlot] = append(grid[day][row.TimeSlot], row.StudentID)
	}
	return grid, nil
}

func (repo *scheduleRepository) GetCell(ctx context.Context, ownerID string, day schedule.Day, slot int) ([]string, error) {
	var ids []string
	err := repo.db.SelectContext(ctx, &ids,
		`SELECT student_id FROM schedule_entry
		 WHERE owner_id = $1 AND day = $2 AND time_slot = $3 ORDER BY position`, ownerID, string(day), slot)
	if err != nil {
		return nil, errors.Wrap(err, "querying cell")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (repo *scheduleRepository) ReplaceCell(ctx context.Context, ownerID string, day schedule.Day, slot int, studentIDs []string) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedule_entry WHERE owner_id = $1 AND day = $2 AND time_slot = $3`,
			ownerID, string(day), slot); err != nil {
			return errors.Wrap(err, "clearing cell")
		}
		return insertCell(ctx, tx, ownerID, day, slot, studentIDs)
	})
}

func (repo *scheduleRepository) RemoveFromCell(ctx context.Context, ownerID string, day schedule.Day, slot int, studentID string) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM schedule_entry WHERE owner_id = $1 AND day = $2 AND time_slot = $3 AND student_id = $4`,
		ownerID, string(day), slot, studentID)
	return errors.Wrap(err, "removing from cell")
}

func (repo *scheduleRepository) ClearGrid(ctx context.Context, ownerID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM schedule_entry WHERE owner_id = $1`, ownerID)
	return errors.Wrap(err, "clearing schedule")
}

func (repo *scheduleRepository) ReplaceGrid(ctx context.Context, ownerID string, grid schedule.Grid) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_entry WHERE owner_id = $1`, ownerID); err != nil {
			return errors.Wrap(err, "clearing schedule")
		}
		for day, slots := range grid {
			for slot, ids := range slots {
				if err := insertCell(ctx, tx, ownerID, day, slot, ids); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertCell(ctx context.Context, tx core.DBTransactor, ownerID string, day schedule.Day, slot int, studentIDs []string) error {
	for pos, id := range studentIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_entry (owner_id, day, time_slot, student_id, position) VALUES ($1, $2, $3, $4, $5)`,
			ownerID, string(day), slot, id, pos)
		if err != nil {
			if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
				return schedule.ErrDuplicateAssignment
			}
			return errors.Wrap(err, "inserting schedule entry")
		}
	}
	return nil
}
