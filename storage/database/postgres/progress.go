package pgrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/progress"
)

type progressRow struct {
	StudentID      string `db:"student_id"`
	ActivityIndex  int    `db:"activity_index"`
	Completed      bool   `db:"completed"`
	CompletionDate string `db:"completion_date"`
	CompletionTime string `db:"completion_time"`
}

func (r progressRow) record() progress.Record {
	return progress.Record{
		StudentID:     r.StudentID,
		ActivityIndex: r.ActivityIndex,
		Completed:     r.Completed,
		Date:          r.CompletionDate,
		Time:          r.CompletionTime,
	}
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) GetRecord(ctx context.Context, ownerID, studentID string, activityIndex int) (progress.Record, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT student_id, activity_index, completed, completion_date, completion_time FROM progress_record
		 WHERE owner_id = $1 AND student_id = $2 AND activity_index = $3`, ownerID, studentID, activityIndex)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.Record{}, progress.ErrNoRecord
		}
		return progress.Record{}, errors.Wrap(err, "getting record")
	}
	return row.record(), nil
}

func (repo *progressRepository) ListByStudent(ctx context.Context, ownerID, studentID string) ([]progress.Record, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT student_id, activity_index, completed, completion_date, completion_time FROM progress_record
		 WHERE owner_id = $1 AND student_id = $2 ORDER BY activity_index`, ownerID, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing records")
	}
	records := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (repo *progressRepository) ListAllRecords(ctx context.Context, ownerID string) (map[string]map[int]progress.Record, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT student_id, activity_index, completed, completion_date, completion_time FROM progress_record
		 WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing all records")
	}
	all := make(map[string]map[int]progress.Record)
	for _, row := range rows {
		if all[row.StudentID] == nil {
			all[row.StudentID] = make(map[int]progress.Record)
		}
		all[row.StudentID][row.ActivityIndex] = row.record()
	}
	return all, nil
}

func (repo *progressRepository) UpsertRecord(ctx context.Context, ownerID string, rec progress.Record) (progress.Record, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO progress_record (owner_id, student_id, activity_index, completed, completion_date, completion_time)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (owner_id, student_id, activity_index) DO UPDATE
		 SET completed       = EXCLUDED.completed,
		     completion_date = EXCLUDED.completion_date,
		     completion_time = EXCLUDED.completion_time`,
		ownerID, rec.StudentID, rec.ActivityIndex, rec.Completed, rec.Date, rec.Time)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "saving record")
	}
	return rec, nil
}

func (repo *progressRepository) DeleteRecord(ctx context.Context, ownerID, studentID string, activityIndex int) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM progress_record WHERE owner_id = $1 AND student_id = $2 AND activity_index = $3`,
		ownerID, studentID, activityIndex)
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return progress.ErrNoRecord
	}
	return nil
}

func (repo *progressRepository) ReplaceAllRecords(ctx context.Context, ownerID string, records map[string]map[int]progress.Record) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM progress_record WHERE owner_id = $1`, ownerID); err != nil {
			return errors.Wrap(err, "clearing records")
		}
		for studentID, byIndex := range records {
			for idx, rec := range byIndex {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO progress_record (owner_id, student_id, activity_index, completed, completion_date, completion_time)
					 VALUES ($1, $2, $3, $4, $5, $6)`,
					ownerID, studentID, idx, rec.Completed, rec.Date, rec.Time)
				if err != nil {
					return errors.Wrap(err, "inserting record")
				}
			}
		}
		return nil
	})
}
