package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/plan"
)

type activityRow struct {
	PlanType int    `db:"plan_type"`
	Index    int    `db:"order_index"`
	Text     string `db:"activity_text"`
}

type planRepository struct {
	db *sqlx.DB
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *sqlx.DB) *planRepository {
	return &planRepository{db: db}
}

func (repo *planRepository) ListActivities(ctx context.Context, ownerID string, planType int) ([]plan.Activity, error) {
	var rows []activityRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT plan_type, order_index, activity_text FROM plan_activity
		 WHERE owner_id = $1 AND plan_type = $2 ORDER BY order_index`, ownerID, planType)
	if err != nil {
		return nil, errors.Wrap(err, "listing activities")
	}
	activities := make([]plan.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, plan.Activity{PlanType: row.PlanType, Index: row.Index, Text: row.Text})
	}
	return activities, nil
}

func (repo *planRepository) ListAllActivities(ctx context.Context, ownerID string) (map[int][]plan.Activity, error) {
	var rows []activityRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT plan_type, order_index, activity_text FROM plan_activity
		 WHERE owner_id = $1 ORDER BY plan_type, order_index`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing all activities")
	}
	all := make(map[int][]plan.Activity)
	for _, row := range rows {
		all[row.PlanType] = append(all[row.PlanType], plan.Activity{PlanType: row.PlanType, Index: row.Index, Text: row.Text})
	}
	return all, nil
}

func (repo *planRepository) AppendActivity(ctx context.Context, ownerID string, planType int, text string) (plan.Activity, error) {
	var index int
	err := repo.db.GetContext(ctx, &index,
		`INSERT INTO plan_activity (owner_id, plan_type, order_index, activity_text)
		 VALUES ($1, $2,
		         (SELECT COALESCE(MAX(order_index) + 1, 0) FROM plan_activity WHERE owner_id = $1 AND plan_type = $2),
		         $3)
		 RETURNING order_index`, ownerID, planType, text)
	if err != nil {
		return plan.Activity{}, errors.Wrap(err, "appending activity")
	}
	return plan.Activity{PlanType: planType, Index: index, Text: text}, nil
}

func (repo *planRepository) ReplaceActivities(ctx context.Context, ownerID string, planType int, texts []string) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM plan_activity WHERE owner_id = $1 AND plan_type = $2`, ownerID, planType); err != nil {
			return errors.Wrap(err, "clearing activities")
		}
		return insertActivities(ctx, tx, ownerID, planType, texts)
	})
}

func (repo *planRepository) DeleteActivityAt(ctx context.Context, ownerID string, planType, index int) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM plan_activity WHERE owner_id = $1 AND plan_type = $2 AND order_index = $3`,
			ownerID, planType, index)
		if err != nil {
			return errors.Wrap(err, "deleting activity")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return plan.ErrNotFound
		}
		// shift the tail down; the uniqueness constraint is deferred
		_, err = tx.ExecContext(ctx,
			`UPDATE plan_activity SET order_index = order_index - 1
			 WHERE owner_id = $1 AND plan_type = $2 AND order_index > $3`,
			ownerID, planType, index)
		return errors.Wrap(err, "reindexing activities")
	})
}

func (repo *planRepository) ClearActivities(ctx context.Context, ownerID string, planType int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM plan_activity WHERE owner_id = $1 AND plan_type = $2`, ownerID, planType)
	return errors.Wrap(err, "clearing activities")
}

func (repo *planRepository) ReplaceAllActivities(ctx context.Context, ownerID string, templates map[int][]string) error {
	return core.Atomic(ctx, repo.db.DB, func(tx core.DBTransactor) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM plan_activity WHERE owner_id = $1`, ownerID); err != nil {
			return errors.Wrap(err, "clearing activities")
		}
		for planType, texts := range templates {
			if err := insertActivities(ctx, tx, ownerID, planType, texts); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertActivities(ctx context.Context, tx core.DBTransactor, ownerID string, planType int, texts []string) error {
	for i, text := range texts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plan_activity (owner_id, plan_type, order_index, activity_text) VALUES ($1, $2, $3, $4)`,
			ownerID, planType, i, text)
		if err != nil {
			return errors.Wrap(err, "inserting activity")
		}
	}
	return nil
}
