package inmemdb

import (
	"context"

	"github.com/logopedika/kabinet/core/plan"
)

type planRepository struct {
	db *planTable
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *DB) *planRepository {
	return &planRepository{db: db.plan}
}

func (repo *planRepository) slot(ownerID string, planType int) []string {
	if templates, ok := repo.db.table[ownerID]; ok {
		return templates[planType]
	}
	return nil
}

func (repo *planRepository) setSlot(ownerID string, planType int, texts []string) {
	if _, ok := repo.db.table[ownerID]; !ok {
		repo.db.table[ownerID] = make(map[int][]string)
	}
	repo.db.table[ownerID][planType] = texts
}

func activities(planType int, texts []string) []plan.Activity {
	out := make([]plan.Activity, 0, len(texts))
	for i, text := range texts {
		out = append(out, plan.Activity{PlanType: planType, Index: i, Text: text})
	}
	return out
}

func (repo *planRepository) ListActivities(ctx context.Context, ownerID string, planType int) ([]plan.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return activities(planType, repo.slot(ownerID, planType)), nil
}

func (repo *planRepository) ListAllActivities(ctx context.Context, ownerID string) (map[int][]plan.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	all := make(map[int][]plan.Activity)
	for planType, texts := range repo.db.table[ownerID] {
		if len(texts) > 0 {
			all[planType] = activities(planType, texts)
		}
	}
	return all, nil
}

func (repo *planRepository) AppendActivity(ctx context.Context, ownerID string, planType int, text string) (plan.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	texts := append(repo.slot(ownerID, planType), text)
	repo.setSlot(ownerID, planType, texts)
	return plan.Activity{PlanType: planType, Index: len(texts) - 1, Text: text}, nil
}

func (repo *planRepository) ReplaceActivities(ctx context.Context, ownerID string, planType int, texts []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.setSlot(ownerID, planType, append([]string{}, texts...))
	return nil
}

func (repo *planRepository) DeleteActivityAt(ctx context.Context, ownerID string, planType, index int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	texts := repo.slot(ownerID, planType)
	if index < 0 || index >= len(texts) {
		return plan.ErrNotFound
	}
	repo.setSlot(ownerID, planType, append(texts[:index], texts[index+1:]...))
	return nil
}

func (repo *planRepository) ClearActivities(ctx context.Context, ownerID string, planType int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.setSlot(ownerID, planType, nil)
	return nil
}

func (repo *planRepository) ReplaceAllActivities(ctx context.Context, ownerID string, templates map[int][]string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	next := make(map[int][]string, len(templates))
	for planType, texts := range templates {
		next[planType] = append([]string{}, texts...)
	}
	repo.db.table[ownerID] = next
	return nil
}
