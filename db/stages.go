// ABOUTME: Stage service over the in-memory store
// ABOUTME: Pipeline column definitions kept sorted by their order field
package db

import (
	"cmp"
	"context"
	"slices"

	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

type StageService struct {
	s *Store
}

// GetAll returns stages sorted by order, then ID.
func (ss *StageService) GetAll(ctx context.Context) ([]models.Stage, error) {
	if err := ss.s.wait(ctx, OpStageList); err != nil {
		return nil, err
	}

	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	return ss.sorted(), nil
}

func (ss *StageService) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	if err := ss.s.wait(ctx, OpStageGet); err != nil {
		return nil, err
	}

	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	st, err := ss.s.stages.get(id)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetByName returns the first stage, in pipeline order, whose name matches
// exactly. The second result is false when none does.
func (ss *StageService) GetByName(ctx context.Context, name string) (*models.Stage, bool, error) {
	if err := ss.s.wait(ctx, OpStageGet); err != nil {
		return nil, false, err
	}

	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	for _, st := range ss.sorted() {
		if st.Name == name {
			return &st, true, nil
		}
	}
	return nil, false, nil
}

// Create appends a stage after the current last column.
func (ss *StageService) Create(ctx context.Context, f models.StageFields) (*models.Stage, error) {
	if err := ss.s.wait(ctx, OpStageCreate); err != nil {
		return nil, err
	}

	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	maxOrder := 0
	for _, st := range ss.s.stages.items {
		maxOrder = max(maxOrder, st.Order)
	}

	st := models.Stage{
		ID:    ss.s.stages.nextID(),
		Name:  f.Name,
		Color: f.Color,
		Order: maxOrder + 1,
	}
	ss.s.stages.set(st.ID, st)

	ss.s.logger.Info("stage created", zap.Int("stage_id", st.ID), zap.String("name", st.Name))
	return &st, nil
}

// Update merges p over the stage. Renaming a stage does not touch deals
// that carry the old name.
func (ss *StageService) Update(ctx context.Context, id int, p models.StagePatch) (*models.Stage, error) {
	if err := ss.s.wait(ctx, OpStageUpdate); err != nil {
		return nil, err
	}

	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	st, err := ss.s.stages.get(id)
	if err != nil {
		return nil, err
	}

	p.Apply(&st)
	st.ID = id
	ss.s.stages.set(id, st)

	ss.s.logger.Info("stage updated", zap.Int("stage_id", id))
	return &st, nil
}

func (ss *StageService) Delete(ctx context.Context, id int) (*models.Stage, error) {
	if err := ss.s.wait(ctx, OpStageDelete); err != nil {
		return nil, err
	}

	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	st, err := ss.s.stages.remove(id)
	if err != nil {
		return nil, err
	}

	ss.s.logger.Info("stage deleted", zap.Int("stage_id", id))
	return &st, nil
}

// Reorder assigns new order values. Unknown IDs are skipped. The result is
// the full stage list in its new order.
func (ss *StageService) Reorder(ctx context.Context, orders []models.StageOrder) ([]models.Stage, error) {
	if err := ss.s.wait(ctx, OpReorder); err != nil {
		return nil, err
	}

	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	applied := 0
	for _, o := range orders {
		st, ok := ss.s.stages.items[o.ID]
		if !ok {
			continue
		}
		st.Order = o.Order
		ss.s.stages.items[o.ID] = st
		applied++
	}

	ss.s.logger.Info("stages reordered", zap.Int("requested", len(orders)), zap.Int("applied", applied))
	return ss.sorted(), nil
}

// sorted assumes the lock is held.
func (ss *StageService) sorted() []models.Stage {
	list := ss.s.stages.list()
	slices.SortStableFunc(list, func(a, b models.Stage) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list
}
