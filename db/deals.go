// ABOUTME: Deal service over the in-memory store
// ABOUTME: CRUD, stage transitions with derived probability, and pipeline metrics
package db

import (
	"context"

	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

type DealService struct {
	s *Store
}

func (ds *DealService) GetAll(ctx context.Context) ([]models.Deal, error) {
	if err := ds.s.wait(ctx, OpList); err != nil {
		return nil, err
	}

	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()

	return ds.s.deals.list(), nil
}

func (ds *DealService) GetByID(ctx context.Context, id int) (*models.Deal, error) {
	if err := ds.s.wait(ctx, OpGet); err != nil {
		return nil, err
	}

	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()

	d, err := ds.s.deals.get(id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (ds *DealService) GetByContactID(ctx context.Context, contactID int) ([]models.Deal, error) {
	if err := ds.s.wait(ctx, OpQuery); err != nil {
		return nil, err
	}

	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()

	return ds.s.deals.filter(func(d models.Deal) bool {
		return d.ContactID == contactID
	}), nil
}

// GetByStage matches the stage name exactly.
func (ds *DealService) GetByStage(ctx context.Context, stage string) ([]models.Deal, error) {
	if err := ds.s.wait(ctx, OpByStage); err != nil {
		return nil, err
	}

	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()

	return ds.s.deals.filter(func(d models.Deal) bool {
		return d.Stage == stage
	}), nil
}

// Create stores a new deal. When f.Probability is nil it comes from the
// stage table, or 0 for a stage outside the table.
func (ds *DealService) Create(ctx context.Context, f models.DealFields) (*models.Deal, error) {
	if err := ds.s.wait(ctx, OpCreate); err != nil {
		return nil, err
	}

	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	probability, _ := models.ProbabilityForStage(f.Stage)
	if f.Probability != nil {
		probability = *f.Probability
	}

	now := ds.s.now()
	d := models.Deal{
		ID:                ds.s.deals.nextID(),
		Title:             f.Title,
		ContactID:         f.ContactID,
		Value:             f.Value,
		Stage:             f.Stage,
		Probability:       probability,
		ExpectedCloseDate: f.ExpectedCloseDate,
		Notes:             f.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	ds.s.deals.set(d.ID, d)

	ds.s.logger.Info("deal created",
		zap.Int("deal_id", d.ID),
		zap.String("stage", d.Stage),
		zap.Float64("value", d.Value),
	)
	return ptr(d.Clone()), nil
}

// Update merges p over the deal. A stage change here keeps the current
// probability; UpdateStage is the transition that derives it.
func (ds *DealService) Update(ctx context.Context, id int, p models.DealPatch) (*models.Deal, error) {
	if err := ds.s.wait(ctx, OpUpdate); err != nil {
		return nil, err
	}

	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	d, err := ds.s.deals.get(id)
	if err != nil {
		return nil, err
	}

	p.Apply(&d)
	d.ID = id
	d.UpdatedAt = ds.s.stamp(d.UpdatedAt)
	ds.s.deals.set(id, d)

	ds.s.logger.Info("deal updated", zap.Int("deal_id", id))
	return &d, nil
}

// UpdateStage moves a deal to stage and sets probability from the stage
// table. An unrecognised stage name keeps the existing probability. No
// activity is recorded; see Store.MoveDeal for that.
func (ds *DealService) UpdateStage(ctx context.Context, id int, stage string) (*models.Deal, error) {
	if err := ds.s.wait(ctx, OpUpdateStage); err != nil {
		return nil, err
	}

	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	d, err := ds.s.deals.get(id)
	if err != nil {
		return nil, err
	}

	from := d.Stage
	d.Stage = stage
	if p, ok := models.ProbabilityForStage(stage); ok {
		d.Probability = p
	}
	d.UpdatedAt = ds.s.stamp(d.UpdatedAt)
	ds.s.deals.set(id, d)

	ds.s.logger.Info("deal stage changed",
		zap.Int("deal_id", id),
		zap.String("from", from),
		zap.String("to", stage),
		zap.Int("probability", d.Probability),
	)
	return &d, nil
}

// Delete removes the deal and returns it. Activities that reference it are
// left alone.
func (ds *DealService) Delete(ctx context.Context, id int) (*models.Deal, error) {
	if err := ds.s.wait(ctx, OpDelete); err != nil {
		return nil, err
	}

	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	d, err := ds.s.deals.remove(id)
	if err != nil {
		return nil, err
	}

	ds.s.logger.Info("deal deleted", zap.Int("deal_id", id))
	return &d, nil
}

// GetPipelineMetrics recomputes metrics from the current deals.
func (ds *DealService) GetPipelineMetrics(ctx context.Context) (models.PipelineMetrics, error) {
	if err := ds.s.wait(ctx, OpMetrics); err != nil {
		return models.PipelineMetrics{}, err
	}

	ds.s.mu.RLock()
	defer ds.s.mu.RUnlock()

	return ComputePipelineMetrics(ds.s.deals.list()), nil
}
