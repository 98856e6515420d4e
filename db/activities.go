// ABOUTME: Activity service over the in-memory store
// ABOUTME: Logs interactions and serves them newest first by contact, deal, or type
package db

import (
	"cmp"
	"context"
	"slices"

	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

// DefaultRecentLimit is used by GetRecent when the caller passes no limit.
const DefaultRecentLimit = 10

type ActivityService struct {
	s *Store
}

// GetAll returns every activity, newest first.
func (as *ActivityService) GetAll(ctx context.Context) ([]models.Activity, error) {
	if err := as.s.wait(ctx, OpList); err != nil {
		return nil, err
	}

	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	return newestFirst(as.s.activities.list()), nil
}

func (as *ActivityService) GetByID(ctx context.Context, id int) (*models.Activity, error) {
	if err := as.s.wait(ctx, OpGet); err != nil {
		return nil, err
	}

	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	a, err := as.s.activities.get(id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (as *ActivityService) GetByContactID(ctx context.Context, contactID int) ([]models.Activity, error) {
	return as.query(ctx, OpQuery, func(a models.Activity) bool {
		return a.ContactID != nil && *a.ContactID == contactID
	})
}

func (as *ActivityService) GetByDealID(ctx context.Context, dealID int) ([]models.Activity, error) {
	return as.query(ctx, OpQuery, func(a models.Activity) bool {
		return a.DealID != nil && *a.DealID == dealID
	})
}

func (as *ActivityService) GetByType(ctx context.Context, kind models.ActivityType) ([]models.Activity, error) {
	return as.query(ctx, OpSearch, func(a models.Activity) bool {
		return a.Type == kind
	})
}

// GetRecent returns at most limit activities, newest first. A limit of zero
// or less means DefaultRecentLimit.
func (as *ActivityService) GetRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	all, err := as.query(ctx, OpRecent, nil)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Create records an activity stamped with the current time. References are
// not checked against the contact or deal collections.
func (as *ActivityService) Create(ctx context.Context, f models.ActivityFields) (*models.Activity, error) {
	if err := as.s.wait(ctx, OpCreate); err != nil {
		return nil, err
	}

	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	return as.create(f), nil
}

// create assumes the write lock is held.
func (as *ActivityService) create(f models.ActivityFields) *models.Activity {
	a := models.Activity{
		ID:          as.s.activities.nextID(),
		Type:        f.Type,
		ContactID:   f.ContactID,
		DealID:      f.DealID,
		Description: f.Description,
		Timestamp:   as.s.now(),
	}
	as.s.activities.set(a.ID, a)

	fields := []zap.Field{zap.Int("activity_id", a.ID), zap.String("type", string(a.Type))}
	if a.DealID != nil {
		fields = append(fields, zap.Int("deal_id", *a.DealID))
	}
	as.s.logger.Info("activity logged", fields...)

	return ptr(a.Clone())
}

// Update merges p over the activity. The timestamp never changes.
func (as *ActivityService) Update(ctx context.Context, id int, p models.ActivityPatch) (*models.Activity, error) {
	if err := as.s.wait(ctx, OpUpdate); err != nil {
		return nil, err
	}

	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	a, err := as.s.activities.get(id)
	if err != nil {
		return nil, err
	}

	p.Apply(&a)
	a.ID = id
	as.s.activities.set(id, a)

	as.s.logger.Info("activity updated", zap.Int("activity_id", id))
	return &a, nil
}

func (as *ActivityService) Delete(ctx context.Context, id int) (*models.Activity, error) {
	if err := as.s.wait(ctx, OpDelete); err != nil {
		return nil, err
	}

	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	a, err := as.s.activities.remove(id)
	if err != nil {
		return nil, err
	}

	as.s.logger.Info("activity deleted", zap.Int("activity_id", id))
	return &a, nil
}

func (as *ActivityService) query(ctx context.Context, op Op, keep func(models.Activity) bool) ([]models.Activity, error) {
	if err := as.s.wait(ctx, op); err != nil {
		return nil, err
	}

	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	return newestFirst(as.s.activities.filter(keep)), nil
}

// newestFirst sorts by timestamp descending. Equal timestamps put the higher
// ID first so the order is stable across calls.
func newestFirst(list []models.Activity) []models.Activity {
	slices.SortFunc(list, func(a, b models.Activity) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return list
}
