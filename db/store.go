// ABOUTME: In-memory CRM repository owning the contact, deal, activity, and stage collections
// ABOUTME: Seeds from fixtures at construction and hands out per-entity services
package db

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Store is the process-lifetime repository. All collections share one lock so
// a call observes and mutates a consistent view.
type Store struct {
	mu         sync.RWMutex
	contacts   *collection[models.Contact]
	deals      *collection[models.Deal]
	activities *collection[models.Activity]
	stages     *collection[models.Stage]

	latency Latency
	now     func() time.Time
	logger  *zap.Logger
	session string

	Contacts   *ContactService
	Deals      *DealService
	Activities *ActivityService
	Stages     *StageService
}

type options struct {
	fixtures *Fixtures
	latency  Latency
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*options)

// WithFixtures seeds the store from f instead of the embedded fixtures.
func WithFixtures(f Fixtures) Option {
	return func(o *options) { o.fixtures = &f }
}

// WithLatency sets the simulated latency. The default is NoLatency.
func WithLatency(l Latency) Option {
	return func(o *options) { o.latency = l }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a store seeded from the embedded fixtures unless WithFixtures
// is given.
func New(opts ...Option) (*Store, error) {
	o := options{
		latency: NoLatency,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.fixtures == nil {
		f, err := DefaultFixtures()
		if err != nil {
			return nil, err
		}
		o.fixtures = &f
	}

	s := &Store{
		contacts:   newCollection[models.Contact]("contact"),
		deals:      newCollection[models.Deal]("deal"),
		activities: newCollection[models.Activity]("activity"),
		stages:     newCollection[models.Stage]("stage"),
		latency:    o.latency,
		now:        o.now,
		logger:     o.logger,
		session:    ulid.Make().String(),
	}
	s.Contacts = &ContactService{s: s}
	s.Deals = &DealService{s: s}
	s.Activities = &ActivityService{s: s}
	s.Stages = &StageService{s: s}

	if err := s.seed(*o.fixtures); err != nil {
		return nil, err
	}

	s.logger.Debug("store seeded",
		zap.String("session", s.session),
		zap.Int("contacts", len(s.contacts.items)),
		zap.Int("deals", len(s.deals.items)),
		zap.Int("activities", len(s.activities.items)),
		zap.Int("stages", len(s.stages.items)),
	)

	return s, nil
}

// SessionID identifies this store instance for the lifetime of the process.
func (s *Store) SessionID() string {
	return s.session
}

// Export returns copies of every collection in ID order.
func (s *Store) Export() Fixtures {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Fixtures{
		Contacts:   s.contacts.list(),
		Deals:      s.deals.list(),
		Activities: s.activities.list(),
		Stages:     s.stages.list(),
	}
}

func (s *Store) seed(f Fixtures) error {
	for _, c := range f.Contacts {
		if err := s.contacts.seed(c.ID, c); err != nil {
			return err
		}
	}
	for _, d := range f.Deals {
		if err := s.deals.seed(d.ID, d); err != nil {
			return err
		}
	}
	for _, a := range f.Activities {
		if err := s.activities.seed(a.ID, a); err != nil {
			return err
		}
	}
	for _, st := range f.Stages {
		if err := s.stages.seed(st.ID, st); err != nil {
			return err
		}
	}
	return nil
}

// wait applies simulated latency before the caller takes the lock.
func (s *Store) wait(ctx context.Context, op Op) error {
	return s.latency.Wait(ctx, op)
}

// stamp returns a timestamp strictly after prev.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

type cloner[T any] interface {
	Clone() T
}

// collection is an ID-keyed arena for one entity type.
type collection[T cloner[T]] struct {
	entity string
	items  map[int]T
	maxID  int
}

func newCollection[T cloner[T]](entity string) *collection[T] {
	return &collection[T]{entity: entity, items: make(map[int]T)}
}

func (c *collection[T]) seed(id int, v T) error {
	if id <= 0 {
		return fmt.Errorf("fixture %s has invalid ID %d", c.entity, id)
	}
	if _, exists := c.items[id]; exists {
		return fmt.Errorf("duplicate fixture %s ID %d", c.entity, id)
	}
	c.set(id, v)
	return nil
}

// nextID is the largest ID in use plus one.
func (c *collection[T]) nextID() int {
	return c.maxID + 1
}

func (c *collection[T]) get(id int) (T, error) {
	v, ok := c.items[id]
	if !ok {
		var zero T
		return zero, &NotFoundError{Entity: c.entity, ID: id}
	}
	return v.Clone(), nil
}

func (c *collection[T]) set(id int, v T) {
	c.items[id] = v.Clone()
	if id > c.maxID {
		c.maxID = id
	}
}

func (c *collection[T]) remove(id int) (T, error) {
	v, ok := c.items[id]
	if !ok {
		var zero T
		return zero, &NotFoundError{Entity: c.entity, ID: id}
	}
	delete(c.items, id)

	if id == c.maxID {
		c.maxID = 0
		for k := range c.items {
			if k > c.maxID {
				c.maxID = k
			}
		}
	}
	return v, nil
}

// list returns copies in ID order, which is also insertion order since new
// IDs always exceed existing ones.
func (c *collection[T]) list() []T {
	return c.filter(nil)
}

func (c *collection[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0, len(c.items))
	for _, id := range slices.Sorted(maps.Keys(c.items)) {
		v := c.items[id]
		if keep == nil || keep(v) {
			out = append(out, v.Clone())
		}
	}
	return out
}
