// Package catalog holds question definitions: storage backends, the cached
// read view the engine consumes, and the seed-file loader.
package catalog

import (
	"context"
	"sync"
	"time"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
)

// Store is a question backend. GetQuestion returns sentinel.ErrNotFound for
// missing or inactive questions.
type Store interface {
	GetQuestion(ctx context.Context, qid id.QuestionID) (*models.Question, error)
	InitialQuestionIDs(ctx context.Context, limit int) ([]id.QuestionID, error)
	CountActive(ctx context.Context) (int, error)
	Upsert(ctx context.Context, questions []models.Question) error
}

const defaultCountTTL = 5 * time.Minute

// Catalog is the read view the engine uses. The active-question count is
// cached for at most CountTTL, so progress may lag catalog edits by that long.
type Catalog struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	count     int
	fetchedAt time.Time
	cached    bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCountTTL sets the staleness window of the active-question count. Zero
// disables caching.
func WithCountTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

func New(store Store, opts ...Option) *Catalog {
	c := &Catalog{
		store: store,
		ttl:   defaultCountTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) GetQuestion(ctx context.Context, qid id.QuestionID) (*models.Question, error) {
	return c.store.GetQuestion(ctx, qid)
}

func (c *Catalog) InitialQuestionIDs(ctx context.Context, limit int) ([]id.QuestionID, error) {
	return c.store.InitialQuestionIDs(ctx, limit)
}

// TotalActiveCount returns the number of active questions, served from cache
// while it is younger than the TTL.
func (c *Catalog) TotalActiveCount(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.count, nil
	}
	n, err := c.store.CountActive(ctx)
	if err != nil {
		return 0, err
	}
	c.count = n
	c.fetchedAt = c.now()
	c.cached = true
	return n, nil
}

// Upsert writes questions through to the store and drops the cached count.
func (c *Catalog) Upsert(ctx context.Context, questions []models.Question) error {
	if err := c.store.Upsert(ctx, questions); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate forgets the cached count.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.cached = false
	c.mu.Unlock()
}
