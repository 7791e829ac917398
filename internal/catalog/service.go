package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type fetcher interface {
	Products(ctx context.Context, token string) ([]upstream.Product, error)
	Categories(ctx context.Context, token string) ([]upstream.Category, error)
}

// Service caches the upstream catalog and refreshes it when stale. The cache
// is shared across sessions; product data is not session-specific.
type Service interface {
	Snapshot(ctx context.Context, token string) (*Snapshot, error)
	Refresh(ctx context.Context, token string) (*Snapshot, error)
}

type service struct {
	fetcher fetcher
	ttl     time.Duration
	clock   func() time.Time

	mu      sync.RWMutex
	current *Snapshot
}

// NewService builds the catalog cache.
func NewService(f fetcher, ttl time.Duration) (Service, error) {
	if f == nil {
		return nil, fmt.Errorf("catalog fetcher required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("catalog refresh ttl must be positive")
	}
	return &service{fetcher: f, ttl: ttl, clock: time.Now}, nil
}

// Snapshot returns the cached catalog, refreshing it first when stale or
// never fetched.
func (s *service) Snapshot(ctx context.Context, token string) (*Snapshot, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil && s.clock().Sub(current.FetchedAt()) < s.ttl {
		return current, nil
	}

	refreshed, err := s.Refresh(ctx, token)
	if err != nil {
		// A stale snapshot beats an empty register when upstream is down.
		if current != nil {
			return current, nil
		}
		return nil, err
	}
	return refreshed, nil
}

// Refresh fetches products and categories in parallel and swaps the cache.
func (s *service) Refresh(ctx context.Context, token string) (*Snapshot, error) {
	var (
		products   []upstream.Product
		categories []upstream.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.fetcher.Products(gctx, token)
		if err != nil {
			return err
		}
		products = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := s.fetcher.Categories(gctx, token)
		if err != nil {
			return err
		}
		categories = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh catalog")
	}

	snapshot := NewSnapshot(products, categories, s.clock())

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()

	return snapshot, nil
}
