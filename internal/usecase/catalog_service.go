package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/infrastructure/sheets"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	// RefreshInterval is the snapshot age after which reads reload the
	// feed. Zero keeps a snapshot until Load is called again.
	RefreshInterval time.Duration

	// LoadTimeout bounds one shared feed load. Zero means DefaultLoadTimeout.
	LoadTimeout time.Duration
}

// DefaultLoadTimeout bounds a shared feed load when none is configured
const DefaultLoadTimeout = 30 * time.Second

// CatalogService owns the current catalog snapshot. Each load replaces the
// products and visibility flags together.
type CatalogService struct {
	source  domain.FeedSource
	refresh time.Duration
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time

	loads singleflight.Group

	mu       sync.RWMutex
	snapshot *domain.Snapshot

	subMu       sync.Mutex
	subscribers []func(domain.Snapshot)
}

// NewCatalogService creates a catalog service reading from source
func NewCatalogService(source domain.FeedSource, config CatalogServiceConfig, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = DefaultLoadTimeout
	}
	return &CatalogService{
		source:  source,
		refresh: config.RefreshInterval,
		timeout: config.LoadTimeout,
		logger:  logger.Named("catalog"),
		now:     time.Now,
	}
}

// Subscribe registers fn to receive every newly loaded snapshot
func (s *CatalogService) Subscribe(fn func(domain.Snapshot)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Load fetches and interprets the feed and installs the result.
// Concurrent calls share one fetch, which runs detached from any single
// caller's cancellation; each caller still returns when its own ctx ends.
// On transport failure the previous snapshot stays in place and the error
// is returned.
func (s *CatalogService) Load(ctx context.Context) (domain.Snapshot, error) {
	ch := s.loads.DoChan("load", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Snapshot{}, res.Err
		}
		return res.Val.(domain.Snapshot), nil
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	}
}

func (s *CatalogService) load(ctx context.Context) (domain.Snapshot, error) {
	text, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("feed load failed", zap.Error(err))
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{
		Catalog:  sheets.Interpret(text),
		LoadedAt: s.now(),
	}

	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		zap.Int("products", len(snap.Products)),
		zap.Bool("show_price", snap.Visibility.ShowPrice))
	s.notify(snap)
	return snap, nil
}

func (s *CatalogService) notify(snap domain.Snapshot) {
	s.subMu.Lock()
	subs := make([]func(domain.Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Snapshot returns the current catalog, loading it on first use and
// reloading it once stale. A failed reload falls back to the stale snapshot.
func (s *CatalogService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	current := s.snapshot
	s.mu.RUnlock()

	if current == nil {
		return s.Load(ctx)
	}
	if s.refresh > 0 && s.now().Sub(current.LoadedAt) >= s.refresh {
		snap, err := s.Load(ctx)
		if err != nil {
			s.logger.Warn("serving stale catalog", zap.Time("loaded_at", current.LoadedAt), zap.Error(err))
			return *current, nil
		}
		return snap, nil
	}
	return *current, nil
}

// Search returns the products matching f along with the visibility flags
func (s *CatalogService) Search(ctx context.Context, f domain.Filter) ([]domain.Product, domain.VisibilityFlags, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, domain.DefaultVisibility(), err
	}
	return FilterProducts(snap.Products, f), snap.Visibility, nil
}

// Categories returns the catalog categories with counts
func (s *CatalogService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CountCategories(snap.Products), nil
}

// Product looks up a product by id
func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range snap.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Visibility returns the flags of the current snapshot
func (s *CatalogService) Visibility(ctx context.Context) (domain.VisibilityFlags, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.DefaultVisibility(), err
	}
	return snap.Visibility, nil
}
