// Package cart holds the shopping cart: line items keyed by product id,
// persisted to a KeyValueStore with debounced writes.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/textutil"
)

// Defaults for Options
const (
	DefaultKey              = "taabal-select:cart:v1"
	DefaultPersistDelay     = 120 * time.Millisecond
	DefaultPlaceholderImage = "/assets/images/imagen-prueba.webp"

	writeTimeout = 5 * time.Second
)

// Options configures a Store
type Options struct {
	Key              string
	PersistDelay     time.Duration
	PlaceholderImage string
	Logger           *zap.Logger
}

// Store is the cart. Mutations apply immediately; persistence trails them
// by PersistDelay and bursts of mutations coalesce into one write of the
// latest state. A storage failure switches the store to memory-only for the
// rest of its life.
type Store struct {
	kv          domain.KeyValueStore
	key         string
	delay       time.Duration
	placeholder string
	logger      *zap.Logger

	mu       sync.Mutex
	items    map[string]*domain.LineItem
	order    []string
	timer    *time.Timer
	pending  bool
	degraded bool
	closed   bool

	// writeMu orders snapshots and writes so an older state never lands last
	writeMu sync.Mutex
}

var _ domain.CartStore = (*Store)(nil)

// New builds a store and loads any saved cart. It never fails: a missing
// or corrupt record is an empty cart, and an unreadable store leaves the
// cart memory-only.
func New(ctx context.Context, kv domain.KeyValueStore, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.PersistDelay <= 0 {
		opts.PersistDelay = DefaultPersistDelay
	}
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = DefaultPlaceholderImage
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Store{
		kv:          kv,
		key:         opts.Key,
		delay:       opts.PersistDelay,
		placeholder: opts.PlaceholderImage,
		logger:      opts.Logger.Named("cart"),
		items:       make(map[string]*domain.LineItem),
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	if s.kv == nil {
		s.degraded = true
		return
	}

	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return
	}
	if err != nil {
		s.degraded = true
		s.logger.Warn("cart storage unreadable, running memory-only", zap.String("key", s.key), zap.Error(err))
		return
	}

	items, order, err := decodeItems(data)
	if err != nil {
		s.logger.Warn("discarding corrupt cart record", zap.String("key", s.key), zap.Error(err))
		return
	}
	s.items, s.order = items, order
	s.logger.Debug("cart restored", zap.Int("items", len(order)))
}

// Add puts qty of product in the cart. An existing line keeps its cached
// name, price and image and only gains quantity.
func (s *Store) Add(product domain.Product, qty int) {
	q := textutil.ClampQty(qty)

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.items[product.ID]; ok {
		cur.Qty = textutil.ClampQty(addCapped(cur.Qty, q))
	} else {
		image := product.Image
		if image == "" {
			image = s.placeholder
		}
		s.items[product.ID] = &domain.LineItem{
			ID:    product.ID,
			Name:  product.Name,
			Price: product.Price,
			Image: image,
			Qty:   q,
		}
		s.order = append(s.order, product.ID)
	}
	s.scheduleLocked()
}

// Remove deletes the line for id if present
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.scheduleLocked()
}

// SetQty overwrites the quantity of an existing line, clamped to at least 1.
// It reports whether the line exists.
func (s *Store) SetQty(id string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return false
	}
	it.Qty = textutil.ClampQty(qty)
	s.scheduleLocked()
	return true
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*domain.LineItem)
	s.order = nil
	s.scheduleLocked()
}

// Count is the total quantity across lines
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range s.order {
		n = addCapped(n, s.items[id].Qty)
	}
	return n
}

// Subtotal is the sum of qty × price
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, id := range s.order {
		it := s.items[id]
		total += float64(it.Qty) * it.Price
	}
	return total
}

// List returns a copy of the lines in insertion order
func (s *Store) List() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Get returns the line for id
func (s *Store) Get(id string) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.LineItem{}, false
	}
	return *it, true
}

// Degraded reports whether the cart has fallen back to memory-only
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func addCapped(a, b int) int {
	if a > textutil.MaxQty-b {
		return textutil.MaxQty
	}
	return a + b
}
