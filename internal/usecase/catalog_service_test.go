package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taabalselect/storefront/internal/domain"
)

// MockFeedSource is a mock implementation of domain.FeedSource
type MockFeedSource struct {
	mu     sync.Mutex
	text   string
	err    error
	called int
}

func NewMockFeedSource(lines ...string) *MockFeedSource {
	return &MockFeedSource{text: strings.Join(lines, "\n")}
}

func (m *MockFeedSource) Fetch(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *MockFeedSource) set(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.err = err
}

func (m *MockFeedSource) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.called
}

var sampleFeed = []string{
	"TRUE,TRUE,TRUE,FALSO",
	"ID,Nombre,Categoría,Precio",
	"A1,Café,Bebidas,50",
	"A2,Té,Bebidas,30",
	"B1,Chiles,Enlatados,20",
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCatalogService(source domain.FeedSource, refresh time.Duration) (*CatalogService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewCatalogService(source, CatalogServiceConfig{RefreshInterval: refresh}, nil)
	svc.now = clock.Now
	return svc, clock
}

func TestCatalogService_Load(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, clock := newTestCatalogService(source, 0)

	snap, err := svc.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, snap.Products, 3)
	assert.False(t, snap.Visibility.ShowPrice)
	assert.Equal(t, clock.Now(), snap.LoadedAt)
}

func TestCatalogService_LoadFailureKeepsPrevious(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, _ := newTestCatalogService(source, 0)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	transportErr := &domain.TransportError{StatusCode: 503, URL: "https://feed"}
	source.set("", transportErr)

	_, err = svc.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Products, 3, "previous snapshot stays in place")
}

func TestCatalogService_SnapshotLoadsLazily(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, _ := newTestCatalogService(source, 0)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls())
}

func TestCatalogService_SnapshotInitialFailure(t *testing.T) {
	source := NewMockFeedSource()
	source.set("", &domain.TransportError{URL: "https://feed", Err: errors.New("dial tcp: refused")})
	svc, _ := newTestCatalogService(source, 0)

	_, err := svc.Snapshot(context.Background())

	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
}

func TestCatalogService_StaleRefresh(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, clock := newTestCatalogService(source, time.Minute)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls(), "fresh snapshot is served without fetching")

	source.set(strings.Join(sampleFeed[:3], "\n"), nil)
	clock.Advance(time.Minute)
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls())
	assert.Len(t, snap.Products, 1)
}

func TestCatalogService_StaleFallback(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, clock := newTestCatalogService(source, time.Minute)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	source.set("", &domain.TransportError{StatusCode: 500, URL: "https://feed"})
	clock.Advance(2 * time.Minute)

	snap, err := svc.Snapshot(context.Background())

	require.NoError(t, err)
	assert.Len(t, snap.Products, 3)
}

func TestCatalogService_Subscribe(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, _ := newTestCatalogService(source, 0)

	var got []int
	svc.Subscribe(func(s domain.Snapshot) { got = append(got, len(s.Products)) })

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	source.set("", errors.New("boom"))
	_, _ = svc.Load(context.Background())

	assert.Equal(t, []int{3}, got, "failed loads do not notify")
}

func TestCatalogService_Search(t *testing.T) {
	svc, _ := newTestCatalogService(NewMockFeedSource(sampleFeed...), 0)

	products, vis, err := svc.Search(context.Background(), domain.Filter{Query: "cafe"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "A1", products[0].ID)
	assert.False(t, vis.ShowPrice)
}

func TestCatalogService_Categories(t *testing.T) {
	svc, _ := newTestCatalogService(NewMockFeedSource(sampleFeed...), 0)

	cats, err := svc.Categories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryCount{
		{Name: "Bebidas", Count: 2},
		{Name: "Enlatados", Count: 1},
	}, cats)
}

func TestCatalogService_Product(t *testing.T) {
	svc, _ := newTestCatalogService(NewMockFeedSource(sampleFeed...), 0)

	p, err := svc.Product(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, "Chiles", p.Name)
	assert.Equal(t, 20.0, p.Price)

	_, err = svc.Product(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogService_ConcurrentLoads(t *testing.T) {
	source := NewMockFeedSource(sampleFeed...)
	svc, _ := newTestCatalogService(source, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Snapshot(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, source.calls(), 1)
}

// gatedFeedSource blocks the first fetch until released and fails it if
// the fetch context was cancelled meanwhile
type gatedFeedSource struct {
	text    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedFeedSource(lines ...string) *gatedFeedSource {
	return &gatedFeedSource{
		text:    strings.Join(lines, "\n"),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedFeedSource) Fetch(ctx context.Context) (string, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		<-g.release
	}
	if err := ctx.Err(); err != nil {
		return "", &domain.TransportError{URL: "gated", Err: err}
	}
	return g.text, nil
}

func TestCatalogService_CallerCancelDoesNotAbortSharedLoad(t *testing.T) {
	source := newGatedFeedSource(sampleFeed...)
	svc, _ := newTestCatalogService(source, 0)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Load(ctxA)
		errA <- err
	}()
	<-source.started

	type result struct {
		snap domain.Snapshot
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		snap, err := svc.Load(context.Background())
		resB <- result{snap, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(source.release)

	b := <-resB
	require.NoError(t, b.err)
	assert.Len(t, b.snap.Products, 3)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Products, 3, "the detached load installs its result")
}

func TestCatalogService_LoadTimeoutDefault(t *testing.T) {
	svc := NewCatalogService(NewMockFeedSource(), CatalogServiceConfig{}, nil)
	assert.Equal(t, DefaultLoadTimeout, svc.timeout)

	svc = NewCatalogService(NewMockFeedSource(), CatalogServiceConfig{LoadTimeout: time.Second}, nil)
	assert.Equal(t, time.Second, svc.timeout)
}
