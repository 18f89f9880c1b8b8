package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"insights/internal/catalog/domain"
	"insights/internal/catalog/infrastructure"
	"insights/internal/events"
	shareddomain "insights/internal/shared/domain"
	"insights/internal/testhelpers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

type fixture struct {
	store     *infrastructure.MemoryProductStore
	publisher *recordingPublisher
	cache     *countingInvalidator
	service   *CatalogService
}

func setup(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		store:     infrastructure.NewMemoryProductStore(testhelpers.Catalog()...),
		publisher: &recordingPublisher{},
		cache:     &countingInvalidator{},
	}
	f.service = NewCatalogService(f.store, f.publisher, f.cache, zap.NewNop())
	return f
}

func TestListProducts(t *testing.T) {
	f := setup(t)
	page, _ := shareddomain.NewPageRequest(1, 3, 0)

	got, err := f.service.ListProducts(context.Background(), page)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if got.TotalCount != 4 || len(got.Products) != 3 {
		t.Fatalf("total=%d len=%d, want 4 and 3", got.TotalCount, len(got.Products))
	}
	p1 := got.Products[0]
	if v, _ := p1.ActualPrice.Get(); v != 1099 {
		t.Errorf("actual_price = %v, want 1099", v)
	}
	if len(p1.Reviews) != 2 || p1.Reviews[0].HelpfulCount != 3 {
		t.Errorf("unexpected reviews %+v", p1.Reviews)
	}
	if got.Products[1].Rating.Valid() {
		t.Error("sentinel rating must be null")
	}
	// listes désalignées: deux avis seulement
	if len(got.Products[2].Reviews) != 2 {
		t.Errorf("got %d reviews for mismatched lists, want 2", len(got.Products[2].Reviews))
	}

	second, _ := shareddomain.NewPageRequest(2, 3, 0)
	rest, err := f.service.ListProducts(context.Background(), second)
	if err != nil || len(rest.Products) != 1 || rest.Products[0].ProductID != "p4" {
		t.Errorf("second page = %+v, %v", rest.Products, err)
	}
}

func TestVoteHelpful(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	review, err := f.service.VoteHelpful(ctx, "p1", "r1")
	if err != nil {
		t.Fatalf("VoteHelpful: %v", err)
	}
	if review.HelpfulCount != 4 || review.ReviewID != "r1" {
		t.Errorf("unexpected review %+v", review)
	}

	raws, _ := f.store.Find(ctx, infrastructure.ByID("p1"))
	if raws[0].Reviews.HelpfulCount != "4,0" {
		t.Errorf("stored helpful_count = %q, want 4,0", raws[0].Reviews.HelpfulCount)
	}
	if f.cache.calls != 1 {
		t.Errorf("cache invalidated %d times, want 1", f.cache.calls)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Helpful != 4 || f.publisher.events[0].Type != events.TypeHelpfulVoted {
		t.Errorf("unexpected events %+v", f.publisher.events)
	}
}

func TestVoteHelpful_DefaultsMissingCounts(t *testing.T) {
	f := setup(t)

	review, err := f.service.VoteHelpful(context.Background(), "p2", "r3")
	if err != nil {
		t.Fatalf("VoteHelpful: %v", err)
	}
	if review.HelpfulCount != 1 {
		t.Errorf("helpful_count = %d, want 1", review.HelpfulCount)
	}
}

func TestVoteHelpful_NotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.service.VoteHelpful(ctx, "missing", "r1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown product error = %v, want ErrNotFound", err)
	}
	if _, err := f.service.VoteHelpful(ctx, "p1", "r9"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown review error = %v, want ErrNotFound", err)
	}
	if f.cache.calls != 0 || len(f.publisher.events) != 0 {
		t.Error("failed votes must not invalidate or publish")
	}
}

func TestVoteHelpful_PublishFailureKeepsWrite(t *testing.T) {
	f := setup(t)
	f.publisher.err = errors.New("broker down")

	if _, err := f.service.VoteHelpful(context.Background(), "p1", "r2"); err != nil {
		t.Fatalf("VoteHelpful: %v", err)
	}
	raws, _ := f.store.Find(context.Background(), infrastructure.ByID("p1"))
	if raws[0].Reviews.HelpfulCount != "3,1" {
		t.Errorf("stored helpful_count = %q, want 3,1", raws[0].Reviews.HelpfulCount)
	}
}

// racingStore retient les deux premières lectures jusqu'à ce que les deux votants
// aient lu le produit, ce qui force deux écritures fondées sur la même valeur
type racingStore struct {
	*infrastructure.MemoryProductStore
	reads   atomic.Int32
	barrier sync.WaitGroup
}

func (s *racingStore) Find(ctx context.Context, f infrastructure.Filter) ([]domain.RawProduct, error) {
	products, err := s.MemoryProductStore.Find(ctx, f)
	if s.reads.Add(1) <= 2 {
		s.barrier.Done()
		s.barrier.Wait()
	}
	return products, err
}

func TestVoteHelpful_ConcurrentVotesAreNotLost(t *testing.T) {
	store := &racingStore{MemoryProductStore: infrastructure.NewMemoryProductStore(testhelpers.Catalog()...)}
	store.barrier.Add(2)
	cache := &countingInvalidator{}
	service := NewCatalogService(store, &recordingPublisher{}, cache, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]int64, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			review, err := service.VoteHelpful(context.Background(), "p1", "r1")
			results[i], errs[i] = review.HelpfulCount, err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("voter %d: %v", i, err)
		}
	}
	raws, _ := store.MemoryProductStore.Find(context.Background(), infrastructure.ByID("p1"))
	if raws[0].Reviews.HelpfulCount != "5,0" {
		t.Errorf("stored helpful_count = %q, want 5,0", raws[0].Reviews.HelpfulCount)
	}
	if results[0]+results[1] != 9 {
		t.Errorf("returned counts %v, want 4 and 5", results)
	}
	if store.reads.Load() != 3 {
		t.Errorf("reads = %d, want 3 (one retry)", store.reads.Load())
	}
	if cache.calls != 2 {
		t.Errorf("cache invalidated %d times, want 2", cache.calls)
	}
}

type conflictingStore struct {
	*infrastructure.MemoryProductStore
	updates int
}

func (s *conflictingStore) UpdateOne(context.Context, domain.ProductID, map[domain.Field]string, map[domain.Field]string) error {
	s.updates++
	return domain.ErrConflict
}

func TestVoteHelpful_GivesUpAfterRepeatedConflicts(t *testing.T) {
	store := &conflictingStore{MemoryProductStore: infrastructure.NewMemoryProductStore(testhelpers.Catalog()...)}
	cache := &countingInvalidator{}
	publisher := &recordingPublisher{}
	service := NewCatalogService(store, publisher, cache, zap.NewNop())

	_, err := service.VoteHelpful(context.Background(), "p1", "r1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if store.updates != maxVoteAttempts {
		t.Errorf("updates = %d, want %d", store.updates, maxVoteAttempts)
	}
	if cache.calls != 0 || len(publisher.events) != 0 {
		t.Error("a rejected vote must not invalidate or publish")
	}
}
