package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finsight/pkg/config"
	"finsight/services/post/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/sync/errgroup"
)

// counterRepo is an in-memory view counter. Every GetViews call blocks
// until `readers` callers have read, which lines up concurrent bumps.
type counterRepo struct {
	persistent.PostRepository

	mu      sync.Mutex
	views   int
	readers sync.WaitGroup
}

func newCounterRepo(start, readers int) *counterRepo {
	r := &counterRepo{views: start}
	r.readers.Add(readers)
	return r
}

func (r *counterRepo) GetViews(ctx context.Context, slug string) (int, error) {
	r.mu.Lock()
	v := r.views
	r.mu.Unlock()

	r.readers.Done()
	r.readers.Wait()
	return v, nil
}

func (r *counterRepo) SetViews(ctx context.Context, slug string, views int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = views
	return nil
}

func (r *counterRepo) IncrementViews(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views++
	return nil
}

func (r *counterRepo) current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views
}

func bumpConcurrently(t *testing.T, vc *ViewCounter, slug string, n int) {
	t.Helper()
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			vc.Bump(ctx, slug)
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}

func TestViewCounter_ReadWriteLosesConcurrentUpdate(t *testing.T) {
	repo := newCounterRepo(10, 2)
	vc := NewViewCounter(repo, config.ViewCounterReadWrite, testLogger())

	bumpConcurrently(t, vc, "post-a", 2)

	// Both bumps read 10 before either writes, so one increment is lost.
	assert.Equal(t, 11, repo.current())
}

func TestViewCounter_AtomicKeepsEveryUpdate(t *testing.T) {
	repo := newCounterRepo(10, 0)
	vc := NewViewCounter(repo, config.ViewCounterAtomic, testLogger())

	bumpConcurrently(t, vc, "post-a", 2)

	assert.Equal(t, 12, repo.current())
}

func TestViewCounter_UnknownModeFallsBackToReadWrite(t *testing.T) {
	vc := NewViewCounter(new(MockPostRepository), "bogus", testLogger())
	assert.Equal(t, config.ViewCounterReadWrite, vc.Mode())
}

func TestViewCounter_ReadFailureCountsFromZero(t *testing.T) {
	repo := new(MockPostRepository)
	vc := NewViewCounter(repo, config.ViewCounterReadWrite, testLogger())

	repo.On("GetViews", mock.Anything, "post-a").Return(0, errors.New("connection reset"))
	repo.On("SetViews", mock.Anything, "post-a", 1).Return(nil)

	vc.Bump(context.Background(), "post-a")

	repo.AssertExpectations(t)
}

func TestViewCounter_WriteFailureIsSwallowed(t *testing.T) {
	repo := new(MockPostRepository)
	vc := NewViewCounter(repo, config.ViewCounterReadWrite, testLogger())

	repo.On("GetViews", mock.Anything, "post-a").Return(41, nil)
	repo.On("SetViews", mock.Anything, "post-a", 42).Return(errors.New("read-only transaction"))

	assert.NotPanics(t, func() { vc.Bump(context.Background(), "post-a") })
	repo.AssertExpectations(t)
}

func TestViewCounter_AtomicFailureIsSwallowed(t *testing.T) {
	repo := new(MockPostRepository)
	vc := NewViewCounter(repo, config.ViewCounterAtomic, testLogger())

	repo.On("IncrementViews", mock.Anything, "post-a").Return(errors.New("timeout"))

	vc.Bump(context.Background(), "post-a")

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetViews", mock.Anything, mock.Anything)
}
