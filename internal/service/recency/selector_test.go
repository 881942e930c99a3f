package recency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
	"github.com/phrazzld/futureview-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingViewings struct {
	*testutils.MemoryViewingStore
	finds atomic.Int32
}

func (c *countingViewings) FindUnseenCompleted(
	ctx context.Context,
	screenID uuid.UUID,
	since time.Time,
	limit, offset int,
) ([]*domain.FutureViewing, error) {
	c.finds.Add(1)
	return c.MemoryViewingStore.FindUnseenCompleted(ctx, screenID, since, limit, offset)
}

type countingTransactor struct {
	testutils.MemoryTransactor
	runs atomic.Int32
}

func (c *countingTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	c.runs.Add(1)
	return c.MemoryTransactor.RunInTransaction(ctx, fn)
}

type fixture struct {
	mem      *testutils.MemoryStore
	viewings *countingViewings
	tx       *countingTransactor
	selector *Selector
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	f := &fixture{
		mem: testutils.NewMemoryStore(),
		tx:  &countingTransactor{},
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.viewings = &countingViewings{MemoryViewingStore: f.mem.Viewings()}
	f.selector = NewSelector(f.viewings, f.mem.Screens(), f.tx, log, WithClock(func() time.Time { return f.now }))
	return f
}

func reversed(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

func TestSelectAndMark_SecondCallIsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	screen := testutils.MustRegisterScreen(t, f.mem, "lobby")
	completed := testutils.MustInsertCompleted(t, f.mem, 3, f.now.Add(-time.Hour))

	first, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, reversed(testutils.IDs(completed)), testutils.IDs(first), "page is returned oldest first")

	second, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, second)

	for _, fv := range completed {
		assert.True(t, f.mem.HasRecord(fv.ID, screen.ID))
	}
}

func TestSelectAndMark_EmptySelectionWritesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	screen := testutils.MustRegisterScreen(t, f.mem, "")
	testutils.MustInsertViewing(t, f.mem) // pending
	testutils.MustInsertViewing(t, f.mem, testutils.WithViewingStatus(domain.ViewingStatusFailed))

	got, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 0, 0)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, f.tx.runs.Load())
	assert.Zero(t, f.mem.RecordCount())
}

func TestSelectAndMark_ScreensAreIndependent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := testutils.MustRegisterScreen(t, f.mem, "a")
	b := testutils.MustRegisterScreen(t, f.mem, "b")
	completed := testutils.MustInsertCompleted(t, f.mem, 4, f.now)

	var wg sync.WaitGroup
	results := make([][]*domain.FutureViewing, 2)
	for i, screen := range []*domain.Screen{a, b} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			got, err := f.selector.SelectAndMark(context.Background(), id, 1, 20)
			assert.NoError(t, err)
			results[i] = got
		}(i, screen.ID.String())
	}
	wg.Wait()

	want := reversed(testutils.IDs(completed))
	assert.Equal(t, want, testutils.IDs(results[0]))
	assert.Equal(t, want, testutils.IDs(results[1]))
}

func TestSelectAndMark_SamePageAdvancesAfterMarking(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	screen := testutils.MustRegisterScreen(t, f.mem, "wall")
	completed := testutils.MustInsertCompleted(t, f.mem, 5, f.now) // newest first

	first, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 2)
	require.NoError(t, err)
	second, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 2)
	require.NoError(t, err)
	third, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{completed[1].ID, completed[0].ID}, testutils.IDs(first))
	assert.Equal(t, []uuid.UUID{completed[3].ID, completed[2].ID}, testutils.IDs(second),
		"page 1 is not reusable once its items were marked")
	assert.Equal(t, []uuid.UUID{completed[4].ID}, testutils.IDs(third))
}

func TestSelectAndMark_PageOffset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	screen := testutils.MustRegisterScreen(t, f.mem, "wall")
	completed := testutils.MustInsertCompleted(t, f.mem, 5, f.now)

	got, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 2, 2)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{completed[3].ID, completed[2].ID}, testutils.IDs(got))
	assert.False(t, f.mem.HasRecord(completed[0].ID, screen.ID), "earlier pages are not marked")
}

func TestSelectAndMark_RecencyWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	screen := testutils.MustRegisterScreen(t, f.mem, "wall")
	stale := testutils.MustInsertViewing(t, f.mem,
		testutils.WithViewingStatus(domain.ViewingStatusCompleted),
		testutils.WithViewingCreatedAt(f.now.Add(-25*time.Hour)))
	fresh := testutils.MustInsertViewing(t, f.mem,
		testutils.WithViewingStatus(domain.ViewingStatusCompleted),
		testutils.WithViewingCreatedAt(f.now.Add(-23*time.Hour)))

	got, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 20)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fresh.ID}, testutils.IDs(got))
	assert.False(t, f.mem.HasRecord(stale.ID, screen.ID))
}

func TestSelectAndMark_ConcurrentSameScreenNeverRepeats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	screen := testutils.MustRegisterScreen(t, f.mem, "wall")
	testutils.MustInsertCompleted(t, f.mem, 10, f.now)

	const callers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uuid.UUID]int)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.selector.SelectAndMark(context.Background(), screen.ID.String(), 1, 3)
			if err != nil {
				assert.ErrorIs(t, err, ErrConcurrentMarkConflict)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, fv := range got {
				seen[fv.ID]++
			}
		}()
	}
	wg.Wait()

	for id, n := range seen {
		assert.Equal(t, 1, n, "viewing %s returned %d times to the same screen", id, n)
	}
	assert.Equal(t, len(seen), f.mem.RecordCount())
}

func TestSelectAndMark_Errors(t *testing.T) {
	t.Parallel()

	t.Run("malformed screen id runs no query", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		for _, id := range []string{"", "not-a-uuid", uuid.Nil.String()} {
			_, err := f.selector.SelectAndMark(context.Background(), id, 1, 20)
			assert.ErrorIs(t, err, ErrInvalidScreenReference)
		}
		assert.Zero(t, f.viewings.finds.Load())
	})

	t.Run("unknown screen", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.selector.SelectAndMark(context.Background(), uuid.NewString(), 1, 20)
		assert.ErrorIs(t, err, store.ErrScreenNotFound)
	})

	t.Run("record failure is not a conflict", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		screen := testutils.MustRegisterScreen(t, f.mem, "x")
		testutils.MustInsertCompleted(t, f.mem, 1, f.now)
		boom := errors.New("connection lost")
		log, _ := logger.NewTestLogger(t)
		sel := NewSelector(f.viewings, f.mem.Screens(), failingTransactor{err: boom}, log,
			WithClock(func() time.Time { return f.now }))

		_, err := sel.SelectAndMark(context.Background(), screen.ID.String(), 1, 20)

		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrConcurrentMarkConflict)
	})
}

type failingTransactor struct{ err error }

func (f failingTransactor) RunInTransaction(context.Context, store.TxFn) error { return f.err }
