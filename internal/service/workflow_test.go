package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/futureview-api/internal/artifact"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/generation"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/service"
	"github.com/phrazzld/futureview-api/internal/service/recency"
	"github.com/phrazzld/futureview-api/internal/task"
	"github.com/phrazzld/futureview-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	mem     *testutils.MemoryStore
	viewing service.FutureViewingService
	screens service.ScreenService
	prompts chan domain.GenerationParams
}

// startApp wires the in-memory store, queue and worker the same way serve does.
func startApp(t *testing.T, image []byte) *app {
	t.Helper()
	log, _ := logger.NewTestLogger(t)

	a := &app{mem: testutils.NewMemoryStore(), prompts: make(chan domain.GenerationParams, 8)}
	queue := task.NewQueue()
	enq, err := task.NewEnqueuer(queue, log)
	require.NoError(t, err)

	gen := generation.GeneratorFunc(func(_ context.Context, p domain.GenerationParams) ([]byte, error) {
		a.prompts <- p
		return image, nil
	})
	cfg := task.DefaultWorkerConfig()
	cfg.Backoff = 10 * time.Millisecond
	worker, err := task.NewWorker(queue, a.mem.Viewings(), gen,
		artifact.NewLocalStore(t.TempDir(), "/static/images", log), cfg, log)
	require.NoError(t, err)

	sel := recency.NewSelector(a.mem.Viewings(), a.mem.Screens(), testutils.MemoryTransactor{}, log)
	a.viewing, err = service.NewFutureViewingService(a.mem.Viewings(), testutils.MemoryTransactor{}, enq, sel, log)
	require.NoError(t, err)
	a.screens, err = service.NewScreenService(a.mem.Screens(), log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return a
}

func (a *app) awaitTerminal(t *testing.T, fv *domain.FutureViewing) *domain.FutureViewing {
	t.Helper()
	var got *domain.FutureViewing
	require.Eventually(t, func() bool {
		var err error
		got, err = a.viewing.Get(context.Background(), fv.ID)
		return err == nil && got.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestWorkflow_SubmitToCompleted(t *testing.T) {
	t.Parallel()
	a := startApp(t, []byte("\x89PNG"))

	fv, err := a.viewing.Submit(context.Background(), domain.GenerationParams{Name: "Ana", Age: 30, Content: "a garden"})
	require.NoError(t, err)
	assert.Equal(t, domain.ViewingStatusPending, fv.Status)

	got := a.awaitTerminal(t, fv)
	assert.Equal(t, domain.ViewingStatusCompleted, got.Status)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, domain.GenerationParams{Name: "Ana", Age: 30, Content: "a garden"}, <-a.prompts)

	screen, err := a.screens.Register(context.Background(), "lobby")
	require.NoError(t, err)
	recent, err := a.viewing.ListRecent(context.Background(), screen.ID.String(), 1, 20)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, fv.ID, recent[0].ID)

	again, err := a.viewing.ListRecent(context.Background(), screen.ID.String(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestWorkflow_SubmitToFailedOnNoResult(t *testing.T) {
	t.Parallel()
	a := startApp(t, nil)

	fv, err := a.viewing.Submit(context.Background(), domain.GenerationParams{Name: "Ana", Age: 30, Content: "a garden"})
	require.NoError(t, err)

	got := a.awaitTerminal(t, fv)
	assert.Equal(t, domain.ViewingStatusFailed, got.Status)
	assert.Nil(t, got.ImageURL)
}
