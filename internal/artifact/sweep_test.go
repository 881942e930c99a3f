package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAged(t *testing.T, dir, name string, now time.Time, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	mtime := now.Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestSweep_DeletesOnlyFilesOlderThanThreshold(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()

	old := writeAged(t, dir, "old.png", now, 20*day)
	edge := writeAged(t, dir, "edge.png", now, 14*day+time.Hour) // 14 whole days is not greater than 14
	justOver := writeAged(t, dir, "over.png", now, 15*day+time.Minute)
	fresh := writeAged(t, dir, "fresh.png", now, time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	result := sweep(context.Background(), dir, 14, now)

	assert.Equal(t, SweepResult{Deleted: 2, Errors: 0}, result)
	assert.NoFileExists(t, old)
	assert.NoFileExists(t, justOver)
	assert.FileExists(t, edge)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestSweep_MissingDirectory(t *testing.T) {
	t.Parallel()

	result := Sweep(context.Background(), filepath.Join(t.TempDir(), "absent"), DefaultMaxAgeDays)

	assert.Equal(t, SweepResult{}, result)
}

func TestSweep_ZeroThreshold(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	writeAged(t, dir, "yesterday.png", now, day+time.Minute)
	writeAged(t, dir, "today.png", now, time.Minute)

	result := sweep(context.Background(), dir, 0, now)

	assert.Equal(t, 1, result.Deleted)
}

func TestSweeper_RunSweepsImmediatelyAndStops(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := writeAged(t, dir, "old.png", time.Now(), 30*day)

	ctx, cancel := context.WithCancel(context.Background())
	s := NewSweeper(dir, 14, time.Hour, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(old)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
