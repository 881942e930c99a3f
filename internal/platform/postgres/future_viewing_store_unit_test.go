package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockFutureViewingStore(t *testing.T) (*PostgresFutureViewingStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresFutureViewingStore(db, nil), mock
}

var viewingRowColumns = []string{"id", "name", "age", "content", "status", "image_url", "created_at"}

func TestFutureViewingStore_Create(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	fv, err := domain.NewFutureViewing(domain.GenerationParams{Name: "Ana", Age: 30, Content: "a garden"})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO future_viewings").
		WithArgs(fv.ID, "Ana", 30, "a garden", "PENDING", nil, fv.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), fv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_CreateInvalid(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	err := s.Create(context.Background(), &domain.FutureViewing{ID: uuid.New(), Status: domain.ViewingStatusPending})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet(), "no statement should run for an invalid viewing")
}

func TestFutureViewingStore_GetByID(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	id := uuid.New()
	created := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery("SELECT (.+) FROM future_viewings WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(viewingRowColumns).
			AddRow(id.String(), "Ana", 30, "a garden", "COMPLETED", "/static/images/x.png", created))

	fv, err := s.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, fv.ID)
	assert.Equal(t, domain.ViewingStatusCompleted, fv.Status)
	require.NotNil(t, fv.ImageURL)
	assert.Equal(t, "/static/images/x.png", *fv.ImageURL)
	assert.Equal(t, created, fv.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_GetByIDNotFound(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM future_viewings WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(viewingRowColumns))

	fv, err := s.GetByID(context.Background(), id)

	assert.Nil(t, fv)
	assert.ErrorIs(t, err, store.ErrFutureViewingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_MarkCompleted(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE future_viewings\\s+SET status = 'COMPLETED'").
		WithArgs(id, "/static/images/a.png").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.MarkCompleted(context.Background(), id, "/static/images/a.png"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_MarkCompletedAlreadyFinalized(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE future_viewings").
		WithArgs(id, "/static/images/a.png").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM future_viewings").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("FAILED"))

	err := s.MarkCompleted(context.Background(), id, "/static/images/a.png")

	assert.ErrorIs(t, err, store.ErrAlreadyFinalized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_MarkFailedNotFound(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE future_viewings\\s+SET status = 'FAILED'").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM future_viewings").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	err := s.MarkFailed(context.Background(), id)

	assert.ErrorIs(t, err, store.ErrFutureViewingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_FindUnseenCompleted(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	screenID := uuid.New()
	since := time.Now().Add(-24 * time.Hour)
	newer, older := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("NOT EXISTS").
		WithArgs(screenID, since, 2, 0).
		WillReturnRows(sqlmock.NewRows(viewingRowColumns).
			AddRow(newer.String(), "B", 40, "a city", "COMPLETED", "/b.png", now).
			AddRow(older.String(), "A", 30, "a garden", "COMPLETED", "/a.png", now.Add(-time.Hour)))

	got, err := s.FindUnseenCompleted(context.Background(), screenID, since, 2, 0)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0].ID)
	assert.Equal(t, older, got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFutureViewingStore_ListEmpty(t *testing.T) {
	t.Parallel()
	s, mock := newMockFutureViewingStore(t)

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(20, 40).
		WillReturnRows(sqlmock.NewRows(viewingRowColumns))

	got, err := s.List(context.Background(), 20, 40)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
