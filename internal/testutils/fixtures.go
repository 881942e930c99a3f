package testutils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// ViewingOption customizes a viewing created by NewViewingForTest.
type ViewingOption func(*domain.FutureViewing)

// WithViewingStatus sets the status. COMPLETED viewings get an image URL.
func WithViewingStatus(status domain.ViewingStatus) ViewingOption {
	return func(fv *domain.FutureViewing) {
		fv.Status = status
		if status == domain.ViewingStatusCompleted && fv.ImageURL == nil {
			url := "/static/images/" + fv.ID.String() + ".png"
			fv.ImageURL = &url
		}
	}
}

// WithViewingCreatedAt sets the creation time.
func WithViewingCreatedAt(t time.Time) ViewingOption {
	return func(fv *domain.FutureViewing) {
		fv.CreatedAt = t.UTC()
	}
}

// WithViewingParams sets the generation parameters.
func WithViewingParams(p domain.GenerationParams) ViewingOption {
	return func(fv *domain.FutureViewing) {
		fv.Name, fv.Age, fv.Content = p.Name, p.Age, p.Content
	}
}

// NewViewingForTest builds a valid PENDING viewing with default parameters.
func NewViewingForTest(t *testing.T, opts ...ViewingOption) *domain.FutureViewing {
	t.Helper()
	fv, err := domain.NewFutureViewing(domain.GenerationParams{
		Name:    "Ana",
		Age:     30,
		Content: "a garden",
	})
	require.NoError(t, err)
	for _, opt := range opts {
		opt(fv)
	}
	return fv
}

// MustInsertViewing builds a viewing and seeds it into m.
func MustInsertViewing(t *testing.T, m *MemoryStore, opts ...ViewingOption) *domain.FutureViewing {
	t.Helper()
	fv := NewViewingForTest(t, opts...)
	m.Put(fv)
	return fv
}

// MustInsertCompleted seeds n COMPLETED viewings, one minute apart, the newest
// created at base. They are returned newest first.
func MustInsertCompleted(t *testing.T, m *MemoryStore, n int, base time.Time) []*domain.FutureViewing {
	t.Helper()
	out := make([]*domain.FutureViewing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, MustInsertViewing(t, m,
			WithViewingStatus(domain.ViewingStatusCompleted),
			WithViewingCreatedAt(base.Add(-time.Duration(i)*time.Minute))))
	}
	return out
}

// MustRegisterScreen seeds a screen into m.
func MustRegisterScreen(t *testing.T, m *MemoryStore, name string) *domain.Screen {
	t.Helper()
	s, err := domain.NewScreen(name)
	require.NoError(t, err)
	require.NoError(t, m.Screens().Create(t.Context(), s))
	return s
}

// IDs extracts the viewing IDs in order.
func IDs(viewings []*domain.FutureViewing) []uuid.UUID {
	ids := make([]uuid.UUID, len(viewings))
	for i, fv := range viewings {
		ids[i] = fv.ID
	}
	return ids
}
