package artifact

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyArtifact is returned when Save is called without data.
var ErrEmptyArtifact = errors.New("artifact data cannot be empty")

// Store persists generated images.
type Store interface {
	// Save writes the image for the given viewing and returns the reference
	// (a URL or path) clients use to fetch it.
	Save(ctx context.Context, viewingID uuid.UUID, data []byte) (string, error)
}

// FileName is the object name used for a viewing's image.
func FileName(viewingID uuid.UUID) string {
	return viewingID.String() + ".png"
}
