package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
)

// LocalStore writes images to a directory that is served as static files.
type LocalStore struct {
	dir       string
	urlPrefix string
	logger    *slog.Logger
}

// Ensure LocalStore implements Store
var _ Store = (*LocalStore)(nil)

// NewLocalStore returns a store writing <dir>/<id>.png and returning
// <urlPrefix>/<id>.png as the reference.
func NewLocalStore(dir, urlPrefix string, log *slog.Logger) *LocalStore {
	if log == nil {
		log = slog.Default()
	}
	return &LocalStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		logger:    log.With(slog.String("component", "local_artifact_store")),
	}
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save implements Store. The file is written under a temporary name and
// renamed so readers never observe a partial image.
func (s *LocalStore) Save(ctx context.Context, viewingID uuid.UUID, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyArtifact
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory %s: %w", s.dir, err)
	}

	name := FileName(viewingID)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to set artifact permissions: %w", err)
	}

	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}

	ref := s.urlPrefix + "/" + name
	logger.FromContextOrDefault(ctx, s.logger).Debug("artifact saved",
		slog.String("viewing_id", viewingID.String()),
		slog.String("path", final),
		slog.Int("bytes", len(data)))
	return ref, nil
}
