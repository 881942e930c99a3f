package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
)

// ScreenService registers and looks up screens.
type ScreenService interface {
	Register(ctx context.Context, name string) (*domain.Screen, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Screen, error)
}

type screenService struct {
	screens store.ScreenStore
	logger  *slog.Logger
}

// NewScreenService creates a ScreenService.
func NewScreenService(screens store.ScreenStore, log *slog.Logger) (ScreenService, error) {
	if screens == nil {
		return nil, fmt.Errorf("%w: screen store", ErrNilDependency)
	}
	if log == nil {
		log = slog.Default()
	}
	return &screenService{
		screens: screens,
		logger:  log.With(slog.String("component", "screen_service")),
	}, nil
}

func (s *screenService) Register(ctx context.Context, name string) (*domain.Screen, error) {
	screen, err := domain.NewScreen(name)
	if err != nil {
		return nil, err
	}
	if err := s.screens.Create(ctx, screen); err != nil {
		return nil, NewServiceError("screen", "register", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("screen registered",
		slog.String("screen_id", screen.ID.String()))
	return screen, nil
}

func (s *screenService) Get(ctx context.Context, id uuid.UUID) (*domain.Screen, error) {
	screen, err := s.screens.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("screen", "get", err)
	}
	return screen, nil
}
