package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/futureview-api/internal/config"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/generation"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"google.golang.org/genai"
)

// imageModel is the subset of *genai.Models used by the generator.
type imageModel interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// ImageGenerator implements generation.Generator using an Imagen model.
type ImageGenerator struct {
	logger  *slog.Logger
	models  imageModel
	model   string
	prompts *generation.PromptBuilder
	timeout time.Duration
}

// Ensure ImageGenerator implements generation.Generator
var _ generation.Generator = (*ImageGenerator)(nil)

// NewImageGenerator creates a generator backed by the Gemini API.
//
// The prompt template comes from cfg.PromptTemplatePath, or the built-in
// template when the path is empty.
func NewImageGenerator(ctx context.Context, logger *slog.Logger, cfg config.GenerationConfig) (*ImageGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create genai client: %v", generation.ErrInvalidConfig, err)
	}

	return newImageGenerator(logger, client.Models, cfg)
}

func newImageGenerator(log *slog.Logger, models imageModel, cfg config.GenerationConfig) (*ImageGenerator, error) {
	if log == nil {
		return nil, ErrNilLogger
	}
	if models == nil {
		return nil, fmt.Errorf("%w: image model client cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	prompts, err := generation.NewPromptBuilderFromFile(cfg.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}

	return &ImageGenerator{
		logger:  log.With(slog.String("component", "gemini_image_generator")),
		models:  models,
		model:   cfg.ModelName,
		prompts: prompts,
		timeout: cfg.RequestTimeout(),
	}, nil
}

// GenerateImage implements generation.Generator.
func (g *ImageGenerator) GenerateImage(ctx context.Context, params domain.GenerationParams) ([]byte, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := g.prompts.Build(params)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateImages(ctx, g.model, prompt, nil)
	if err != nil {
		log.Warn("image generation call failed",
			slog.String("model", g.model),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", generation.ErrProviderUnavailable, err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		log.Info("provider returned no images", slog.String("model", g.model))
		return nil, nil
	}

	for _, img := range resp.GeneratedImages {
		if img == nil {
			continue
		}
		if img.RAIFilteredReason != "" {
			log.Info("image filtered by provider",
				slog.String("model", g.model),
				slog.String("reason", img.RAIFilteredReason))
			continue
		}
		if img.Image == nil || len(img.Image.ImageBytes) == 0 {
			log.Warn("skipping provider image", slog.String("error", ErrEmptyImage.Error()))
			continue
		}

		log.Debug("image generated",
			slog.String("model", g.model),
			slog.Int("bytes", len(img.Image.ImageBytes)),
			slog.Duration("elapsed", time.Since(start)))
		return img.Image.ImageBytes, nil
	}

	return nil, nil
}
