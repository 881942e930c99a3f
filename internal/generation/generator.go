package generation

import (
	"context"

	"github.com/phrazzld/futureview-api/internal/domain"
)

// Generator is the boundary between the application core and the external
// image generation service.
type Generator interface {
	// GenerateImage renders an image for the given parameters.
	//
	// Returns:
	//   - the encoded image bytes when the provider produced one
	//   - nil bytes and a nil error when the provider completed without a
	//     usable image (for example it was filtered)
	//   - an error wrapping ErrProviderUnavailable when the provider could not
	//     be reached or rejected the call
	GenerateImage(ctx context.Context, params domain.GenerationParams) ([]byte, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, params domain.GenerationParams) ([]byte, error)

// GenerateImage implements Generator.
func (f GeneratorFunc) GenerateImage(ctx context.Context, params domain.GenerationParams) ([]byte, error) {
	return f(ctx, params)
}
