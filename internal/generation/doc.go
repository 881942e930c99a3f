// Package generation defines the boundary to the external image generation
// provider and the prompt that is sent to it. Concrete providers live under
// internal/platform.
package generation
