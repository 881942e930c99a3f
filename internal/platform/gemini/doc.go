// Package gemini implements generation.Generator on top of Google's Imagen
// models through the google.golang.org/genai SDK.
//
// This package is an infrastructure adapter: it turns generation parameters
// into a prompt, calls the provider, and reduces the response to image bytes
// or "no result".
package gemini
