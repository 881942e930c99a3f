package generation

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/phrazzld/futureview-api/internal/domain"
)

// DefaultPromptTemplate is the Spanish prompt the installation was designed around.
const DefaultPromptTemplate = `Imagen para {{.Name}} de {{.Age}} años que se imagina el futuro de la siguiente forma: {{.Content}}`

// PromptBuilder renders generation parameters into a provider prompt.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the given template text. Empty text selects DefaultPromptTemplate.
func NewPromptBuilder(text string) (*PromptBuilder, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPromptTemplate
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// NewPromptBuilderFromFile loads the template from path, or uses the default when path is empty.
func NewPromptBuilderFromFile(path string) (*PromptBuilder, error) {
	if path == "" {
		return NewPromptBuilder("")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidPrompt, path, err)
	}
	return NewPromptBuilder(string(data))
}

// Build renders the prompt for params.
func (b *PromptBuilder) Build(params domain.GenerationParams) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
