// Package render turns the prose markup left after extraction into
// Markdown
package render

import (
	"context"
	"fmt"
	"time"
)

// Renderer names
const (
	NamePandoc = "pandoc"
	NameAPI    = "api"
	NameNone   = "none"
)

// Names lists every renderer that New accepts
var Names = []string{NamePandoc, NameAPI, NameNone}

// Renderer converts wikitext to Markdown
type Renderer interface {
	Name() string
	Render(ctx context.Context, markup string) (string, error)
}

// Error is a failed render. Stderr holds whatever diagnostics the
// renderer produced.
type Error struct {
	Renderer string
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s render failed: %v", e.Renderer, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures New
type Options struct {
	PandocPath string
	Timeout    time.Duration
	// Parser is required by the api renderer
	Parser Parser
}

// New returns the renderer called name
func New(name string, opts Options) (Renderer, error) {
	switch name {
	case NamePandoc, "":
		return &Pandoc{Path: opts.PandocPath, Timeout: opts.Timeout}, nil
	case NameAPI:
		if opts.Parser == nil {
			return nil, fmt.Errorf("api renderer needs a wiki API client")
		}
		return NewAPI(opts.Parser), nil
	case NameNone:
		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}

// Passthrough returns markup unchanged
type Passthrough struct{}

func (Passthrough) Name() string { return NameNone }

func (Passthrough) Render(_ context.Context, markup string) (string, error) {
	return markup, nil
}
