// Package convert turns export pages into vault notes and writes the tag
// index notes once every page is done
package convert

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gerunddev/wikivault/internal/export"
	"github.com/gerunddev/wikivault/internal/extract"
	"github.com/gerunddev/wikivault/internal/frontmatter"
	"github.com/gerunddev/wikivault/internal/logger"
	"github.com/gerunddev/wikivault/internal/normalize"
	"github.com/gerunddev/wikivault/internal/render"
	"github.com/gerunddev/wikivault/internal/vault"
	"github.com/gerunddev/wikivault/internal/wikitext"
)

// Skip reasons
const (
	SkipRedirect   = "redirect"
	SkipNoRevision = "no revision"
	SkipNoContent  = "no content"
)

// Options controls page conversion
type Options struct {
	// MediaDir is the vault-relative directory for embedded files
	MediaDir string
	// IndexDir is the vault-relative directory for tag index notes
	IndexDir      string
	SkipRedirects bool
	// Unwrap joins hard-wrapped paragraph lines before and after rendering
	Unwrap bool
	// Progress, when set, is called after every page Run handles
	Progress ProgressFunc
}

// ProgressFunc receives the outcome of the done-th of total pages. err is
// the page's error, if any.
type ProgressFunc func(done, total int, outcome Outcome, err error)

// Converter converts pages one at a time
type Converter struct {
	writer   *vault.Writer
	media    extract.Fetcher
	renderer render.Renderer
	opts     Options
	log      *logger.Logger
}

// NewConverter creates a converter writing into writer
func NewConverter(writer *vault.Writer, media extract.Fetcher, renderer render.Renderer, opts Options, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Discard()
	}
	return &Converter{
		writer:   writer,
		media:    media,
		renderer: renderer,
		opts:     opts,
		log:      log,
	}
}

// Note is a converted page before it is written
type Note struct {
	Tags    []string
	Content string

	MediaEmbedded int
	MediaFailed   int
	RenderFailed  bool
}

// Transform converts one page's wikitext into a complete note
func (c *Converter) Transform(ctx context.Context, title, raw string) (*Note, error) {
	code := wikitext.Parse(html.UnescapeString(raw))

	var tags []string
	for _, tag := range extract.Categories(code) {
		tags = appendTag(tags, tag)
	}

	note := &Note{}
	note.MediaEmbedded, note.MediaFailed = extract.Media(ctx, code, c.media, c.opts.MediaDir)

	box := extract.Infobox(ctx, code, c.media, c.opts.MediaDir)
	tags = appendTag(tags, InferTag(box.String(extract.TypeKey)))
	note.Tags = tags

	body, err := c.renderBody(ctx, title, strings.TrimSpace(code.String()), note)
	if err != nil {
		return nil, err
	}

	header, err := frontmatter.Build(title, tags, box)
	if err != nil {
		return nil, err
	}
	note.Content = header + strings.TrimSpace(body) + "\n"
	return note, nil
}

// renderBody renders and normalizes the prose. When the renderer fails
// the pre-render text is kept as it is, unless the run was cancelled.
func (c *Converter) renderBody(ctx context.Context, title, markup string, note *Note) (string, error) {
	if c.opts.Unwrap {
		markup = normalize.UnwrapParagraphs(markup)
	}

	out, err := c.renderer.Render(ctx, markup)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("render interrupted: %w", ctxErr)
	}
	if err != nil {
		var rerr *render.Error
		stderr := ""
		if errors.As(err, &rerr) {
			stderr = rerr.Stderr
		}
		c.log.RenderFailed(title, c.renderer.Name(), stderr, err)
		note.RenderFailed = true
		return markup, nil
	}

	if c.opts.Unwrap {
		out = normalize.UnwrapParagraphs(out)
	}
	return normalize.Links(out), nil
}

// ConvertPage converts and writes one page. A skipped page is reported
// through the outcome; only a failure to write the note is returned.
func (c *Converter) ConvertPage(ctx context.Context, run *Run, page export.Page) (Outcome, error) {
	outcome := Outcome{Title: page.Title}

	switch {
	case page.IsRedirect && c.opts.SkipRedirects:
		outcome.SkipReason = SkipRedirect
	case !page.HasRevision:
		outcome.SkipReason = SkipNoRevision
	case strings.TrimSpace(page.Text) == "":
		outcome.SkipReason = SkipNoContent
	}
	if outcome.Skipped() {
		c.log.PageSkipped(page.Title, outcome.SkipReason)
		return outcome, nil
	}

	note, err := c.Transform(ctx, page.Title, page.Text)
	if err != nil {
		return outcome, fmt.Errorf("failed to convert %q: %w", page.Title, err)
	}
	outcome.Tags = note.Tags
	outcome.MediaEmbedded = note.MediaEmbedded
	outcome.MediaFailed = note.MediaFailed
	outcome.RenderFailed = note.RenderFailed

	file := run.Files.Assign(page.Title)
	if err := c.writer.WriteFile(file, []byte(note.Content)); err != nil {
		return outcome, fmt.Errorf("failed to write %q: %w", page.Title, err)
	}
	outcome.File = file

	for _, tag := range note.Tags {
		run.Tags.Add(tag, page.Title)
	}
	c.log.PageConverted(page.Title, file, note.Tags)
	return outcome, nil
}

// Run converts every page in order, then writes the tag indexes.
// Per-page errors are collected in the result. A cancelled context stops
// the run between pages; the indexes are still written for the notes
// already in the vault and the context's error is returned.
func (c *Converter) Run(ctx context.Context, pages []export.Page) (*Result, error) {
	result := &Result{
		Pages:     len(pages),
		StartTime: time.Now(),
	}
	run := NewRun()

	for i, page := range pages {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		outcome, err := c.ConvertPage(ctx, run, page)
		if err != nil && ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		if err != nil {
			c.log.FileError(page.Title, err)
			result.Errors = append(result.Errors, err)
		} else {
			result.add(outcome)
		}
		if c.opts.Progress != nil {
			c.opts.Progress(i+1, len(pages), outcome, err)
		}
	}

	n, errs := BuildIndexes(run, c.writer, c.opts.IndexDir, c.log)
	result.Indexes = n
	result.Errors = append(result.Errors, errs...)

	result.EndTime = time.Now()
	if result.Interrupted {
		return result, ctx.Err()
	}
	return result, nil
}
