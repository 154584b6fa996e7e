// Package media downloads the files a page embeds into the vault's media
// directory
package media

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/gerunddev/wikivault/internal/logger"
	"github.com/gerunddev/wikivault/internal/vault"
)

// API is the part of the wiki API the resolver needs
type API interface {
	ImageURL(ctx context.Context, fileTitle string) (string, error)
	Download(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Stats counts resolver outcomes over a run
type Stats struct {
	Fetched int
	Cached  int
	Failed  int
}

// Resolver maps media titles to files in the vault, downloading each one
// at most once. A file that is already present is never fetched again.
type Resolver struct {
	api      API
	writer   *vault.Writer
	mediaDir string
	log      *logger.Logger
	stats    Stats
}

// NewResolver creates a resolver storing files under mediaDir in the vault
func NewResolver(api API, writer *vault.Writer, mediaDir string, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{
		api:      api,
		writer:   writer,
		mediaDir: mediaDir,
		log:      log,
	}
}

// Fetch returns the local file name for title. Failures are logged and
// reported as false; they never abort the page.
func (r *Resolver) Fetch(ctx context.Context, title string) (string, bool) {
	name := vault.SanitizeFilename(title)
	if name == "" {
		return "", false
	}
	rel := path.Join(r.mediaDir, name)

	if r.writer.Exists(rel) {
		r.stats.Cached++
		r.log.MediaFetched(title, name, true)
		return name, true
	}

	if err := r.download(ctx, title, rel); err != nil {
		r.stats.Failed++
		r.log.MediaFailed(title, err)
		return "", false
	}

	r.stats.Fetched++
	r.log.MediaFetched(title, name, false)
	return name, true
}

// Stats returns the counts so far
func (r *Resolver) Stats() Stats {
	return r.stats
}

func (r *Resolver) download(ctx context.Context, title, rel string) error {
	link, err := r.api.ImageURL(ctx, "File:"+title)
	if err != nil {
		return fmt.Errorf("failed to resolve file URL: %w", err)
	}

	body, err := r.api.Download(ctx, link)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := r.writer.Create(rel, body); err != nil {
		return fmt.Errorf("failed to save media: %w", err)
	}
	return nil
}
