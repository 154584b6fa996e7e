package convert

import (
	"fmt"
	"time"
)

// Outcome describes what happened to one page
type Outcome struct {
	Title string
	// File is the note's vault-relative path; empty when skipped
	File string
	Tags []string
	// SkipReason is set when the page produced no note
	SkipReason string

	MediaEmbedded int
	MediaFailed   int
	RenderFailed  bool
}

// Skipped reports whether the page was skipped
func (o Outcome) Skipped() bool {
	return o.SkipReason != ""
}

// Result represents the result of a conversion run
type Result struct {
	Pages         int
	Converted     int
	Skipped       int
	RenderFailed  int
	MediaEmbedded int
	MediaFailed   int
	// MediaDownloaded and MediaCached count distinct files, filled in by
	// the caller from the media resolver
	MediaDownloaded int
	MediaCached     int
	Indexes         int
	// Interrupted is set when the run stopped before the last page
	Interrupted bool
	Errors      []error
	StartTime   time.Time
	EndTime     time.Time
}

func (r *Result) add(o Outcome) {
	if o.Skipped() {
		r.Skipped++
		return
	}
	r.Converted++
	r.MediaEmbedded += o.MediaEmbedded
	r.MediaFailed += o.MediaFailed
	if o.RenderFailed {
		r.RenderFailed++
	}
}

// Duration returns how long the run took
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// String returns a human-readable summary of the run
func (r *Result) String() string {
	head := "Conversion complete"
	if r.Interrupted {
		head = "Conversion interrupted"
	}
	return fmt.Sprintf(
		"%s: %d pages converted, %d skipped, %d indexes, %d media embedded (%d downloaded, %d cached, %d failed), %d render fallbacks, %d errors (took %v)",
		head,
		r.Converted,
		r.Skipped,
		r.Indexes,
		r.MediaEmbedded,
		r.MediaDownloaded,
		r.MediaCached,
		r.MediaFailed,
		r.RenderFailed,
		len(r.Errors),
		r.Duration().Round(time.Millisecond),
	)
}
