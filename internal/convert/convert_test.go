package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/adrg/frontmatter"

	"github.com/gerunddev/wikivault/internal/export"
	"github.com/gerunddev/wikivault/internal/render"
	"github.com/gerunddev/wikivault/internal/vault"
)

type fakeFetcher struct {
	known map[string]string
}

func (f fakeFetcher) Fetch(_ context.Context, title string) (string, bool) {
	name, ok := f.known[title]
	return name, ok
}

// stubRenderer returns a fixed output, or fails when err is set
type stubRenderer struct {
	output string
	err    error
	calls  int
}

func (s *stubRenderer) Name() string { return "stub" }

func (s *stubRenderer) Render(_ context.Context, markup string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.output != "" {
		return s.output, nil
	}
	return markup, nil
}

func newTestConverter(t *testing.T, r render.Renderer, opts Options) (*Converter, *vault.Writer) {
	t.Helper()
	w, err := vault.NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if opts.MediaDir == "" {
		opts.MediaDir = "images"
	}
	if opts.IndexDir == "" {
		opts.IndexDir = "_indexes"
	}
	media := fakeFetcher{known: map[string]string{"Map.png": "Map.png"}}
	return NewConverter(w, media, r, opts, nil), w
}

func readNote(t *testing.T, w *vault.Writer, rel string) (map[string]any, string) {
	t.Helper()
	data, err := os.ReadFile(w.Path(rel))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	meta := make(map[string]any)
	body, err := frontmatter.Parse(strings.NewReader(string(data)), &meta)
	if err != nil {
		t.Fatalf("failed to parse %s: %v\n%s", rel, err, data)
	}
	return meta, string(body)
}

func tagsOf(meta map[string]any) []string {
	var tags []string
	list, _ := meta["tags"].([]any)
	for _, v := range list {
		s, _ := v.(string)
		tags = append(tags, s)
	}
	return tags
}

func TestConvertPageInfersTag(t *testing.T) {
	c, w := newTestConverter(t, render.Passthrough{}, Options{})
	run := NewRun()

	page := export.Page{
		Title:       "The One Ring",
		HasRevision: true,
		Text:        "{{Infobox_artifact|name=The One Ring|maker=[[Sauron]]}}\nThe ring of power. [[Category:Items]] [[Category:Items]]",
	}
	outcome, err := c.ConvertPage(context.Background(), run, page)
	if err != nil {
		t.Fatalf("ConvertPage() error = %v", err)
	}
	if outcome.File != "The One Ring.md" {
		t.Errorf("File = %q", outcome.File)
	}

	data, _ := os.ReadFile(w.Path(outcome.File))
	if !strings.HasPrefix(string(data), "---\n") || strings.Count(string(data), "---\n") < 2 {
		t.Errorf("note lacks front matter delimiters:\n%s", data)
	}

	meta, body := readNote(t, w, outcome.File)
	if got := tagsOf(meta); !reflect.DeepEqual(got, []string{"items", "artifacts"}) {
		t.Errorf("tags = %v, want [items artifacts]", got)
	}
	if meta["infobox"] != "Artifact" || meta["title"] != "The One Ring" {
		t.Errorf("meta = %v", meta)
	}
	if strings.TrimSpace(body) != "The ring of power." {
		t.Errorf("body = %q", body)
	}

	if got := run.Tags.Pages("artifacts"); !reflect.DeepEqual(got, []string{"The One Ring"}) {
		t.Errorf("tag index for artifacts = %v", got)
	}
}

func TestConvertPageFilenameCollision(t *testing.T) {
	c, w := newTestConverter(t, render.Passthrough{}, Options{})
	run := NewRun()

	first, err := c.ConvertPage(context.Background(), run, export.Page{Title: "Base", HasRevision: true, Text: "first"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.ConvertPage(context.Background(), run, export.Page{Title: "Base ", HasRevision: true, Text: "second"})
	if err != nil {
		t.Fatal(err)
	}

	if first.File != "Base.md" || second.File != "Base_1.md" {
		t.Fatalf("files = %q, %q", first.File, second.File)
	}
	_, body := readNote(t, w, "Base.md")
	if strings.TrimSpace(body) != "first" {
		t.Errorf("first note overwritten: %q", body)
	}
	_, body = readNote(t, w, "Base_1.md")
	if strings.TrimSpace(body) != "second" {
		t.Errorf("second note = %q", body)
	}
}

func TestConvertPageSkips(t *testing.T) {
	tests := []struct {
		name          string
		page          export.Page
		skipRedirects bool
		wantReason    string
	}{
		{
			name:          "redirect skipped",
			page:          export.Page{Title: "Ring", IsRedirect: true, HasRevision: true, Text: "#REDIRECT [[The One Ring]]"},
			skipRedirects: true,
			wantReason:    SkipRedirect,
		},
		{
			name:       "redirect kept",
			page:       export.Page{Title: "Ring", IsRedirect: true, HasRevision: true, Text: "#REDIRECT [[The One Ring]]"},
			wantReason: "",
		},
		{
			name:       "no revision",
			page:       export.Page{Title: "Empty"},
			wantReason: SkipNoRevision,
		},
		{
			name:       "blank text",
			page:       export.Page{Title: "Blank", HasRevision: true, Text: " \n\t"},
			wantReason: SkipNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &stubRenderer{}
			c, w := newTestConverter(t, r, Options{SkipRedirects: tt.skipRedirects})

			outcome, err := c.ConvertPage(context.Background(), NewRun(), tt.page)
			if err != nil {
				t.Fatalf("ConvertPage() error = %v", err)
			}
			if outcome.SkipReason != tt.wantReason {
				t.Errorf("SkipReason = %q, want %q", outcome.SkipReason, tt.wantReason)
			}
			if tt.wantReason != "" {
				if r.calls != 0 {
					t.Error("skipped page was rendered")
				}
				entries, _ := os.ReadDir(w.Root)
				if len(entries) != 0 {
					t.Errorf("skipped page wrote %d files", len(entries))
				}
			}
		})
	}
}

func TestConvertPageRenderFallback(t *testing.T) {
	r := &stubRenderer{err: &render.Error{Renderer: "stub", Stderr: "boom", Err: errors.New("exit status 1")}}
	c, w := newTestConverter(t, r, Options{})

	outcome, err := c.ConvertPage(context.Background(), NewRun(), export.Page{
		Title:       "Raw",
		HasRevision: true,
		Text:        "== Heading ==\nSee [[Foo_Bar]].",
	})
	if err != nil {
		t.Fatalf("ConvertPage() error = %v", err)
	}
	if !outcome.RenderFailed {
		t.Error("RenderFailed not set")
	}

	_, body := readNote(t, w, outcome.File)
	if strings.TrimSpace(body) != "== Heading ==\nSee [[Foo_Bar]]." {
		t.Errorf("fallback body = %q, want raw markup", body)
	}
}

func TestConvertPageNormalizesRendererLinks(t *testing.T) {
	r := &stubRenderer{output: "## Origins {#origins}\n\nForged by [the Dark Lord](Sauron \"wikilink\") in\n[Mount Doom](Mount_Doom \"wikilink\").\n"}
	c, w := newTestConverter(t, r, Options{Unwrap: true})

	outcome, err := c.ConvertPage(context.Background(), NewRun(), export.Page{Title: "Ring", HasRevision: true, Text: "ignored"})
	if err != nil {
		t.Fatal(err)
	}

	_, body := readNote(t, w, outcome.File)
	want := "## Origins\n\nForged by [[Sauron|the Dark Lord]] in [[Mount Doom]]."
	if strings.TrimSpace(body) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestTransformMediaAndEntities(t *testing.T) {
	c, _ := newTestConverter(t, render.Passthrough{}, Options{})

	note, err := c.Transform(context.Background(), "Maps", "[[File:Map.png|thumb]] Tom &amp; Jerry [[File:Gone.png]]")
	if err != nil {
		t.Fatal(err)
	}
	if note.MediaEmbedded != 1 || note.MediaFailed != 1 {
		t.Errorf("media = %d embedded, %d failed", note.MediaEmbedded, note.MediaFailed)
	}
	for _, want := range []string{"![[images/Map.png]]", "Tom & Jerry", "[[File:Gone.png]]"} {
		if !strings.Contains(note.Content, want) {
			t.Errorf("content missing %q:\n%s", want, note.Content)
		}
	}
	if len(note.Tags) != 0 {
		t.Errorf("tags = %v", note.Tags)
	}
}

func TestInferTag(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Artifact", "artifacts"},
		{"Artifacts", "artifacts"},
		{"Character", "characters"},
		{"Person", "people"},
		{"Fictional Character", "fictional_characters"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := InferTag(tt.input); got != tt.expected {
				t.Errorf("InferTag(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIndexNote(t *testing.T) {
	got, err := IndexNote("magic_rings", []string{"Alpha_Ring", "Zed"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`title: "Index: magic rings"`,
		`  - "magic_rings"`,
		"# Magic Rings Index\n\n- [[Alpha Ring]]\n- [[Zed]]\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("IndexNote() missing %q in:\n%s", want, got)
		}
	}
	if got := IndexFile("_indexes", "a/b"); got != "_indexes/_a_b.md" {
		t.Errorf("IndexFile() = %q", got)
	}
}

func TestRun(t *testing.T) {
	c, w := newTestConverter(t, render.Passthrough{}, Options{SkipRedirects: true})

	pages := []export.Page{
		{Title: "Zed", HasRevision: true, Text: "Z. [[Category:Letters]]"},
		{Title: "Alpha", HasRevision: true, Text: "A. [[Category:Letters]] [[Category:First Things]]"},
		{Title: "Alias", IsRedirect: true, HasRevision: true, Text: "#REDIRECT [[Alpha]]"},
		{Title: "Nothing", HasRevision: false},
	}

	result, err := c.Run(context.Background(), pages)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Converted != 2 || result.Skipped != 2 || result.Indexes != 2 || len(result.Errors) != 0 {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(result.String(), "2 pages converted") {
		t.Errorf("String() = %q", result.String())
	}

	data, err := os.ReadFile(filepath.Join(w.Root, "_indexes", "_letters.md"))
	if err != nil {
		t.Fatalf("letters index missing: %v", err)
	}
	if !strings.Contains(string(data), "- [[Alpha]]\n- [[Zed]]\n") {
		t.Errorf("letters index = %q", data)
	}
	if !w.Exists("_indexes/_first_things.md") {
		t.Error("first_things index missing")
	}
}

func TestRunCancelled(t *testing.T) {
	c, w := newTestConverter(t, render.Passthrough{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.Run(ctx, []export.Page{{Title: "A", HasRevision: true, Text: "a"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if result.Converted != 0 || w.Exists("A.md") {
		t.Error("cancelled run converted pages")
	}
}

// cancellingRenderer cancels the run while rendering markup containing
// trigger, the way an interrupted subprocess fails
type cancellingRenderer struct {
	trigger string
	cancel  context.CancelFunc
}

func (r *cancellingRenderer) Name() string { return "cancelling" }

func (r *cancellingRenderer) Render(ctx context.Context, markup string) (string, error) {
	if strings.Contains(markup, r.trigger) {
		r.cancel()
		return "", &render.Error{Renderer: r.Name(), Stderr: "killed", Err: ctx.Err()}
	}
	return markup, nil
}

func TestRunCancelledDuringRender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, w := newTestConverter(t, &cancellingRenderer{trigger: "raw", cancel: cancel}, Options{})

	pages := []export.Page{
		{Title: "B", HasRevision: true, Text: "b [[Category:X]]"},
		{Title: "A", HasRevision: true, Text: "'''raw''' [[Category:X]]"},
		{Title: "C", HasRevision: true, Text: "c [[Category:X]]"},
	}

	result, err := c.Run(ctx, pages)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if !result.Interrupted || result.Converted != 1 || result.RenderFailed != 0 || len(result.Errors) != 0 {
		t.Errorf("result = %+v", result)
	}
	if w.Exists("A.md") || w.Exists("C.md") {
		t.Error("interrupted page was written")
	}
	if !w.Exists("B.md") {
		t.Error("page converted before the interrupt is missing")
	}

	data, err := os.ReadFile(filepath.Join(w.Root, "_indexes", "_x.md"))
	if err != nil {
		t.Fatalf("index missing after interrupt: %v", err)
	}
	if !strings.Contains(string(data), "- [[B]]\n") || strings.Contains(string(data), "[[A]]") {
		t.Errorf("index = %q", data)
	}
	if !strings.HasPrefix(result.String(), "Conversion interrupted") {
		t.Errorf("String() = %q", result.String())
	}
}

func TestRunReportsProgress(t *testing.T) {
	type call struct {
		done, total int
		title       string
		skipped     bool
	}
	var calls []call
	c, _ := newTestConverter(t, render.Passthrough{}, Options{
		SkipRedirects: true,
		Progress: func(done, total int, o Outcome, err error) {
			if err != nil {
				t.Errorf("unexpected page error: %v", err)
			}
			calls = append(calls, call{done, total, o.Title, o.Skipped()})
		},
	})

	pages := []export.Page{
		{Title: "One", HasRevision: true, Text: "1"},
		{Title: "Two", IsRedirect: true, HasRevision: true, Text: "#REDIRECT [[One]]"},
	}
	if _, err := c.Run(context.Background(), pages); err != nil {
		t.Fatal(err)
	}

	want := []call{{1, 2, "One", false}, {2, 2, "Two", true}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %+v, want %+v", calls, want)
	}
}

func TestResultStringIncludesMediaStats(t *testing.T) {
	r := &Result{Converted: 3, MediaEmbedded: 4, MediaDownloaded: 2, MediaCached: 1, MediaFailed: 1}
	s := r.String()
	if !strings.HasPrefix(s, "Conversion complete") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, "4 media embedded (2 downloaded, 1 cached, 1 failed)") {
		t.Errorf("String() missing media stats: %q", s)
	}
}
