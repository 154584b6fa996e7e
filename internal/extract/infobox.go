package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/gerunddev/wikivault/internal/frontmatter"
	"github.com/gerunddev/wikivault/internal/normalize"
	"github.com/gerunddev/wikivault/internal/wikitext"
)

const (
	infoboxPrefix = "infobox_"

	// TypeKey holds the infobox type in the extracted record
	TypeKey  = "infobox"
	imageKey = "image"
)

var linkToken = regexp.MustCompile(`\[\[[^\]]+\]\]`)

// Infobox extracts the page's infobox into an ordered record and removes
// the template from code. The first template with a non-empty name is
// taken to be the infobox. An empty record is returned when the page has
// no template.
//
// When the record has an image, the image is fetched and an embed of it
// is prepended to the page whether or not the fetch succeeded.
func Infobox(ctx context.Context, code *wikitext.Wikicode, f Fetcher, mediaDir string) *frontmatter.Fields {
	record := frontmatter.NewFields()

	var box *wikitext.Template
	for _, tmpl := range code.Templates() {
		if tmpl.TemplateName() != "" {
			box = tmpl
			break
		}
	}
	if box == nil {
		return record
	}

	record.Set(TypeKey, InfoboxType(box.TemplateName()))
	for _, param := range box.Params {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(param.Name.String()), ":", ""))
		record.Set(key, splitLinks(strings.TrimSpace(param.Value.String())))
	}
	code.Remove(box)

	if image := record.String(imageKey); image != "" {
		f.Fetch(ctx, image)
		code.Insert(0, Embed(mediaDir, image)+"\n\n")
	}
	return record
}

// InfoboxType turns a template name into the infobox type:
// "Infobox_fictional_character" becomes "Fictional Character". Names
// without the infobox_ prefix are returned as written.
func InfoboxType(name string) string {
	name = strings.TrimSpace(name)
	rest, ok := trimPrefixFold(name, infoboxPrefix)
	if !ok {
		return name
	}
	return normalize.TitleCase(strings.ToLower(strings.ReplaceAll(rest, "_", " ")))
}

// splitLinks keeps a plain value as a string. A value holding [[links]]
// becomes a list of trimmed literal pieces and whole link tokens.
func splitLinks(value string) any {
	spans := linkToken.FindAllStringIndex(value, -1)
	if spans == nil {
		return value
	}

	parts := make([]string, 0, 2*len(spans)+1)
	last := 0
	for _, span := range spans {
		if literal := strings.TrimSpace(value[last:span[0]]); literal != "" {
			parts = append(parts, literal)
		}
		parts = append(parts, value[span[0]:span[1]])
		last = span[1]
	}
	if literal := strings.TrimSpace(value[last:]); literal != "" {
		parts = append(parts, literal)
	}
	return parts
}
