// Package normalize holds the text-level passes that turn rendered
// Markdown into vault-ready notes, plus the title and tag normal forms
// shared by the rest of the pipeline.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag normalizes a category or label: lower-case, spaces become underscores
func Tag(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// DisplayTitle is the human form of a wiki title: underscores become spaces
func DisplayTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

// TitleCase capitalizes each word ("fictional character" → "Fictional Character")
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
