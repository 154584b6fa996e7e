package vault

import (
	"regexp"
	"strconv"
	"strings"
)

// NoteExt is the extension of every generated note
const NoteExt = ".md"

var illegalChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename trims title and replaces characters that are not
// allowed in file names with underscores
func SanitizeFilename(title string) string {
	return illegalChars.ReplaceAllString(strings.TrimSpace(title), "_")
}

// Registry hands out unique note file names for the duration of a run.
// The first title with a given base name gets it unchanged; later ones
// get _1, _2, and so on.
type Registry struct {
	counts map[string]int
	used   map[string]bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		counts: make(map[string]int),
		used:   make(map[string]bool),
	}
}

// Assign returns the file name for the next note with this title
func (r *Registry) Assign(title string) string {
	base := SanitizeFilename(title)
	for {
		n := r.counts[base]
		r.counts[base] = n + 1

		name := base
		if n > 0 {
			name = base + "_" + strconv.Itoa(n)
		}
		name += NoteExt
		if !r.used[name] {
			r.used[name] = true
			return name
		}
	}
}
