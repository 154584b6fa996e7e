package convert

import (
	"sort"

	"github.com/gerunddev/wikivault/internal/normalize"
	"github.com/gerunddev/wikivault/internal/vault"
)

// Run holds the state shared by every page of one conversion: which
// pages carry which tag, and which note file names are taken
type Run struct {
	Tags  *TagIndex
	Files *vault.Registry
}

// NewRun creates empty run state
func NewRun() *Run {
	return &Run{
		Tags:  NewTagIndex(),
		Files: vault.NewRegistry(),
	}
}

// TagIndex maps a normalized tag to the titles of the pages carrying it
type TagIndex struct {
	pages map[string]map[string]struct{}
}

// NewTagIndex creates an empty index
func NewTagIndex() *TagIndex {
	return &TagIndex{pages: make(map[string]map[string]struct{})}
}

// Add records that the page title carries tag
func (ti *TagIndex) Add(tag, title string) {
	set, ok := ti.pages[tag]
	if !ok {
		set = make(map[string]struct{})
		ti.pages[tag] = set
	}
	set[title] = struct{}{}
}

// Tags returns every tag, sorted
func (ti *TagIndex) Tags() []string {
	tags := make([]string, 0, len(ti.pages))
	for tag := range ti.pages {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Pages returns the titles carrying tag, sorted by display form
func (ti *TagIndex) Pages(tag string) []string {
	titles := make([]string, 0, len(ti.pages[tag]))
	for title := range ti.pages[tag] {
		titles = append(titles, title)
	}
	sort.Slice(titles, func(i, j int) bool {
		a, b := normalize.DisplayTitle(titles[i]), normalize.DisplayTitle(titles[j])
		if a != b {
			return a < b
		}
		return titles[i] < titles[j]
	})
	return titles
}

// Len returns the number of distinct tags
func (ti *TagIndex) Len() int {
	return len(ti.pages)
}
