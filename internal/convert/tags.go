package convert

import (
	"strings"

	"github.com/gertd/go-pluralize"

	"github.com/gerunddev/wikivault/internal/normalize"
)

var plurals = pluralize.NewClient()

// InferTag turns an infobox type into a tag: "Artifact" and "Artifacts"
// both become "artifacts"
func InferTag(infoboxType string) string {
	infoboxType = strings.TrimSpace(infoboxType)
	if infoboxType == "" {
		return ""
	}
	return normalize.Tag(plurals.Plural(plurals.Singular(infoboxType)))
}

// appendTag adds tag to tags unless it is empty or already present
func appendTag(tags []string, tag string) []string {
	if tag == "" {
		return tags
	}
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
