package extract

import (
	"strings"

	"github.com/gerunddev/wikivault/internal/normalize"
	"github.com/gerunddev/wikivault/internal/wikitext"
)

const categoryPrefix = "category:"

// Categories removes every [[Category:...]] link from code and returns
// the normalized category names in document order. A sort key after the
// pipe is ignored. Repeated categories are returned as often as they occur.
func Categories(code *wikitext.Wikicode) []string {
	var tags []string
	for _, link := range code.Links() {
		name, ok := trimPrefixFold(link.Target(), categoryPrefix)
		if !ok {
			continue
		}
		tags = append(tags, normalize.Tag(strings.TrimSpace(name)))
		code.Remove(link)
	}
	return tags
}
