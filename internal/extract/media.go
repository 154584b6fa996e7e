package extract

import (
	"context"
	"strings"

	"github.com/gerunddev/wikivault/internal/wikitext"
)

var mediaPrefixes = []string{"file:", "image:"}

// MediaTitle returns the asset title of a [[File:...]] or [[Image:...]]
// link target
func MediaTitle(target string) (string, bool) {
	for _, prefix := range mediaPrefixes {
		if rest, ok := trimPrefixFold(target, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// Media replaces every file link with an embed of the fetched asset.
// Links whose asset cannot be fetched are left in place.
func Media(ctx context.Context, code *wikitext.Wikicode, f Fetcher, mediaDir string) (embedded, failed int) {
	for _, link := range code.Links() {
		title, ok := MediaTitle(link.Target())
		if !ok || title == "" {
			continue
		}
		local, ok := f.Fetch(ctx, title)
		if !ok {
			failed++
			continue
		}
		if code.Replace(link, Embed(mediaDir, local)) {
			embedded++
		}
	}
	return embedded, failed
}
