// Package extract pulls structured data out of a parsed page: category
// tags, media embeds and the infobox record. Every extractor mutates the
// tree it is given so the remaining markup can be rendered as prose.
package extract

import (
	"context"
	"strings"
)

// Fetcher resolves a media title to a local file name inside the media
// directory. A false result means the asset could not be resolved.
type Fetcher interface {
	Fetch(ctx context.Context, title string) (string, bool)
}

// Embed returns the embed reference for a file in the media directory
func Embed(mediaDir, name string) string {
	if mediaDir == "" {
		return "![[" + name + "]]"
	}
	return "![[" + strings.TrimSuffix(mediaDir, "/") + "/" + name + "]]"
}

// trimPrefixFold strips prefix from s when s starts with it, ignoring case
func trimPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
