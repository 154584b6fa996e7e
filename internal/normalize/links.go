package normalize

import (
	"regexp"
	"strings"
)

var (
	wikilinkSpan = regexp.MustCompile(`(?s)\[\[(.*?)\]\]`)

	headingID = regexp.MustCompile(`(?m)^(#{1,6}[ \t].*?)(?:[ \t]*\{#[^}\n]*\})+[ \t]*$`)

	// [text](target) and [text](target "wikilink"); target may be <wrapped>
	// or carry one level of balanced parentheses, e.g. Sofia_(town)
	rendererLink = regexp.MustCompile(`(\\?!)?\[([^\[\]]+)\]\((<[^<>\n]*>|[^\s()<>]*(?:\([^\s()]*\)[^\s()<>]*)*)(\s+"wikilink")?\)`)

	canonicalLink = regexp.MustCompile(`(\\?!)?\[\[([^\[\]]+)\]\]`)
)

const wikilinkArtifact = ` "wikilink"`

// Links runs the full post-render pass over Markdown text. Applying it to
// its own output changes nothing.
func Links(md string) string {
	md = UnescapeQuotes(md)
	md = CollapseWikilinks(md)
	md = StripHeadingIDs(md)
	md = RewriteRendererLinks(md)
	md = StripWikilinkArtifacts(md)
	md = NormalizeWikilinks(md)
	md = UnescapeEmbeds(md)
	return md
}

// UnescapeQuotes drops the backslash renderers put in front of apostrophes.
// An escaped backslash (\\') is left alone.
func UnescapeQuotes(md string) string {
	if !strings.Contains(md, `\'`) {
		return md
	}
	var b strings.Builder
	b.Grow(len(md))
	for i := 0; i < len(md); i++ {
		if md[i] != '\\' {
			b.WriteByte(md[i])
			continue
		}
		j := i
		for j < len(md) && md[j] == '\\' {
			j++
		}
		if j < len(md) && md[j] == '\'' && (j-i)%2 == 1 {
			b.WriteString(md[i : j-1])
		} else {
			b.WriteString(md[i:j])
		}
		i = j - 1
	}
	return b.String()
}

// CollapseWikilinks folds line breaks and runs of spaces inside [[...]]
func CollapseWikilinks(md string) string {
	return wikilinkSpan.ReplaceAllStringFunc(md, func(m string) string {
		inner := m[2 : len(m)-2]
		return "[[" + strings.Join(strings.Fields(inner), " ") + "]]"
	})
}

// StripHeadingIDs removes trailing {#id} attributes from ATX headings
func StripHeadingIDs(md string) string {
	return headingID.ReplaceAllString(md, "${1}")
}

// RewriteRendererLinks turns [text](target "wikilink") and relative
// [text](target) links into [[target]] or [[target|text]]. Absolute
// http, https and mailto links are left as they are.
func RewriteRendererLinks(md string) string {
	return rendererLink.ReplaceAllStringFunc(md, func(m string) string {
		sub := rendererLink.FindStringSubmatch(m)
		prefix, text, target := sub[1], sub[2], sub[3]
		wikilink := sub[4] != ""

		if strings.HasPrefix(target, "<") {
			target = strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
		}
		if isAbsoluteURI(target) {
			return m
		}
		text = strings.Join(strings.Fields(text), " ")

		// A "!" in front of a wikilink is one of our own embed references
		// that went through the renderer: its text is the vault path.
		if prefix != "" && wikilink {
			return prefix + "[[" + text + "]]"
		}
		// Plain Markdown image
		if prefix == "!" {
			return m
		}

		clean := DisplayTitle(strings.TrimSpace(target))
		if clean == text {
			return prefix + "[[" + clean + "]]"
		}
		return prefix + "[[" + clean + "|" + text + "]]"
	})
}

// StripWikilinkArtifacts removes leftover ` "wikilink"` link titles
func StripWikilinkArtifacts(md string) string {
	return strings.ReplaceAll(md, wikilinkArtifact, "")
}

// NormalizeWikilinks rewrites every [[target|alias]] through CleanWikilink.
// Embeds keep their paths untouched.
func NormalizeWikilinks(md string) string {
	return canonicalLink.ReplaceAllStringFunc(md, func(m string) string {
		sub := canonicalLink.FindStringSubmatch(m)
		if sub[1] != "" {
			return m
		}
		return CleanWikilink(sub[2])
	})
}

// UnescapeEmbeds turns \![[...]] back into ![[...]]. An escaped
// backslash (\\![[) is left alone.
func UnescapeEmbeds(md string) string {
	if !strings.Contains(md, `\![[`) {
		return md
	}
	var b strings.Builder
	b.Grow(len(md))
	for i := 0; i < len(md); i++ {
		if md[i] != '\\' {
			b.WriteByte(md[i])
			continue
		}
		j := i
		for j < len(md) && md[j] == '\\' {
			j++
		}
		if strings.HasPrefix(md[j:], "![[") && (j-i)%2 == 1 {
			b.WriteString(md[i : j-1])
		} else {
			b.WriteString(md[i:j])
		}
		i = j - 1
	}
	return b.String()
}

// CleanWikilink renders the inside of a wikilink in canonical form:
// "Foo_Bar" → [[Foo Bar]], "Foo_Bar|Alias" → [[Foo Bar|Alias]].
// An alias identical to its target is dropped.
func CleanWikilink(inner string) string {
	target, alias, hasAlias := strings.Cut(inner, "|")
	target = DisplayTitle(target)
	if !hasAlias {
		return "[[" + target + "]]"
	}
	alias = DisplayTitle(alias)
	if alias == target {
		return "[[" + target + "]]"
	}
	return "[[" + target + "|" + alias + "]]"
}

func isAbsoluteURI(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:")
}
