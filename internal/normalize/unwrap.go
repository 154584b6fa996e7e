package normalize

import (
	"regexp"
	"strings"
)

// blockLine matches lines that start a block of their own in either
// wikitext or Markdown: indented/preformatted lines, lists, headings,
// quotes, tables, definition lists, templates and HTML.
var blockLine = regexp.MustCompile(`^([ \t]|[-*+>|:;#=!{}<]|\d+[.)](\s|$))`)

// UnwrapParagraphs joins hard-wrapped prose lines into one line per
// paragraph. Blank lines, fenced code and block-level lines are kept
// as they are. A line ending in a backslash hard break ends its run.
func UnwrapParagraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out, para []string
	flush := func() {
		if len(para) > 0 {
			out = append(out, strings.Join(para, " "))
			para = para[:0]
		}
	}

	inFence := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			flush()
			inFence = !inFence
			out = append(out, line)
		case inFence:
			out = append(out, raw)
		case trimmed == "":
			flush()
			out = append(out, "")
		case blockLine.MatchString(line):
			flush()
			out = append(out, line)
		default:
			para = append(para, trimmed)
			if strings.HasSuffix(trimmed, `\`) {
				flush()
			}
		}
	}
	flush()

	return strings.Join(out, "\n")
}
