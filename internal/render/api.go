package render

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Parser renders wikitext to HTML on the wiki itself
type Parser interface {
	ParseWikitext(ctx context.Context, text string) (string, error)
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// API renders through the wiki's own parser and converts the HTML back to
// Markdown. Internal links come out as [text](Target "wikilink"), the
// same form pandoc produces, so one normalizer handles both.
type API struct {
	parser    Parser
	policy    *bluemonday.Policy
	converter *md.Converter
}

// NewAPI creates an api renderer
func NewAPI(parser Parser) *API {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("span", "sup", "a", "div")

	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		StrongDelimiter:  "**",
		EmDelimiter:      "*",
	})
	converter.AddRules(
		md.Rule{
			Filter: []string{"span"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				if selec.HasClass("mw-editsection") {
					return md.String("")
				}
				return nil
			},
		},
		md.Rule{
			Filter: []string{"sup"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				if selec.HasClass("reference") {
					return md.String("[" + strings.Trim(selec.Text(), "[]") + "]")
				}
				return nil
			},
		},
		md.Rule{
			Filter: []string{"a"},
			Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
				href, _ := selec.Attr("href")
				target := wikiTarget(href)
				if target == "" {
					return nil
				}
				text := strings.TrimSpace(content)
				if text == "" {
					text = strings.ReplaceAll(target, "_", " ")
				}
				return md.String("[" + text + "](" + target + ` "wikilink")`)
			},
		},
	)

	return &API{parser: parser, policy: policy, converter: converter}
}

func (a *API) Name() string { return NameAPI }

func (a *API) Render(ctx context.Context, markup string) (string, error) {
	html, err := a.parser.ParseWikitext(ctx, markup)
	if err != nil {
		return "", &Error{Renderer: NameAPI, Err: err}
	}

	out, err := a.converter.ConvertString(a.policy.Sanitize(html))
	if err != nil {
		return "", &Error{Renderer: NameAPI, Err: err}
	}

	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out) + "\n", nil
}

// wikiTarget returns the page a wiki-internal href points at, with
// underscores for spaces: /wiki/Page_Title and
// /w/index.php?title=Page_Title&action=edit&redlink=1 both give
// Page_Title. External and fragment-only links give "".
func wikiTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}

	var title string
	switch {
	case strings.HasPrefix(u.Path, "/wiki/"):
		title = strings.TrimPrefix(u.Path, "/wiki/")
	case u.Query().Get("title") != "":
		title = u.Query().Get("title")
	default:
		return ""
	}
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}
