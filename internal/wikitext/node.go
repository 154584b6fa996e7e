package wikitext

import (
	"strings"
)

// Node is one element of a parsed wikitext tree
type Node interface {
	String() string
	children() []*Wikicode
}

// Text is literal markup with no further structure
type Text struct {
	Value string
}

func (t *Text) String() string        { return t.Value }
func (t *Text) children() []*Wikicode { return nil }

// Comment is an HTML comment: <!-- contents -->
type Comment struct {
	Contents string
	// Unclosed is set when the comment ran to the end of input without -->
	Unclosed bool
}

func (c *Comment) String() string {
	if c.Unclosed {
		return "<!--" + c.Contents
	}
	return "<!--" + c.Contents + "-->"
}

func (c *Comment) children() []*Wikicode { return nil }

// Link is an internal link: [[title]] or [[title|text]]
type Link struct {
	Title *Wikicode
	// Text is nil when the link has no pipe
	Text *Wikicode
}

func (l *Link) String() string {
	var b strings.Builder
	b.WriteString("[[")
	b.WriteString(l.Title.String())
	if l.Text != nil {
		b.WriteString("|")
		b.WriteString(l.Text.String())
	}
	b.WriteString("]]")
	return b.String()
}

func (l *Link) children() []*Wikicode {
	if l.Text == nil {
		return []*Wikicode{l.Title}
	}
	return []*Wikicode{l.Title, l.Text}
}

// Target returns the trimmed link title
func (l *Link) Target() string {
	return strings.TrimSpace(l.Title.String())
}

// Template is a template invocation: {{name|param|key=value}}
type Template struct {
	Name   *Wikicode
	Params []*Parameter
}

// Parameter is one pipe-separated template argument. Positional
// parameters get a numeric Name and ShowKey false.
type Parameter struct {
	Name    *Wikicode
	Value   *Wikicode
	ShowKey bool
}

func (t *Template) String() string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(t.Name.String())
	for _, p := range t.Params {
		b.WriteString("|")
		if p.ShowKey {
			b.WriteString(p.Name.String())
			b.WriteString("=")
		}
		b.WriteString(p.Value.String())
	}
	b.WriteString("}}")
	return b.String()
}

func (t *Template) children() []*Wikicode {
	out := make([]*Wikicode, 0, 1+2*len(t.Params))
	out = append(out, t.Name)
	for _, p := range t.Params {
		if p.ShowKey {
			out = append(out, p.Name)
		}
		out = append(out, p.Value)
	}
	return out
}

// TemplateName returns the trimmed template name
func (t *Template) TemplateName() string {
	return strings.TrimSpace(t.Name.String())
}

// Argument is a template argument reference: {{{name|default}}}
type Argument struct {
	Name    *Wikicode
	Default *Wikicode
}

func (a *Argument) String() string {
	var b strings.Builder
	b.WriteString("{{{")
	b.WriteString(a.Name.String())
	if a.Default != nil {
		b.WriteString("|")
		b.WriteString(a.Default.String())
	}
	b.WriteString("}}}")
	return b.String()
}

func (a *Argument) children() []*Wikicode {
	if a.Default == nil {
		return []*Wikicode{a.Name}
	}
	return []*Wikicode{a.Name, a.Default}
}

// Heading is a section heading line: == Title ==
type Heading struct {
	Title *Wikicode
	Level int
	// Trailing holds whitespace after the closing equals signs
	Trailing string
}

func (h *Heading) String() string {
	marks := strings.Repeat("=", h.Level)
	return marks + h.Title.String() + marks + h.Trailing
}

func (h *Heading) children() []*Wikicode { return []*Wikicode{h.Title} }
