// Package wikitext parses MediaWiki markup into an editable node tree.
//
// The parser is forgiving: markup that does not close (a stray "{{" or
// "[[") is kept as literal text, so Parse never fails and String always
// reproduces the input exactly.
package wikitext

import (
	"strconv"
	"strings"
)

type parser struct {
	src string
	pos int
	// failed holds openers already known not to close. A nested construct
	// parses the same way wherever it is reached from, so a failure at a
	// position is final.
	failed map[route]bool
}

type route struct {
	kind byte
	pos  int
}

const (
	routeArgument byte = iota
	routeTemplate
	routeLink
)

// attempt runs parse for the opener at the current position unless that
// opener has failed before
func (p *parser) attempt(kind byte, parse func() (Node, bool)) (Node, bool) {
	r := route{kind: kind, pos: p.pos}
	if p.failed[r] {
		return nil, false
	}
	n, ok := parse()
	if !ok {
		if p.failed == nil {
			p.failed = make(map[route]bool)
		}
		p.failed[r] = true
	}
	return n, ok
}

func (p *parser) template() (Node, bool) {
	t, ok := p.parseTemplate()
	return t, ok
}

func (p *parser) argument() (Node, bool) {
	a, ok := p.parseArgument()
	return a, ok
}

func (p *parser) link() (Node, bool) {
	l, ok := p.parseLink()
	return l, ok
}

// Parse parses wikitext into a tree
func Parse(text string) *Wikicode {
	p := &parser{src: text}
	code, _, _ := p.parse(nil, true)
	return code
}

// parse consumes nodes until one of stops is found at the current nesting
// level. The stop itself is left unconsumed. ok is false when the input
// ends first and stops is non-empty.
func (p *parser) parse(stops []string, top bool) (code *Wikicode, stop string, ok bool) {
	code = &Wikicode{}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			code.Nodes = append(code.Nodes, &Text{Value: text.String()})
			text.Reset()
		}
	}
	emit := func(n Node) {
		flush()
		code.Nodes = append(code.Nodes, n)
	}

	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		for _, s := range stops {
			if strings.HasPrefix(rest, s) {
				flush()
				return code, s, true
			}
		}

		start := p.pos
		switch {
		case top && rest[0] == '=' && p.atLineStart():
			if h, ok := p.parseHeading(); ok {
				emit(h)
				continue
			}
			p.pos = start
		case strings.HasPrefix(rest, "<!--"):
			emit(p.parseComment())
			continue
		case strings.HasPrefix(rest, "{{{"):
			if a, ok := p.attempt(routeArgument, p.argument); ok {
				emit(a)
				continue
			}
			p.pos = start
			if t, ok := p.attempt(routeTemplate, p.template); ok {
				emit(t)
				continue
			}
			p.pos = start + 1
			text.WriteByte('{')
			continue
		case strings.HasPrefix(rest, "{{"):
			if t, ok := p.attempt(routeTemplate, p.template); ok {
				emit(t)
				continue
			}
			p.pos = start + 2
			text.WriteString("{{")
			continue
		case strings.HasPrefix(rest, "[["):
			if l, ok := p.attempt(routeLink, p.link); ok {
				emit(l)
				continue
			}
			p.pos = start + 2
			text.WriteString("[[")
			continue
		}

		text.WriteByte(p.src[p.pos])
		p.pos++
	}

	flush()
	return code, "", len(stops) == 0
}

func (p *parser) atLineStart() bool {
	return p.pos == 0 || p.src[p.pos-1] == '\n'
}

func (p *parser) parseTemplate() (*Template, bool) {
	p.pos += 2
	name, stop, ok := p.parse([]string{"|", "}}"}, false)
	if !ok {
		return nil, false
	}

	t := &Template{Name: name}
	positional := 0
	for stop == "|" {
		p.pos++
		var value *Wikicode
		value, stop, ok = p.parse([]string{"|", "}}"}, false)
		if !ok {
			return nil, false
		}
		t.Params = append(t.Params, splitParameter(value, &positional))
	}

	p.pos += 2
	return t, true
}

// splitParameter separates "key=value" at the first top-level equals sign.
// Anything without one is positional and numbered from 1.
func splitParameter(value *Wikicode, positional *int) *Parameter {
	for i, n := range value.Nodes {
		t, ok := n.(*Text)
		if !ok {
			continue
		}
		eq := strings.IndexByte(t.Value, '=')
		if eq < 0 {
			continue
		}

		name := &Wikicode{Nodes: append([]Node{}, value.Nodes[:i]...)}
		if eq > 0 {
			name.Nodes = append(name.Nodes, &Text{Value: t.Value[:eq]})
		}
		val := &Wikicode{}
		if eq+1 < len(t.Value) {
			val.Nodes = append(val.Nodes, &Text{Value: t.Value[eq+1:]})
		}
		val.Nodes = append(val.Nodes, value.Nodes[i+1:]...)
		return &Parameter{Name: name, Value: val, ShowKey: true}
	}

	*positional++
	return &Parameter{
		Name:  &Wikicode{Nodes: []Node{&Text{Value: strconv.Itoa(*positional)}}},
		Value: value,
	}
}

func (p *parser) parseArgument() (*Argument, bool) {
	p.pos += 3
	name, stop, ok := p.parse([]string{"|", "}}}"}, false)
	if !ok {
		return nil, false
	}

	a := &Argument{Name: name}
	if stop == "|" {
		p.pos++
		def, _, ok := p.parse([]string{"}}}"}, false)
		if !ok {
			return nil, false
		}
		a.Default = def
	}

	p.pos += 3
	return a, true
}

func (p *parser) parseLink() (*Link, bool) {
	p.pos += 2
	title, stop, ok := p.parse([]string{"|", "]]"}, false)
	if !ok || !validTitle(title) {
		return nil, false
	}

	l := &Link{Title: title}
	if stop == "|" {
		p.pos++
		text, _, ok := p.parse([]string{"]]"}, false)
		if !ok {
			return nil, false
		}
		l.Text = text
	}

	p.pos += 2
	return l, true
}

// validTitle rejects link titles that span lines or contain other links
func validTitle(title *Wikicode) bool {
	for _, n := range title.Nodes {
		switch v := n.(type) {
		case *Text:
			if strings.ContainsAny(v.Value, "\n[]") {
				return false
			}
		case *Link:
			return false
		}
	}
	return true
}

func (p *parser) parseComment() *Comment {
	p.pos += len("<!--")
	end := strings.Index(p.src[p.pos:], "-->")
	if end < 0 {
		c := &Comment{Contents: p.src[p.pos:], Unclosed: true}
		p.pos = len(p.src)
		return c
	}
	c := &Comment{Contents: p.src[p.pos : p.pos+end]}
	p.pos += end + len("-->")
	return c
}

// parseHeading recognizes "== Title ==" lines. The title is parsed on its
// own, so markup inside a heading cannot span into the next line.
func (p *parser) parseHeading() (*Heading, bool) {
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		end = len(p.src) - p.pos
	}
	line := p.src[p.pos : p.pos+end]
	body := strings.TrimRight(line, " \t\r")

	lead := len(body) - len(strings.TrimLeft(body, "="))
	tail := len(body) - len(strings.TrimRight(body, "="))
	level := min(lead, tail, 6)
	if level == 0 || len(body) <= 2*level {
		return nil, false
	}

	inner := &parser{src: body[level : len(body)-level]}
	title, _, _ := inner.parse(nil, false)

	p.pos += end
	return &Heading{Title: title, Level: level, Trailing: line[len(body):]}, true
}
