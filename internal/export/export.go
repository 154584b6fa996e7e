// Package export reads MediaWiki XML dumps as produced by
// Special:Export or dumpBackup.php.
package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// ErrNoWikiHost is returned when the site info carries no usable base URL
var ErrNoWikiHost = errors.New("export does not declare a wiki host")

// Page is one page of the export
type Page struct {
	Title      string
	Namespace  int
	IsRedirect bool
	// HasRevision is false when the page element has no revision at all
	HasRevision bool
	// Text is the raw wikitext of the page's latest revision
	Text string
}

// SiteInfo describes the wiki the export came from
type SiteInfo struct {
	SiteName  string `xml:"sitename"`
	DBName    string `xml:"dbname"`
	Base      string `xml:"base"`
	Generator string `xml:"generator"`
}

// Export is a fully decoded dump
type Export struct {
	SiteInfo SiteInfo
	Pages    []Page
}

type document struct {
	SiteInfo SiteInfo  `xml:"siteinfo"`
	Pages    []xmlPage `xml:"page"`
}

type xmlPage struct {
	Title     string        `xml:"title"`
	Namespace int           `xml:"ns"`
	Redirect  *xmlRedirect  `xml:"redirect"`
	Revisions []xmlRevision `xml:"revision"`
}

type xmlRedirect struct {
	Title string `xml:"title,attr"`
}

type xmlRevision struct {
	Text *xmlText `xml:"text"`
}

type xmlText struct {
	Value string `xml:",chardata"`
}

// LoadFile reads and decodes the export at path
func LoadFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a whole export document. Element names are matched
// regardless of the export schema version's namespace. Pages without a
// title are dropped.
func Load(r io.Reader) (*Export, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse export XML: %w", err)
	}

	exp := &Export{SiteInfo: doc.SiteInfo}
	for _, p := range doc.Pages {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}

		page := Page{
			Title:      title,
			Namespace:  p.Namespace,
			IsRedirect: p.Redirect != nil,
		}
		if n := len(p.Revisions); n > 0 {
			page.HasRevision = true
			if text := p.Revisions[n-1].Text; text != nil {
				page.Text = text.Value
			}
		}
		exp.Pages = append(exp.Pages, page)
	}

	return exp, nil
}

// BaseURL returns the parsed base URL of the wiki
func (e *Export) BaseURL() (*url.URL, error) {
	base := strings.TrimSpace(e.SiteInfo.Base)
	if base == "" {
		return nil, ErrNoWikiHost
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoWikiHost, err)
	}
	if u.Host == "" {
		return nil, ErrNoWikiHost
	}
	return u, nil
}

// Host returns the host name (with port, if any) of the wiki
func (e *Export) Host() (string, error) {
	u, err := e.BaseURL()
	if err != nil {
		return "", err
	}
	return u.Host, nil
}
