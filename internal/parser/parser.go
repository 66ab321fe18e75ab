package parser

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"ai-visibility-validator/internal/models"
)

const (
	DefaultMaxElements  = 4000
	DefaultMaxTextChars = 280
)

type Parser struct {
	maxElements  int
	maxTextChars int
}

func New() *Parser {
	return &Parser{maxElements: DefaultMaxElements, maxTextChars: DefaultMaxTextChars}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

var skipTags = map[string]bool{"script": true, "style": true, "noscript": true, "template": true}

var navigationTags = map[string]bool{"nav": true, "header": true, "footer": true, "aside": true}

var interactiveTags = map[string]bool{"button": true, "input": true, "select": true, "textarea": true}

var dynamicMarkers = []string{"dynamic", "loaded", "ajax", "async"}

// Extract reads an HTML document and returns every non-empty text node under
// <body> as it would be seen without running scripts.
func (p *Parser) Extract(r io.Reader, contentType string) (models.Snapshot, error) {
	// Decode to UTF-8 if needed
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return models.Snapshot{}, err
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return models.Snapshot{}, err
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		Canonical: strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")),
		Language:  strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		Elements:  []models.ContentElement{},
	}
	snap.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if snap.Description == "" {
		snap.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return snap, nil
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(snap.Elements) >= p.maxElements {
			return
		}
		switch n.Type {
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
		case html.TextNode:
			if el, ok := p.element(n); ok {
				snap.Elements = append(snap.Elements, el)
				if el.Visible {
					snap.TotalWords += el.WordCount
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body.Nodes[0])

	return snap, nil
}

func (p *Parser) element(n *html.Node) (models.ContentElement, bool) {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return models.ContentElement{}, false
	}
	raw := strings.TrimSpace(n.Data)
	if raw == "" {
		return models.ContentElement{}, false
	}
	words := len(strings.Fields(raw))

	text := whitespaceRe.ReplaceAllString(raw, " ")
	if utf8.RuneCountInString(text) > p.maxTextChars {
		text = string([]rune(text)[:p.maxTextChars]) + "..."
	}

	className := attr(parent, "class")
	return models.ContentElement{
		Text:      text,
		WordCount: words,
		Visible:   visible(parent),
		Category:  category(parent, className),
		TagName:   parent.Data,
		ClassName: className,
		ID:        attr(parent, "id"),
	}, true
}

func category(el *html.Node, className string) string {
	for _, m := range dynamicMarkers {
		if strings.Contains(className, m) {
			return "dynamic-content"
		}
	}
	for a := el; a != nil && a.Type == html.ElementNode; a = a.Parent {
		if hasAttr(a, "data-testid") || hasAttr(a, "data-component") {
			return "component"
		}
	}
	tag := el.Data
	switch {
	case navigationTags[tag]:
		return "navigation"
	case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
		return "heading"
	case tag == "p":
		return "paragraph"
	case interactiveTags[tag]:
		return "interactive"
	}
	return "static"
}

// visible walks up from el and reports false when any ancestor is hidden by
// the hidden attribute or an inline style.
func visible(el *html.Node) bool {
	for a := el; a != nil && a.Type == html.ElementNode; a = a.Parent {
		if hasAttr(a, "hidden") || hiddenByStyle(attr(a, "style")) {
			return false
		}
	}
	return true
}

func hiddenByStyle(style string) bool {
	if style == "" {
		return false
	}
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important")))
		switch prop {
		case "display":
			if val == "none" {
				return true
			}
		case "visibility":
			if val == "hidden" {
				return true
			}
		case "opacity":
			if f, err := strconv.ParseFloat(val, 64); err == nil && f == 0 {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
