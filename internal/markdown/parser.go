// Package markdown renders the two kinds of markdown the app stores:
// bundled guide articles (with frontmatter) and the free-form plan
// text athletes attach to targets. Raw HTML in the source is escaped,
// not passed through.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			// heading ids give guide sections stable anchors
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// phone-typed plan text relies on single newlines
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{md: md}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.md.Convert(source, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Plan renders athlete-typed plan text. Hard wraps are kept so text
// written on a phone keyboard keeps its line breaks. Empty input stays
// empty, letting responses omit the field.
func (p *Parser) Plan(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	html, err := p.Parse([]byte(text))
	if err != nil {
		return "", err
	}
	return string(html), nil
}

func (p *Parser) ParseWithFrontmatter(source []byte) ([]byte, map[string]any, error) {
	ctx := parser.NewContext()

	var buf bytes.Buffer
	if err := p.md.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return nil, nil, err
	}

	meta := map[string]any{}
	if data := frontmatter.Get(ctx); data != nil {
		// A malformed block renders the article without metadata
		// instead of failing the whole guide list.
		if err := data.Decode(&meta); err != nil {
			meta = map[string]any{}
		}
	}

	return buf.Bytes(), meta, nil
}
