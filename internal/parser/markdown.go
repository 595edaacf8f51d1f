package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/quillmark/quillmark/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
//
// Raw HTML is passed through unsanitized: essay sources are trusted,
// and marker brackets must reach the scanner intact. The footnote
// extension handles [^n] references that carry definitions; references
// without definitions stay literal for the scanner to pick up.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Footnote, extension.Typographer),
		goldmark.WithRendererOptions(ghtml.WithUnsafe()),
	)

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	title := firstHeading(md, src)
	if title == "" {
		title = titleFromFilename(filename)
	}

	return &document.Document{
		Title:  title,
		Body:   buf.String(),
		Format: "markdown",
	}, nil
}

// firstHeading walks the AST and returns the text of the first level-1
// heading, or "" if there is none.
func firstHeading(md goldmark.Markdown, src []byte) string {
	doc := md.Parser().Parse(text.NewReader(src))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return string(h.Text(src))
		}
	}
	return ""
}
