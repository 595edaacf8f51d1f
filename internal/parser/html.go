package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/quillmark/quillmark/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. The body's inner markup is kept as the
// scan buffer; <title> provides the document title when present.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if t := findTitle(root); t != "" {
		title = t
	}

	var body string
	if b := findBody(root); b != nil {
		body, err = innerHTML(b)
	} else {
		body, err = innerHTML(root)
	}
	if err != nil {
		return nil, fmt.Errorf("serialize html: %w", err)
	}

	return &document.Document{
		Title:  title,
		Body:   strings.TrimSpace(body),
		Format: "html",
	}, nil
}

// innerHTML serializes a node's children back to markup.
func innerHTML(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}
