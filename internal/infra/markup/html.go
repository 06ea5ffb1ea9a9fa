package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// blockSelector lists elements whose end marks a line break in visible text.
const blockSelector = "p, div, br, hr, li, dt, dd, tr, pre, blockquote, section, article, " +
	"header, footer, aside, figure, figcaption, table, ul, ol, h1, h2, h3, h4, h5, h6"

// invisibleSelector lists elements whose text content is never shown to readers.
const invisibleSelector = "script, style, noscript, template, iframe"

// StripTags parses s as HTML and returns its visible text with whitespace
// normalized. Comments and invisible elements are dropped; block elements
// become line breaks. The HTML5 parser recovers from malformed markup.
//
//	StripTags("<p>Hello <b>world</b></p>") // "Hello world"
func StripTags(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(invisibleSelector).Remove()
	doc.Find(blockSelector).AfterNodes(&html.Node{Type: html.TextNode, Data: "\n"})

	return collapseWhitespace(doc.Text()), nil
}

// renderMarkdown converts markdown text to HTML.
func renderMarkdown(md goldmark.Markdown, src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
