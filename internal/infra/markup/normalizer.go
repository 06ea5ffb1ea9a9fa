// Package markup turns document bodies into plain text for summarization prompts.
//
// Bodies are blog posts: markdown mixed with raw HTML fragments. The normalizer
// optionally renders the markdown with goldmark, then extracts the visible text
// with goquery (or go-readability), discarding tags, comments, scripts and styles.
// Extraction is best effort: malformed markup never fails a document.
package markup

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Extractor selects the text extraction strategy.
type Extractor string

const (
	// ExtractGoquery keeps all visible text of the body.
	ExtractGoquery Extractor = "goquery"
	// ExtractReadability keeps only the main article text, falling back to goquery.
	ExtractReadability Extractor = "readability"
)

// Options configures a Normalizer.
type Options struct {
	// RenderMarkdown renders the body as markdown before extracting text,
	// so markdown syntax is removed along with HTML tags.
	RenderMarkdown bool

	// Extractor is the extraction strategy. Default: goquery
	Extractor Extractor
}

// Normalizer converts a markup body into cleaned content.
// It is safe for concurrent use.
type Normalizer struct {
	opts    Options
	md      goldmark.Markdown
	baseURL *url.URL
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts Options) *Normalizer {
	if opts.Extractor == "" {
		opts.Extractor = ExtractGoquery
	}

	return &Normalizer{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			// Raw HTML fragments embedded in posts must survive rendering.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		baseURL: &url.URL{Scheme: "file", Path: "/"},
	}
}

// Normalize returns the visible text of body. On any extraction error it falls
// back to the previous stage's output rather than failing.
func (n *Normalizer) Normalize(body string) string {
	source := body

	if n.opts.RenderMarkdown {
		rendered, err := renderMarkdown(n.md, source)
		if err != nil {
			slog.Debug("markdown rendering failed, using raw body",
				slog.Any("error", err))
		} else {
			source = rendered
		}
	}

	if n.opts.Extractor == ExtractReadability {
		text, err := extractReadable(source, n.baseURL)
		if err == nil {
			return collapseWhitespace(text)
		}
		slog.Debug("readability extraction failed, falling back to goquery",
			slog.Any("error", err))
	}

	text, err := StripTags(source)
	if err != nil {
		slog.Debug("html text extraction failed, using source text",
			slog.Any("error", err))
		return collapseWhitespace(source)
	}
	return text
}

// collapseWhitespace trims every line, squeezes inner runs of spaces and drops
// repeated blank lines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
