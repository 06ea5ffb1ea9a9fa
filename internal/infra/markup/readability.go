package markup

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ErrNoReadableContent is returned when readability finds no article text.
var ErrNoReadableContent = errors.New("no readable content found")

// extractReadable runs the Mozilla Readability algorithm over an HTML body and
// returns the main article text. Navigation, sidebars and other boilerplate
// around the article are dropped.
func extractReadable(htmlBody string, base *url.URL) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlBody), base)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	if strings.TrimSpace(article.TextContent) == "" {
		return "", ErrNoReadableContent
	}

	return article.TextContent, nil
}
