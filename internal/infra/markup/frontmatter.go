package markup

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter detects and strips a front matter block (YAML "---", TOML "+++"
// or JSON delimiters) from the top of a document.
type FrontMatter struct{}

// Split implements the front matter splitter used by the summarize pipeline.
func (FrontMatter) Split(raw string) (string, bool, error) {
	return SplitFrontMatter(raw)
}

// SplitFrontMatter returns the body that follows the front matter. When the
// document has no front matter, the whole content is the body and found is false.
func SplitFrontMatter(raw string) (body string, found bool, err error) {
	var meta map[string]interface{}

	rest, err := frontmatter.Parse(strings.NewReader(raw), &meta)
	if err != nil {
		return "", false, fmt.Errorf("parse front matter: %w", err)
	}

	if len(rest) == len(raw) {
		return raw, false, nil
	}
	return string(rest), true, nil
}
