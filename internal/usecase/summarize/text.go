package summarize

import (
	"strings"

	"blog-summarizer/internal/config"
)

// ExtractBody drops the first offset lines and concatenates the rest. Lines keep
// their terminators, so the body is the raw remainder of the document. An
// offset at or beyond the line count yields an empty body.
func ExtractBody(lines []string, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(lines) {
		return ""
	}
	return strings.Join(lines[offset:], "")
}

// FinishSummary cuts generated text just after its last period, dropping any
// trailing partial sentence. Text without a period is returned unchanged.
//
//	FinishSummary("One. Two. Thr") // "One. Two."
//	FinishSummary("No period")     // "No period"
func FinishSummary(generated string) string {
	i := strings.LastIndex(generated, ".")
	if i < 0 {
		return generated
	}
	return generated[:i+1]
}

// ReplaceMarker substitutes summary for marker in a document made of header
// followed by body, and returns the new content with the number of
// replacements. ReplaceAll substitutes every occurrence in the whole content,
// header included; ReplaceFirst substitutes only the first occurrence in the body.
func ReplaceMarker(header, body, marker, summary string, mode config.ReplaceMode) (string, int) {
	if marker == "" {
		return header + body, 0
	}

	if mode == config.ReplaceFirst {
		if !strings.Contains(body, marker) {
			return header + body, 0
		}
		return header + strings.Replace(body, marker, summary, 1), 1
	}

	content := header + body
	n := strings.Count(content, marker)
	return strings.ReplaceAll(content, marker, summary), n
}
