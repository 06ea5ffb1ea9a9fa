package entity

import (
	"fmt"
	"strings"
)

// maxMarkerLength bounds the marker literal; markers are short placeholders.
const maxMarkerLength = 256

// ValidateFileExt validates the document extension filter.
// The extension must start with a dot and must not contain path separators.
func ValidateFileExt(ext string) error {
	if ext == "" {
		return &ValidationError{Field: "file_ext", Message: "file extension is required"}
	}
	if !strings.HasPrefix(ext, ".") {
		return &ValidationError{Field: "file_ext", Message: fmt.Sprintf("file extension %q must start with '.'", ext)}
	}
	if strings.ContainsAny(ext, `/\`) {
		return &ValidationError{Field: "file_ext", Message: "file extension must not contain path separators"}
	}
	return nil
}

// ValidateMarker validates the insertion marker literal.
func ValidateMarker(marker string) error {
	if strings.TrimSpace(marker) == "" {
		return &ValidationError{Field: "marker", Message: "insertion marker is required"}
	}
	if len(marker) > maxMarkerLength {
		return &ValidationError{
			Field:   "marker",
			Message: fmt.Sprintf("insertion marker must not exceed %d bytes", maxMarkerLength),
		}
	}
	if strings.Contains(marker, "\n") {
		return &ValidationError{Field: "marker", Message: "insertion marker must be a single line"}
	}
	return nil
}

// ValidateHeaderOffset validates the front matter offset. -1 selects automatic
// front matter detection.
func ValidateHeaderOffset(offset int) error {
	if offset < -1 {
		return &ValidationError{
			Field:   "header_offset",
			Message: fmt.Sprintf("header offset must be >= -1, got %d", offset),
		}
	}
	return nil
}
