// atoms.go contains pure helper functions with no dependencies.
package imagegen

import (
	"strings"
)

// truncateText shortens s to at most max runes.
func truncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// extensionFromContentType maps an image MIME type to a file extension.
// Parameters after a semicolon are ignored. Unknown image/* types fall
// back to .png; non-image types return "".
func extensionFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}

	lower := strings.ToLower(contentType)
	if idx := strings.Index(lower, ";"); idx != -1 {
		lower = lower[:idx]
	}
	lower = strings.TrimSpace(lower)

	switch lower {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		if strings.HasPrefix(lower, "image/") {
			return ".png"
		}
		return ""
	}
}
