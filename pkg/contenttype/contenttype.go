// Package contenttype classifies message payloads so the auto content
// view can pick a renderer without sniffing twice.
package contenttype

import (
	"mime"
	"strings"
	"unicode/utf8"
)

// IsJSON reports whether the content-type header value denotes JSON,
// including structured-suffix types like application/vnd.api+json.
func IsJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.Contains(mediaType, "json")
}

// IsBinary reports whether a payload should be treated as binary.
// Known text and binary media types decide directly; unknown or empty
// content types fall back to UTF-8 validation of the data.
func IsBinary(contentType string, data []byte) bool {
	ct := strings.ToLower(contentType)

	switch {
	case strings.HasPrefix(ct, "text/"),
		strings.Contains(ct, "json"),
		strings.Contains(ct, "xml"),
		strings.Contains(ct, "javascript"),
		strings.Contains(ct, "html"),
		strings.Contains(ct, "css"),
		strings.Contains(ct, "yaml"),
		strings.Contains(ct, "form-urlencoded"):
		return false
	case strings.HasPrefix(ct, "image/"),
		strings.HasPrefix(ct, "audio/"),
		strings.HasPrefix(ct, "video/"),
		strings.Contains(ct, "octet-stream"),
		strings.Contains(ct, "gzip"),
		strings.Contains(ct, "zip"),
		strings.Contains(ct, "pdf"),
		strings.Contains(ct, "protobuf"):
		return true
	}

	return !utf8.Valid(data)
}
