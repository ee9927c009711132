// Package htmlutil holds the small HTML helpers shared by the surface and
// resource renderers.
package htmlutil

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Escape returns s with HTML metacharacters escaped.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Pre wraps escaped text in a preformatted block.
func Pre(s string) string {
	return "<pre>" + Escape(s) + "</pre>"
}

// Code wraps escaped text in a preformatted code block.
func Code(s string) string {
	return "<pre><code>" + Escape(s) + "</code></pre>"
}

// PrettyJSON renders v as an indented JSON block. Values that cannot be
// marshaled fall back to their Go string form.
func PrettyJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Pre(fmt.Sprintf("%v", v))
	}
	return Code(string(out))
}

// DataURI returns content as a data: URI for the given mime type. Content
// already in data: URI form passes through unchanged. The content string is
// assumed to be base64 when it is not already a URI.
func DataURI(mimeType, content string) string {
	if strings.HasPrefix(content, "data:") {
		return content
	}
	return "data:" + mimeType + ";base64," + content
}

// Img renders an image element for a data URI or URL.
func Img(src, alt string) string {
	return `<img src="` + Escape(src) + `" alt="` + Escape(alt) + `"/>`
}
