package a2ui

import (
	"fmt"
	"strings"

	"github.com/datalayer/agentkit/internal/htmlutil"
)

// Render renders the named surface to HTML. A custom renderer registered
// for the surface's mime type takes precedence over the built-in dispatch.
func (e *Engine) Render(sessionID, name string) (string, error) {
	surface, ok := e.Surface(sessionID, name)
	if !ok {
		return "", fmt.Errorf("unknown surface %q", name)
	}

	e.mu.RLock()
	custom := e.renderers[surface.MimeType]
	e.mu.RUnlock()
	if custom != nil {
		return custom(surface.Content)
	}
	return renderBuiltin(surface.MimeType, surface.Content), nil
}

// renderBuiltin is the default mime-type dispatch. Markdown stays
// preformatted here; callers wanting parsed markdown register
// MarkdownRenderer.
func renderBuiltin(mimeType string, content any) string {
	if content == nil {
		return ""
	}

	switch {
	case mimeType == "text/plain" || mimeType == "text/markdown":
		return htmlutil.Pre(stringify(content))
	case mimeType == "text/html":
		// Raw injection; sanitizing is the producer's responsibility.
		return stringify(content)
	case mimeType == "application/json":
		return htmlutil.PrettyJSON(content)
	case strings.HasPrefix(mimeType, "image/"):
		return htmlutil.Img(htmlutil.DataURI(mimeType, stringify(content)), "surface")
	default:
		if s, ok := content.(string); ok {
			return htmlutil.Escape(s)
		}
		return htmlutil.PrettyJSON(content)
	}
}

func stringify(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", content)
}

// MarkdownRenderer parses markdown content into HTML. Register it for
// "text/markdown" to opt in to parsed output.
func MarkdownRenderer(content any) (string, error) {
	return htmlutil.Markdown(stringify(content))
}
