package mcpui

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/datalayer/agentkit/internal/htmlutil"
)

// elementTags maps declarative element types to HTML tags. Unknown types
// fall back to div.
var elementTags = map[string]string{
	"container": "div",
	"text":      "span",
	"button":    "button",
	"input":     "input",
	"form":      "form",
	"list":      "ul",
	"listItem":  "li",
	"heading":   "h3",
	"paragraph": "p",
	"link":      "a",
	"image":     "img",
	"code":      "code",
	"pre":       "pre",
}

// voidTags render without a closing tag.
var voidTags = map[string]bool{
	"input": true,
	"img":   true,
}

func (e *Engine) renderList(resources []Resource) string {
	var b strings.Builder
	b.WriteString(`<ul class="mcpui-resources">`)
	for _, res := range resources {
		b.WriteString("<li>")
		label := res.Name
		if label == "" {
			label = res.URI
		}
		b.WriteString("<strong>" + htmlutil.Escape(label) + "</strong>")
		if res.Description != "" {
			b.WriteString(" " + htmlutil.Escape(res.Description))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// renderResource dispatches on the resource's payload form and mime type.
func (e *Engine) renderResource(res Resource) string {
	if custom := e.customRenderer(res.MimeType); custom != nil {
		html, err := custom(res)
		if err == nil {
			return html
		}
		e.log.WithError(err).WithField("uri", res.URI).Warn("custom renderer failed, using builtin")
	}

	switch {
	case res.Text != "" && res.MimeType == "text/html":
		// Raw injection; sanitizing is the producer's responsibility.
		return res.Text
	case res.Text != "" && res.MimeType == "text/markdown":
		return htmlutil.Pre(res.Text)
	case res.Text != "" && res.MimeType == "application/json":
		var v any
		if err := json.Unmarshal([]byte(res.Text), &v); err != nil {
			return htmlutil.Pre(res.Text)
		}
		return htmlutil.PrettyJSON(v)
	case res.Text != "" && strings.HasPrefix(res.MimeType, "text/"):
		return htmlutil.Code(res.Text)
	case res.Text != "":
		return htmlutil.Pre(res.Text)
	case res.Blob != "" && strings.HasPrefix(res.MimeType, "image/"):
		return htmlutil.Img(htmlutil.DataURI(res.MimeType, res.Blob), res.Name)
	case res.Blob != "":
		uri := htmlutil.DataURI(res.MimeType, res.Blob)
		name := res.Name
		if name == "" {
			name = res.URI
		}
		return `<a href="` + htmlutil.Escape(uri) + `" download>` + htmlutil.Escape(name) + `</a>`
	case res.Content != nil:
		return htmlutil.PrettyJSON(res.Content)
	default:
		return `<span class="mcpui-resource">` + htmlutil.Escape(res.URI) + `</span>`
	}
}

// renderElement renders a declarative element tree recursively.
func renderElement(el UIElement) string {
	tag, ok := elementTags[el.Type]
	if !ok {
		tag = "div"
	}

	var b strings.Builder
	b.WriteString("<" + tag + renderProps(el.Props) + ">")
	if voidTags[tag] {
		return b.String()
	}
	if text, ok := el.Props["text"].(string); ok {
		b.WriteString(htmlutil.Escape(text))
	}
	for _, child := range el.Children {
		b.WriteString(renderElement(child))
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

// renderProps serializes props as attributes, in sorted order so output is
// deterministic. The style map becomes an inline style attribute; the text
// prop becomes element content and is skipped here.
func renderProps(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		if key == "text" || key == "children" {
			continue
		}
		if key == "style" {
			if style, ok := props[key].(map[string]any); ok {
				b.WriteString(` style="` + htmlutil.Escape(styleAttr(style)) + `"`)
			}
			continue
		}
		switch value := props[key].(type) {
		case string:
			b.WriteString(" " + key + `="` + htmlutil.Escape(value) + `"`)
		case bool:
			if value {
				b.WriteString(" " + key)
			}
		case float64:
			b.WriteString(" " + key + `="` + strconv.FormatFloat(value, 'f', -1, 64) + `"`)
		}
	}
	return b.String()
}

func styleAttr(style map[string]any) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		if value, ok := style[key].(string); ok {
			parts = append(parts, key+": "+value)
		}
	}
	return strings.Join(parts, "; ")
}

