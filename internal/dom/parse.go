// internal/dom/parse.go
package dom

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// maxTextLen caps the inner text carried on a snapshot element. Labels and
// widget options are short; anything longer is not useful for matching.
const maxTextLen = 256

// textBearingTags are the tags whose inner text participates in label or
// option matching. Text of other containers is not captured.
var textBearingTags = map[string]bool{
	"label": true, "option": true, "button": true, "a": true, "span": true,
	"div": true, "legend": true, "td": true, "th": true, "li": true, "p": true,
}

// ParseHTML builds a snapshot from serialized HTML. This is the static
// backend: computed style is resolved from inline style attributes only, and
// the bounding box is taken from inline width/height pixel values. It serves
// the inspect command and the test suite; the live capture path reads real
// computed styles instead.
func ParseHTML(r io.Reader) (*Snapshot, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return SnapshotFromNode(doc), nil
}

// SnapshotFromNode builds a snapshot from an already-parsed document.
func SnapshotFromNode(doc *html.Node) *Snapshot {
	snap := &Snapshot{}
	var walk func(n *html.Node, parent *Element)
	walk = func(n *html.Node, parent *Element) {
		var self *Element
		if n.Type == html.ElementNode {
			self = buildElement(n, parent, len(snap.Elements))
			snap.Elements = append(snap.Elements, self)
			if parent != nil {
				parent.Children = append(parent.Children, self)
			}
		}
		next := parent
		if self != nil {
			next = self
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, next)
		}
	}
	walk(doc, nil)
	return snap
}

func buildElement(n *html.Node, parent *Element, index int) *Element {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}

	el := &Element{
		Index:  index,
		Tag:    strings.ToLower(n.Data),
		Attrs:  attrs,
		Parent: parent,
	}

	if textBearingTags[el.Tag] {
		el.Text = collapseSpace(htmlquery.InnerText(n))
		if len(el.Text) > maxTextLen {
			el.Text = el.Text[:maxTextLen]
		}
	}

	el.Style, el.Box = inlineComputed(el.Tag, attrs["style"])
	if el.Tag == "select" {
		el.Options = parseOptions(n)
	}
	el.Selector = buildSelector(n)
	return el
}

// inlineComputed derives the computed-style subset from an inline style
// attribute, falling back to static defaults.
func inlineComputed(tag, style string) (Computed, Rect) {
	c := Computed{
		Position:   "static",
		Display:    defaultDisplay(tag),
		Visibility: "visible",
		ZIndex:     "auto",
	}
	var box Rect

	for _, part := range strings.Split(style, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.ToLower(strings.TrimSpace(kv[1]))
		switch prop {
		case "position":
			c.Position = val
		case "display":
			c.Display = val
		case "visibility":
			c.Visibility = val
		case "z-index":
			c.ZIndex = val
		case "width":
			box.Width = parsePx(val)
		case "height":
			box.Height = parsePx(val)
		}
	}
	return c, box
}

func defaultDisplay(tag string) string {
	switch tag {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "form", "header", "footer", "section", "article",
		"nav", "main", "fieldset", "label":
		return "block"
	case "input", "button", "textarea", "select", "img":
		return "inline-block"
	default:
		return "inline"
	}
}

func parsePx(val string) float64 {
	val = strings.TrimSuffix(strings.TrimSpace(val), "px")
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseOptions(selectNode *html.Node) []Option {
	var options []Option
	for _, n := range htmlquery.Find(selectNode, ".//option") {
		value := htmlquery.SelectAttr(n, "value")
		text := collapseSpace(htmlquery.InnerText(n))
		// A missing value attribute means the text is the submitted value.
		if value == "" {
			value = text
		}
		options = append(options, Option{Value: value, Text: text})
	}
	return options
}

// buildSelector generates a CSS path unique enough to re-locate the element
// in the live DOM. An id short-circuits the path.
func buildSelector(n *html.Node) string {
	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if id := htmlquery.SelectAttr(cur, "id"); id != "" {
			parts = append(parts, fmt.Sprintf("#%s", id))
			break
		}
		nth := 1
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if sib.Type == html.ElementNode && sib.Data == cur.Data {
				nth++
			}
		}
		parts = append(parts, fmt.Sprintf("%s:nth-of-type(%d)", strings.ToLower(cur.Data), nth))
	}
	// Reverse into document order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
