// internal/dom/element.go
package dom

import (
	"strconv"
	"strings"
)

// Computed holds the subset of computed style the fill engine cares about.
// The live backend reads these from getComputedStyle; the static backend
// resolves them from inline style attributes only.
type Computed struct {
	Position   string `json:"position"`
	Display    string `json:"display"`
	Visibility string `json:"visibility"`
	ZIndex     string `json:"zIndex"`
}

// Rect is the border-box size of an element.
type Rect struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Option is one <option> of a <select>.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Element is one node of a page snapshot. Snapshots are immutable once built;
// a fresh snapshot is captured for every extraction or injection pass, so an
// Element is never held across passes.
type Element struct {
	Index    int
	Tag      string
	Attrs    map[string]string
	Text     string
	Style    Computed
	Box      Rect
	Options  []Option
	Selector string

	Parent   *Element
	Children []*Element
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

// Has reports whether the attribute is present, regardless of value.
func (e *Element) Has(name string) bool {
	if e.Attrs == nil {
		return false
	}
	_, ok := e.Attrs[name]
	return ok
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.Attr("id") }

// Name returns the name attribute.
func (e *Element) Name() string { return e.Attr("name") }

// InputType returns the lowercased type attribute of an input, defaulting to
// "text". For non-inputs it returns the empty string.
func (e *Element) InputType() string {
	if e.Tag != "input" {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(e.Attr("type")))
	if t == "" {
		return "text"
	}
	return t
}

// IsFormControl reports whether the element is a native form control.
func (e *Element) IsFormControl() bool {
	switch e.Tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// ClassContains reports whether the class attribute contains the given
// lowercase substring. Widget detection matches marker fragments like
// "ant-picker" rather than exact class tokens, mirroring how design systems
// suffix their base classes.
func (e *Element) ClassContains(fragment string) bool {
	return strings.Contains(strings.ToLower(e.Attr("class")), fragment)
}

// ZIndexValue parses the computed z-index, returning 0 for "auto" or any
// indeterminate value.
func (e *Element) ZIndexValue() int {
	z, err := strconv.Atoi(strings.TrimSpace(e.Style.ZIndex))
	if err != nil {
		return 0
	}
	return z
}

// Hidden reports whether the element is display:none or visibility:hidden.
func (e *Element) Hidden() bool {
	return e.Style.Display == "none" || e.Style.Visibility == "hidden"
}

// Closest walks the element and its ancestors and returns the first one
// matching the predicate, or nil.
func (e *Element) Closest(match func(*Element) bool) *Element {
	for cur := e; cur != nil; cur = cur.Parent {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// ContainedIn reports whether root is the element itself or one of its
// ancestors. A nil root means the whole document and always contains e.
func (e *Element) ContainedIn(root *Element) bool {
	if root == nil {
		return true
	}
	for cur := e; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}
