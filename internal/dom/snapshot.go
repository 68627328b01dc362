// internal/dom/snapshot.go
package dom

// Snapshot is a point-in-time capture of a page, flattened in document order.
// It is never mutated after construction and never cached across operations:
// the scope resolver, field extractor and value injector each work from a
// snapshot captured for that pass.
type Snapshot struct {
	Elements []*Element
}

// Within returns every element contained in root, in document order. A nil
// root means the whole document.
func (s *Snapshot) Within(root *Element) []*Element {
	if root == nil {
		return s.Elements
	}
	var out []*Element
	for _, el := range s.Elements {
		if el != root && el.ContainedIn(root) {
			out = append(out, el)
		}
	}
	return out
}

// ControlsWithin returns the native form controls inside root, in document
// order.
func (s *Snapshot) ControlsWithin(root *Element) []*Element {
	var out []*Element
	for _, el := range s.Within(root) {
		if el.IsFormControl() {
			out = append(out, el)
		}
	}
	return out
}

// LabelFor returns the first <label for=id> element inside root, or nil.
func (s *Snapshot) LabelFor(id string, root *Element) *Element {
	if id == "" {
		return nil
	}
	for _, el := range s.Within(root) {
		if el.Tag == "label" && el.Attr("for") == id {
			return el
		}
	}
	return nil
}

// ContainsFormControl reports whether root has at least one native form
// control descendant.
func (s *Snapshot) ContainsFormControl(root *Element) bool {
	for _, el := range s.Within(root) {
		if el.IsFormControl() {
			return true
		}
	}
	return false
}
