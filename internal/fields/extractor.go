// internal/fields/extractor.go
package fields

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
)

// Descriptor is the extracted metadata for one fillable control. It is what
// gets sent to the generation endpoint, so the label must carry enough
// meaning for a model to invent a plausible value.
type Descriptor struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

// UnnamedLabel is the sentinel label for controls with no identifying signal
// at all. Controls that end up with it and no usable name/id are dropped.
const UnnamedLabel = "unnamed"

// generatedID matches framework-assigned ids of the React useId shape
// (":r0:", ":r17:"). Such ids carry no meaning and are treated as absent
// for label-fallback purposes.
var generatedID = regexp.MustCompile(`^:r\d+:$`)

// requiredMarkers are glyphs commonly appended to label text to mark a
// required field; they are stripped from the resolved label.
const requiredMarkers = "*＊:： \t\n"

// Extract walks the controls inside root and produces one descriptor per
// fillable control, in document order. Radios are deliberately excluded here
// even though the injector writes them: one descriptor per radio button
// would flood the generation endpoint with near-duplicates of the same
// group. The injector re-includes them and matches each button by its value
// attribute instead.
func Extract(snap *dom.Snapshot, root *dom.Element, logger *zap.Logger) []Descriptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	var out []Descriptor
	for _, el := range snap.ControlsWithin(root) {
		desc, ok := describe(snap, root, el, logger)
		if ok {
			out = append(out, desc)
		}
	}
	return out
}

// describe builds the descriptor for a single control. Faults while reading
// one control discard that control only.
func describe(snap *dom.Snapshot, root, el *dom.Element, logger *zap.Logger) (desc Descriptor, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("skipping control during extraction",
				zap.String("selector", el.Selector),
				zap.Any("panic", r))
			ok = false
		}
	}()

	if !Eligible(el, false) {
		return Descriptor{}, false
	}

	label := LabelFor(snap, root, el)
	name, id := UsableIdentity(el)
	if lowInformation(label) && name == "" && id == "" {
		// No label worth generating for and nothing to match a value back
		// against: pure noise.
		return Descriptor{}, false
	}

	return Descriptor{
		Label:       label,
		Type:        controlType(el),
		Name:        el.Name(),
		ID:          el.ID(),
		Placeholder: el.Attr("placeholder"),
		Required:    el.Has("required") || el.Attr("aria-required") == "true",
	}, true
}

// Eligible reports whether a control participates in a pass. Extraction
// passes exclude radios (includeRadio=false); injection passes include them.
func Eligible(el *dom.Element, includeRadio bool) bool {
	if el.Has("disabled") {
		return false
	}
	switch el.Tag {
	case "textarea", "select":
		return true
	case "input":
		switch el.InputType() {
		case "hidden", "submit", "button", "reset":
			return false
		case "radio":
			return includeRadio
		default:
			return true
		}
	}
	return false
}

// LabelFor resolves the human-meaningful label of a control, by priority:
// a <label for=...> inside the scope, then a non-generated id, then a
// non-generated name, then the placeholder, then the native type.
func LabelFor(snap *dom.Snapshot, root, el *dom.Element) string {
	if lbl := snap.LabelFor(el.ID(), root); lbl != nil {
		if text := strings.TrimRight(lbl.Text, requiredMarkers); text != "" {
			return text
		}
	}
	name, id := UsableIdentity(el)
	if id != "" {
		return id
	}
	if name != "" {
		return name
	}
	if p := el.Attr("placeholder"); p != "" {
		return p
	}
	if t := controlType(el); t != "" {
		return t
	}
	return UnnamedLabel
}

// UsableIdentity returns the control's name and id with framework-generated
// ids filtered out.
func UsableIdentity(el *dom.Element) (name, id string) {
	name = el.Name()
	if generatedID.MatchString(name) {
		name = ""
	}
	id = el.ID()
	if generatedID.MatchString(id) {
		id = ""
	}
	return name, id
}

func controlType(el *dom.Element) string {
	switch el.Tag {
	case "textarea":
		return "textarea"
	case "select":
		return "select"
	default:
		return el.InputType()
	}
}

func lowInformation(label string) bool {
	switch label {
	case "text", "input", UnnamedLabel:
		return true
	}
	return utf8.RuneCountInString(label) <= 1
}

// Keys assigns the ValueMap key for each descriptor, by the convention the
// generation contract declares: name, then id, then a positional fallback.
func Keys(descs []Descriptor) []string {
	keys := make([]string, len(descs))
	for i, d := range descs {
		switch {
		case d.Name != "":
			keys[i] = d.Name
		case d.ID != "":
			keys[i] = d.ID
		default:
			keys[i] = fmt.Sprintf("field%d", i+1)
		}
	}
	return keys
}
