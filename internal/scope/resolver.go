// internal/scope/resolver.go
package scope

import (
	"strings"

	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
)

// UIMarkerAttr marks the root of the extension's own injected UI. Anything
// inside a marked subtree is invisible to scope resolution, so the fill
// panel never detects itself as the active modal.
const UIMarkerAttr = "data-autofill-ui"

const (
	// A positioned element stacking at or above this z-index is treated as
	// an overlay even without an explicit dialog signal.
	overlayZIndex = 1000

	// Minimum plausible dialog dimensions. Anything smaller is a tooltip or
	// a dropdown, not a modal form surface.
	minModalWidth  = 200.0
	minModalHeight = 100.0
)

// dialogClassTokens are class-name fragments that signal a dialog container.
var dialogClassTokens = []string{"modal", "dialog", "popup", "overlay"}

// Resolve determines the subtree that should be searched for form controls:
// the topmost qualifying modal overlay, or the whole document when none
// exists. It is a pure function of the snapshot, recomputed independently by
// every extraction and injection pass. A nil return means whole-document
// scope. Resolve never fails; a fault while inspecting one element discards
// that element only.
func Resolve(snap *dom.Snapshot, logger *zap.Logger) *dom.Element {
	if logger == nil {
		logger = zap.NewNop()
	}

	var best *dom.Element
	bestZ := -1
	for _, el := range snap.Elements {
		qualifies, z := inspect(snap, el, logger)
		if !qualifies {
			continue
		}
		// Strictly greater wins; the first candidate encountered keeps ties.
		if z > bestZ {
			best = el
			bestZ = z
		}
	}

	if best != nil {
		logger.Debug("resolved modal scope",
			zap.String("selector", best.Selector),
			zap.Int("zIndex", bestZ))
	}
	return best
}

// inspect applies the modal-candidate predicate to a single element. Panics
// raised while reading a malformed element are recovered here so one bad
// node cannot abort the whole resolution.
func inspect(snap *dom.Snapshot, el *dom.Element, logger *zap.Logger) (qualifies bool, z int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("skipping element during scope resolution",
				zap.String("selector", el.Selector),
				zap.Any("panic", r))
			qualifies = false
		}
	}()

	if insideOwnUI(el) {
		return false, 0
	}

	pos := el.Style.Position
	if pos != "fixed" && pos != "absolute" {
		return false, 0
	}
	if el.Hidden() {
		return false, 0
	}

	z = el.ZIndexValue()
	if z < overlayZIndex && !hasDialogSignal(el) {
		return false, 0
	}
	if !snap.ContainsFormControl(el) {
		return false, 0
	}
	if el.Box.Width < minModalWidth || el.Box.Height < minModalHeight {
		return false, 0
	}
	return true, z
}

func insideOwnUI(el *dom.Element) bool {
	return el.Closest(func(e *dom.Element) bool { return e.Has(UIMarkerAttr) }) != nil
}

func hasDialogSignal(el *dom.Element) bool {
	if el.Attr("role") == "dialog" {
		return true
	}
	class := strings.ToLower(el.Attr("class"))
	for _, token := range dialogClassTokens {
		if strings.Contains(class, token) {
			return true
		}
	}
	return false
}
