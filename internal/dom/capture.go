// internal/dom/capture.go
package dom

import (
	"context"
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Evaluator executes a JavaScript expression in the page and returns the
// JSON-encoded result. Implemented by the browser session.
type Evaluator interface {
	ExecuteScript(ctx context.Context, script string) (json.RawMessage, error)
}

var fastJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// captureScript collects every element of the live document in document
// order: tag, attributes, the computed-style subset, border box, select
// options, inner text for label-bearing tags, and a CSS path selector. The
// parent field is the index of the parent element in the emitted array.
const captureScript = `(() => {
    const cssPath = (el) => {
        const parts = [];
        for (let cur = el; cur && cur.nodeType === 1; cur = cur.parentElement) {
            if (cur.id) { parts.unshift('#' + CSS.escape(cur.id)); break; }
            let nth = 1;
            for (let sib = cur.previousElementSibling; sib; sib = sib.previousElementSibling) {
                if (sib.tagName === cur.tagName) nth++;
            }
            parts.unshift(cur.tagName.toLowerCase() + ':nth-of-type(' + nth + ')');
        }
        return parts.join(' > ');
    };
    const textTags = new Set(['LABEL','OPTION','BUTTON','A','SPAN','DIV','LEGEND','TD','TH','LI','P']);
    const out = [];
    const indexOf = new Map();
    const all = document.querySelectorAll('*');
    for (let i = 0; i < all.length; i++) {
        const el = all[i];
        const cs = window.getComputedStyle(el);
        const rect = el.getBoundingClientRect();
        const attrs = {};
        for (const a of el.attributes) attrs[a.name.toLowerCase()] = a.value;
        const rec = {
            tag: el.tagName.toLowerCase(),
            parent: el.parentElement && indexOf.has(el.parentElement) ? indexOf.get(el.parentElement) : -1,
            attrs: attrs,
            style: { position: cs.position, display: cs.display, visibility: cs.visibility, zIndex: cs.zIndex },
            rect: { width: rect.width, height: rect.height },
            selector: cssPath(el),
        };
        if (textTags.has(el.tagName)) {
            rec.text = (el.textContent || '').replace(/\s+/g, ' ').trim().slice(0, 256);
        }
        if (el.tagName === 'SELECT') {
            rec.options = Array.from(el.options).map(o => ({
                value: o.value,
                text: (o.textContent || '').replace(/\s+/g, ' ').trim(),
            }));
        }
        indexOf.set(el, i);
        out.push(rec);
    }
    return out;
})()`

// capturedElement mirrors one record of the capture script output.
type capturedElement struct {
	Tag      string            `json:"tag"`
	Parent   int               `json:"parent"`
	Attrs    map[string]string `json:"attrs"`
	Style    Computed          `json:"style"`
	Rect     Rect              `json:"rect"`
	Selector string            `json:"selector"`
	Text     string            `json:"text"`
	Options  []Option          `json:"options"`
}

// Capture takes a fresh snapshot of the live page. It is called once per
// extraction pass and once per injection pass; results are never reused
// across passes.
func Capture(ctx context.Context, ev Evaluator) (*Snapshot, error) {
	raw, err := ev.ExecuteScript(ctx, captureScript)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}

	var records []capturedElement
	if err := fastJSON.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := &Snapshot{Elements: make([]*Element, 0, len(records))}
	for i, rec := range records {
		el := &Element{
			Index:    i,
			Tag:      rec.Tag,
			Attrs:    rec.Attrs,
			Text:     rec.Text,
			Style:    rec.Style,
			Box:      rec.Rect,
			Options:  rec.Options,
			Selector: rec.Selector,
		}
		if rec.Parent >= 0 && rec.Parent < i {
			parent := snap.Elements[rec.Parent]
			el.Parent = parent
			parent.Children = append(parent.Children, el)
		}
		snap.Elements = append(snap.Elements, el)
	}
	return snap, nil
}
