// internal/browser/writer.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
	"github.com/zhangxinyong12/auto-fill-extension/internal/inject"
)

// Writer implements inject.ControlWriter against the live page. Every
// operation is one script evaluation; the scripts return true when the
// target element was found, so a stale selector surfaces as an error rather
// than a silent no-op.
type Writer struct {
	ev     dom.Evaluator
	logger *zap.Logger
}

var _ inject.ControlWriter = (*Writer)(nil)

// NewWriter creates a live control writer over an evaluator (normally the
// Session).
func NewWriter(ev dom.Evaluator, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{ev: ev, logger: logger.Named("writer")}
}

// jsCSSPath builds a CSS path for an element, mirroring the capture script
// so selectors produced by option scans match snapshot selectors in shape.
const jsCSSPath = `const cssPath = (el) => {
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
};`

func (w *Writer) SetValue(ctx context.Context, sel, value string) error {
	script := fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        el.value = %s;
        return true;
    })()`, jsString(sel), jsString(value))
	return w.runBool(ctx, sel, script)
}

func (w *Writer) SetChecked(ctx context.Context, sel string, checked bool) error {
	script := fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        el.checked = %t;
        return true;
    })()`, jsString(sel), checked)
	return w.runBool(ctx, sel, script)
}

func (w *Writer) SelectOption(ctx context.Context, sel, optionValue string) error {
	script := fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        const v = %s;
        for (const o of el.options) o.selected = (o.value === v);
        el.value = v;
        return true;
    })()`, jsString(sel), jsString(optionValue))
	return w.runBool(ctx, sel, script)
}

func (w *Writer) DispatchEvent(ctx context.Context, sel string, ev inject.Event) error {
	override := ""
	if ev.OverrideTarget {
		// Some framework handlers read event.target instead of the element
		// they are bound to; define it explicitly on the synthetic event.
		override = `Object.defineProperty(e, 'target', { value: el, enumerable: true });`
	}
	script := fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        const e = new Event(%s, { bubbles: %t, cancelable: %t });
        %s
        el.dispatchEvent(e);
        return true;
    })()`, jsString(sel), jsString(ev.Type), ev.Bubbles, ev.Cancelable, override)
	return w.runBool(ctx, sel, script)
}

func (w *Writer) Focus(ctx context.Context, sel string) error {
	return w.runBool(ctx, sel, fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        el.focus();
        return true;
    })()`, jsString(sel)))
}

func (w *Writer) Blur(ctx context.Context, sel string) error {
	return w.runBool(ctx, sel, fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        el.blur();
        return true;
    })()`, jsString(sel)))
}

func (w *Writer) Click(ctx context.Context, sel string) error {
	return w.runBool(ctx, sel, fmt.Sprintf(`(() => {
        const el = document.querySelector(%s);
        if (!el) return false;
        el.click();
        return true;
    })()`, jsString(sel)))
}

// RenderedOptions lists the dropdown options currently rendered anywhere in
// the document. Hidden dropdowns (closed or measuring) are skipped.
func (w *Writer) RenderedOptions(ctx context.Context) ([]inject.RenderedOption, error) {
	script := `(() => {
        ` + jsCSSPath + `
        const out = [];
        const nodes = document.querySelectorAll('.ant-select-item-option, .ant-select-dropdown .ant-select-item');
        for (const el of nodes) {
            const cs = window.getComputedStyle(el);
            if (cs.display === 'none' || cs.visibility === 'hidden') continue;
            out.push({
                selector: cssPath(el),
                text: (el.textContent || '').replace(/\s+/g, ' ').trim(),
                title: el.getAttribute('title') || '',
            });
        }
        return out;
    })()`

	raw, err := w.ev.ExecuteScript(ctx, script)
	if err != nil {
		return nil, err
	}
	var options []inject.RenderedOption
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, fmt.Errorf("decode rendered options: %w", err)
	}
	return options, nil
}

// DismissOverlay clicks the document body, closing any open dropdown
// without selecting.
func (w *Writer) DismissOverlay(ctx context.Context) error {
	_, err := w.ev.ExecuteScript(ctx, `(() => { document.body.click(); return true; })()`)
	return err
}

func (w *Writer) runBool(ctx context.Context, sel, script string) error {
	raw, err := w.ev.ExecuteScript(ctx, script)
	if err != nil {
		return err
	}
	if string(raw) != "true" {
		return fmt.Errorf("element not found: %s", sel)
	}
	return nil
}

func jsString(v string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
