// internal/inject/policies.go
package inject

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
)

// Settle delays for third-party widgets. The date picker only commits its
// value on blur; the custom select needs time to render its dropdown after
// the opening click.
const (
	datePickerBlurDelay = 50 * time.Millisecond
	dropdownRenderDelay = 200 * time.Millisecond
)

// Ant Design class markers. The only third-party design system with
// dedicated write policies; everything else goes through the native paths.
const (
	antPickerMarker       = "ant-picker"
	antCalendarMarker     = "ant-calendar"
	antSelectMarker       = "ant-select"
	antSelectOpenerMarker = "ant-select-selector"
)

// writePolicy applies one resolved value to one control. It reports whether
// a write happened (a select with no matching option writes nothing and is
// not an error).
type writePolicy func(ctx context.Context, snap *dom.Snapshot, el *dom.Element, value any) (bool, error)

// policyFor picks the write policy for a control kind. A nil policy means
// the control is never written (file inputs cannot be scripted).
func (in *Injector) policyFor(snap *dom.Snapshot, el *dom.Element) writePolicy {
	switch {
	case el.Tag == "select":
		return in.writeSelect
	case el.Tag == "textarea":
		return in.writeTextArea
	case el.InputType() == "checkbox":
		return in.writeCheckbox
	case el.InputType() == "radio":
		return in.writeRadio
	case el.InputType() == "file":
		in.logger.Debug("skipping file input", zap.String("selector", el.Selector))
		return nil
	case isDatePickerInput(el):
		return in.writeDatePicker
	case isWidgetSelectInput(el):
		return in.writeWidgetSelect
	default:
		return in.writeInput
	}
}

func isDatePickerInput(el *dom.Element) bool {
	return el.Closest(func(e *dom.Element) bool {
		return e.ClassContains(antPickerMarker) || e.ClassContains(antCalendarMarker)
	}) != nil
}

func isWidgetSelectInput(el *dom.Element) bool {
	// Native selects take the select policy; this catches the search input
	// Ant Design renders inside its combobox.
	return el.Tag != "select" && el.Closest(func(e *dom.Element) bool {
		return e.ClassContains(antSelectMarker)
	}) != nil
}

// writeSelect matches an option by value attribute first, then by visible
// text. No match leaves the selection untouched.
func (in *Injector) writeSelect(ctx context.Context, _ *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if value == nil {
		return false, nil
	}
	want := cast.ToString(value)

	var match string
	var found bool
	for _, opt := range el.Options {
		if opt.Value == want {
			match, found = opt.Value, true
			break
		}
	}
	if !found {
		for _, opt := range el.Options {
			if opt.Text == want {
				match, found = opt.Value, true
				break
			}
		}
	}
	if !found {
		in.logger.Debug("no option matches value, leaving select unchanged",
			zap.String("selector", el.Selector), zap.String("value", want))
		return false, nil
	}

	if err := in.writer.SelectOption(ctx, el.Selector, match); err != nil {
		return false, err
	}
	return true, in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "change", Bubbles: true})
}

func (in *Injector) writeTextArea(ctx context.Context, _ *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if value == nil {
		return false, nil
	}
	if err := in.writer.SetValue(ctx, el.Selector, cast.ToString(value)); err != nil {
		return false, err
	}
	if err := in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "input", Bubbles: true}); err != nil {
		return false, err
	}
	return true, in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "change", Bubbles: true})
}

func (in *Injector) writeCheckbox(ctx context.Context, _ *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if err := in.writer.SetChecked(ctx, el.Selector, truthy(value)); err != nil {
		return false, err
	}
	return true, in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "change", Bubbles: true})
}

// writeRadio checks the button only when its own value attribute equals the
// target. Sibling radios of the same group are matched independently by
// their own passes and are never unchecked here.
func (in *Injector) writeRadio(ctx context.Context, _ *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if value == nil {
		return false, nil
	}
	if el.Attr("value") != cast.ToString(value) {
		return false, nil
	}
	if err := in.writer.SetChecked(ctx, el.Selector, true); err != nil {
		return false, err
	}
	return true, in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "change", Bubbles: true})
}

func (in *Injector) writeInput(ctx context.Context, _ *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if value == nil {
		return false, nil
	}
	if err := in.writer.SetValue(ctx, el.Selector, cast.ToString(value)); err != nil {
		return false, err
	}
	if err := in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "input", Bubbles: true, Cancelable: true}); err != nil {
		return false, err
	}
	return true, in.writer.DispatchEvent(ctx, el.Selector, Event{Type: "change", Bubbles: true, Cancelable: true})
}

// writeDatePicker sets the raw input value and then walks the picker through
// the event choreography it needs: input+change, a second input event with
// its target forced onto the element, focus, and a delayed blur. The picker
// only commits the typed value on blur, hence the scheduled continuation.
func (in *Injector) writeDatePicker(ctx context.Context, _ *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if value == nil {
		return false, nil
	}
	sel := el.Selector
	if err := in.writer.SetValue(ctx, sel, cast.ToString(value)); err != nil {
		return false, err
	}
	if err := in.writer.DispatchEvent(ctx, sel, Event{Type: "input", Bubbles: true, Cancelable: true}); err != nil {
		return false, err
	}
	if err := in.writer.DispatchEvent(ctx, sel, Event{Type: "change", Bubbles: true, Cancelable: true}); err != nil {
		return false, err
	}
	if err := in.writer.DispatchEvent(ctx, sel, Event{Type: "input", Bubbles: true, OverrideTarget: true}); err != nil {
		return false, err
	}
	if err := in.writer.Focus(ctx, sel); err != nil {
		return false, err
	}

	in.later(ctx, datePickerBlurDelay, func(ctx context.Context) {
		if err := in.writer.Blur(ctx, sel); err != nil {
			in.logger.Warn("date picker blur failed", zap.String("selector", sel), zap.Error(err))
			return
		}
		if err := in.writer.DispatchEvent(ctx, sel, Event{Type: "change", Bubbles: true}); err != nil {
			in.logger.Warn("date picker change failed", zap.String("selector", sel), zap.Error(err))
		}
	})
	return true, nil
}

// writeWidgetSelect opens the combobox, waits for the dropdown to render,
// and clicks the first rendered option whose text or title equals, contains,
// or is contained by the target value. With no match the dropdown is
// dismissed without selecting.
func (in *Injector) writeWidgetSelect(ctx context.Context, snap *dom.Snapshot, el *dom.Element, value any) (bool, error) {
	if value == nil {
		return false, nil
	}
	want := cast.ToString(value)

	opener := widgetOpener(snap, el)
	if err := in.writer.Click(ctx, opener); err != nil {
		return false, err
	}

	in.later(ctx, dropdownRenderDelay, func(ctx context.Context) {
		options, err := in.writer.RenderedOptions(ctx)
		if err != nil {
			in.logger.Warn("listing dropdown options failed", zap.String("selector", el.Selector), zap.Error(err))
			return
		}
		for _, opt := range options {
			if optionMatches(opt, want) {
				if err := in.writer.Click(ctx, opt.Selector); err != nil {
					in.logger.Warn("clicking dropdown option failed",
						zap.String("selector", opt.Selector), zap.Error(err))
				}
				return
			}
		}
		if err := in.writer.DismissOverlay(ctx); err != nil {
			in.logger.Warn("dismissing dropdown failed", zap.String("selector", el.Selector), zap.Error(err))
		}
	})
	return true, nil
}

// widgetOpener finds the visible selector sub-element of the combobox the
// input belongs to, falling back to the input itself.
func widgetOpener(snap *dom.Snapshot, el *dom.Element) string {
	widget := el.Closest(func(e *dom.Element) bool { return e.ClassContains(antSelectMarker) })
	if widget == nil {
		return el.Selector
	}
	for _, child := range snap.Within(widget) {
		if child.ClassContains(antSelectOpenerMarker) {
			return child.Selector
		}
	}
	return widget.Selector
}

func optionMatches(opt RenderedOption, want string) bool {
	for _, candidate := range []string{opt.Text, opt.Title} {
		if candidate == "" {
			continue
		}
		if candidate == want || strings.Contains(candidate, want) || strings.Contains(want, candidate) {
			return true
		}
	}
	return false
}

// truthy applies JavaScript-style boolean coercion to a scalar: nil, false,
// zero, the empty string and the strings "false"/"0" are false; everything
// else is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		return s != "" && !strings.EqualFold(s, "false") && s != "0"
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return cast.ToString(v) != ""
	}
}
