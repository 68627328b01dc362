// internal/inject/writer.go
package inject

import "context"

// ValueMap is the generation result: field-identity key to scalar value.
// Values are strings, numbers or booleans as decoded from the model's JSON.
type ValueMap map[string]any

// Event describes a synthetic DOM event to dispatch on a control. Reactive
// frameworks listen for these rather than polling element state, so every
// write is followed by the event protocol the control kind expects.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool

	// OverrideTarget forces the event's target property to reference the
	// element. Some framework handlers read event.target instead of the
	// live element and miss plainly-dispatched events.
	OverrideTarget bool
}

// RenderedOption is one currently-rendered dropdown option of an open
// widget select, found anywhere in the document.
type RenderedOption struct {
	Selector string
	Text     string
	Title    string
}

// ControlWriter performs the concrete DOM writes a policy decides on.
// The browser package implements it with per-control JS actions; tests use
// a recording fake. Selectors are the snapshot-assigned CSS paths.
type ControlWriter interface {
	SetValue(ctx context.Context, sel, value string) error
	SetChecked(ctx context.Context, sel string, checked bool) error
	SelectOption(ctx context.Context, sel, optionValue string) error
	DispatchEvent(ctx context.Context, sel string, ev Event) error
	Focus(ctx context.Context, sel string) error
	Blur(ctx context.Context, sel string) error
	Click(ctx context.Context, sel string) error

	// RenderedOptions lists the widget dropdown options currently rendered
	// in the document.
	RenderedOptions(ctx context.Context) ([]RenderedOption, error)

	// DismissOverlay clicks outside any open dropdown to close it without
	// selecting.
	DismissOverlay(ctx context.Context) error
}
