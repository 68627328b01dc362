// internal/inject/injector.go
package inject

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
	"github.com/zhangxinyong12/auto-fill-extension/internal/fields"
	"github.com/zhangxinyong12/auto-fill-extension/internal/scope"
)

// Stats summarizes an injection pass.
type Stats struct {
	// Controls is the number of eligible controls considered.
	Controls int
	// Written is the number of controls a value was resolved and written for.
	Written int
}

// Injector applies a ValueMap to the live page. It re-resolves scope and
// re-derives every control's label from the snapshot it is handed; nothing
// is carried over from the extraction pass, so DOM changes between the two
// passes cannot leave it holding stale references.
type Injector struct {
	writer  ControlWriter
	sched   Scheduler
	logger  *zap.Logger
	pending sync.WaitGroup
}

// Option configures an Injector.
type Option func(*Injector)

// WithScheduler overrides the timer scheduler, for tests.
func WithScheduler(s Scheduler) Option {
	return func(in *Injector) { in.sched = s }
}

// WithLogger sets the injector's logger.
func WithLogger(l *zap.Logger) Option {
	return func(in *Injector) { in.logger = l }
}

// New creates an Injector writing through the given ControlWriter.
func New(writer ControlWriter, opts ...Option) *Injector {
	in := &Injector{
		writer: writer,
		sched:  timerScheduler{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Apply writes values into the controls of the resolved scope, in document
// order. It never fails: a fault while writing one control is logged and the
// pass continues with the next. Widget settle continuations are scheduled
// fire-and-forget; Apply returns without waiting for them.
func (in *Injector) Apply(ctx context.Context, snap *dom.Snapshot, values ValueMap) Stats {
	root := scope.Resolve(snap, in.logger)

	// Phase A: index label -> identity key over the injection-eligible
	// controls (radios included, unlike extraction). The index lets a value
	// keyed by one control's label reach that control even when the model
	// echoed the label instead of the name/id key.
	keyToLabel := make(map[string]string)
	for _, el := range snap.ControlsWithin(root) {
		if !fields.Eligible(el, true) {
			continue
		}
		label := fields.LabelFor(snap, root, el)
		name, id := fields.UsableIdentity(el)
		key := name
		if key == "" {
			key = id
		}
		if key != "" {
			if _, exists := keyToLabel[key]; !exists {
				keyToLabel[key] = label
			}
		}
	}

	// Phase B: match each control to a value and apply the type policy.
	var stats Stats
	for _, el := range snap.ControlsWithin(root) {
		if !fields.Eligible(el, true) {
			continue
		}
		stats.Controls++

		value, ok := in.resolveValue(snap, root, el, values, keyToLabel)
		if !ok {
			continue
		}
		if in.writeControl(ctx, snap, el, value) {
			stats.Written++
		}
	}

	in.logger.Info("injection pass finished",
		zap.Int("controls", stats.Controls),
		zap.Int("written", stats.Written))
	return stats
}

// Wait blocks until all scheduled widget continuations have run. The main
// pass never calls it; tests use it to observe delayed writes
// deterministically.
func (in *Injector) Wait() {
	in.pending.Wait()
}

// resolveValue probes the ValueMap for a control, in declared priority:
// raw name, raw id, the Phase A label for this control's identity key, and
// finally the control's own freshly-derived label. First hit wins.
func (in *Injector) resolveValue(snap *dom.Snapshot, root, el *dom.Element, values ValueMap, keyToLabel map[string]string) (any, bool) {
	if name := el.Name(); name != "" {
		if v, ok := values[name]; ok {
			return v, true
		}
	}
	if id := el.ID(); id != "" {
		if v, ok := values[id]; ok {
			return v, true
		}
	}
	name, id := fields.UsableIdentity(el)
	key := name
	if key == "" {
		key = id
	}
	if key != "" {
		if label, ok := keyToLabel[key]; ok {
			if v, ok := values[label]; ok {
				return v, true
			}
		}
	}
	if v, ok := values[fields.LabelFor(snap, root, el)]; ok {
		return v, true
	}
	return nil, false
}

// writeControl dispatches the control to its write policy, isolating
// failures. Reports whether a write actually happened.
func (in *Injector) writeControl(ctx context.Context, snap *dom.Snapshot, el *dom.Element, value any) (written bool) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Warn("injection panicked for control",
				zap.String("selector", el.Selector),
				zap.Any("panic", r))
			written = false
		}
	}()

	policy := in.policyFor(snap, el)
	if policy == nil {
		return false
	}
	ok, err := policy(ctx, snap, el, value)
	if err != nil {
		in.logger.Warn("injection failed for control",
			zap.String("selector", el.Selector),
			zap.Error(err))
		return false
	}
	return ok
}

// later schedules a fire-and-forget continuation. The parent context's
// cancellation is deliberately detached: the main pass has usually returned
// by the time the widget settles.
func (in *Injector) later(ctx context.Context, d time.Duration, fn func(ctx context.Context)) {
	in.pending.Add(1)
	bg := context.WithoutCancel(ctx)
	in.sched.After(d, func() {
		defer in.pending.Done()
		fn(bg)
	})
}
