// internal/inject/scheduler.go
package inject

import "time"

// Scheduler defers a continuation. Widget write policies use it for the
// settle delays third-party controls need between a simulated interaction
// and the next DOM read. The main injection pass never waits on scheduled
// continuations.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// timerScheduler is the production scheduler backed by the runtime timer.
type timerScheduler struct{}

func (timerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// immediateScheduler runs continuations synchronously. Tests use it to make
// the widget choreography deterministic.
type immediateScheduler struct{}

func (immediateScheduler) After(_ time.Duration, fn func()) { fn() }

// Immediate returns a scheduler that runs continuations inline, for tests.
func Immediate() Scheduler { return immediateScheduler{} }
