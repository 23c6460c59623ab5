package watch

import (
	"sync"
	"time"
)

// debouncer delivers only the last value triggered within window.
type debouncer[T any] struct {
	window  time.Duration
	deliver func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
}

func newDebouncer[T any](window time.Duration, deliver func(T)) *debouncer[T] {
	return &debouncer[T]{window: window, deliver: deliver}
}

func (d *debouncer[T]) trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *debouncer[T]) fire() {
	d.mu.Lock()
	v := d.pending
	d.mu.Unlock()
	d.deliver(v)
}

func (d *debouncer[T]) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
