package debounce

import (
	"sync"
	"time"
)

const (
	DefaultDelay             = 300 * time.Millisecond
	DefaultColumnFilterDelay = 150 * time.Millisecond
	DefaultTrigger           = '#'
	DefaultSeparator         = ':'
)

type Options struct {
	Delay             time.Duration
	ColumnFilterDelay time.Duration
	Trigger           rune
	Separator         rune
}

func (o Options) withDefaults() Options {
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.ColumnFilterDelay <= 0 {
		o.ColumnFilterDelay = DefaultColumnFilterDelay
	}
	if o.Trigger == 0 {
		o.Trigger = DefaultTrigger
	}
	if o.Separator == 0 {
		o.Separator = DefaultSeparator
	}
	return o
}

// Timer is the handle of one scheduled emission.
type Timer struct {
	timer *time.Timer
	value string
}

// Cancel stops the timer. It reports false when the timer already fired.
func (t *Timer) Cancel() bool {
	return t.timer.Stop()
}

func (t *Timer) Value() string {
	return t.value
}

// Debouncer turns a stream of raw keystroke values into stabilized queries.
// At most one timer is pending at any time and emissions happen in the order
// the keystrokes arrived. The emit callback must not call Push.
type Debouncer struct {
	opts Options
	emit func(string)

	// emitMu orders Push against timer callbacks; mu guards the fields below.
	emitMu  sync.Mutex
	mu      sync.Mutex
	pending *Timer
	stopped bool
}

func New(opts Options, emit func(string)) *Debouncer {
	return &Debouncer{
		opts: opts.withDefaults(),
		emit: emit,
	}
}

// Push feeds the current content of the search input.
func (d *Debouncer) Push(raw string) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelPendingLocked()

	switch Classify(raw, d.opts.Trigger, d.opts.Separator) {
	case InputClear:
		d.mu.Unlock()
		d.emit("")
		return
	case InputPartialFilter:
	case InputColumnFilter:
		d.scheduleLocked(raw, d.opts.ColumnFilterDelay)
	default:
		d.scheduleLocked(raw, d.opts.Delay)
	}
	d.mu.Unlock()
}

// Pending returns the scheduled timer, or nil.
func (d *Debouncer) Pending() *Timer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops the pending emission, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelPendingLocked()
}

// Stop cancels the pending emission and ignores every later Push. It waits
// for an emission already in progress, so nothing is emitted once Stop
// returns. The emit callback must not call Stop.
func (d *Debouncer) Stop() {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancelPendingLocked()
}

func (d *Debouncer) cancelPendingLocked() {
	if d.pending == nil {
		return
	}
	d.pending.Cancel()
	d.pending = nil
}

func (d *Debouncer) scheduleLocked(value string, delay time.Duration) {
	t := &Timer{value: value}
	t.timer = time.AfterFunc(delay, func() { d.fire(t) })
	d.pending = t
}

func (d *Debouncer) fire(t *Timer) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	// A newer keystroke may have replaced t after its timer fired.
	if d.stopped || d.pending != t {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	d.emit(t.value)
}
