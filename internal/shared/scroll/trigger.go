// Package scroll turns raw viewport scroll metrics into debounced
// load-more signals for paginated feeds.
package scroll

import (
	"sync"
	"time"
)

const (
	// DefaultThresholdPx fires the trigger within this distance of the bottom.
	DefaultThresholdPx = 100.0
	// DefaultPercentage fires the trigger once this share of the page is scrolled.
	DefaultPercentage = 0.8
	// DefaultDebounce coalesces bursts of scroll events into one fire.
	DefaultDebounce = 150 * time.Millisecond
)

// Metrics is a snapshot of the viewport. Browsers disagree on where the
// real scroll height lives, so both candidates are carried and the larger
// one wins.
type Metrics struct {
	ScrollTop            float64
	ClientHeight         float64
	BodyScrollHeight     float64
	DocumentScrollHeight float64
}

func (m Metrics) scrollHeight() float64 {
	if m.BodyScrollHeight > m.DocumentScrollHeight {
		return m.BodyScrollHeight
	}
	return m.DocumentScrollHeight
}

// DistanceFromBottom returns how many pixels remain below the viewport.
func (m Metrics) DistanceFromBottom() float64 {
	return m.scrollHeight() - (m.ScrollTop + m.ClientHeight)
}

// Percentage returns the scrolled share of the full height, in [0, 1].
func (m Metrics) Percentage() float64 {
	height := m.scrollHeight()
	if height <= 0 {
		return 0
	}
	return (m.ScrollTop + m.ClientHeight) / height
}

// Trigger debounces threshold crossings into single load-more calls.
// It fires once per arrival at the bottom region: the viewport has to
// leave the region before the trigger can fire again.
type Trigger struct {
	mu          sync.Mutex
	loadMore    func()
	thresholdPx float64
	percentage  float64
	debounce    time.Duration
	active      bool
	closed      bool
	inFlight    bool
	armed       bool
	timer       *time.Timer
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithThresholdPx overrides the pixel distance threshold.
func WithThresholdPx(px float64) Option {
	return func(t *Trigger) { t.thresholdPx = px }
}

// WithPercentage overrides the scrolled-share threshold.
func WithPercentage(pct float64) Option {
	return func(t *Trigger) { t.percentage = pct }
}

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(t *Trigger) { t.debounce = d }
}

// NewTrigger builds an inactive trigger around the load-more callback.
func NewTrigger(loadMore func(), opts ...Option) *Trigger {
	t := &Trigger{
		loadMore:    loadMore,
		thresholdPx: DefaultThresholdPx,
		percentage:  DefaultPercentage,
		debounce:    DefaultDebounce,
		armed:       true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// SetActive attaches or detaches the trigger. Callers keep it in sync
// with `hasMore && !isLoading`; detaching cancels any pending fire.
func (t *Trigger) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.active = active
	if !active {
		t.cancelTimerLocked()
	}
}

// Observe feeds one scroll/touch/resize event into the trigger.
func (t *Trigger) Observe(m Metrics) {
	within := m.DistanceFromBottom() <= t.thresholdPx || m.Percentage() >= t.percentage

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || !t.active {
		return
	}
	if !within {
		// Left the bottom region; the next arrival may fire again.
		t.armed = true
		t.cancelTimerLocked()
		return
	}
	if !t.armed || t.inFlight || t.timer != nil {
		return
	}
	t.armed = false
	t.timer = time.AfterFunc(t.debounce, t.fire)
}

func (t *Trigger) fire() {
	t.mu.Lock()
	t.timer = nil
	if t.closed || !t.active || t.inFlight {
		t.mu.Unlock()
		return
	}
	t.inFlight = true
	loadMore := t.loadMore
	t.mu.Unlock()

	if loadMore != nil {
		loadMore()
	}

	t.mu.Lock()
	t.inFlight = false
	t.mu.Unlock()
}

// Close detaches the trigger permanently and cancels pending timers. No
// callback fires after Close returns.
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cancelTimerLocked()
}

func (t *Trigger) cancelTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
