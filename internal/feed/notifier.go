// Package feed implements the append-only cursor pagination primitive
// shared by the reviews, orders and rentals views, together with the
// viewport-visibility trigger that drives it.
package feed

import "sync"

// VisibilityNotifier reports when an observed target enters the
// viewport. Browser embedders back it with the platform intersection
// API; headless targets use PollingNotifier. Observe returns a cancel
// function that detaches the target.
type VisibilityNotifier interface {
	Observe(targetID string) (cancel func())
	OnVisible(fn func(targetID string))
}

// PollingNotifier is a scroll-position based notifier for targets
// without a native viewport primitive. The embedder reports target
// offsets and scroll positions; a callback fires when an observed
// target crosses into the viewport window.
type PollingNotifier struct {
	mu        sync.Mutex
	height    int
	top       int
	positions map[string]int
	observed  map[string]bool
	visible   map[string]bool
	onVisible []func(string)
}

// NewPollingNotifier builds a notifier with the given viewport height.
func NewPollingNotifier(viewportHeight int) *PollingNotifier {
	return &PollingNotifier{
		height:    viewportHeight,
		positions: map[string]int{},
		observed:  map[string]bool{},
		visible:   map[string]bool{},
	}
}

// OnVisible registers a callback fired for every target entry.
func (p *PollingNotifier) OnVisible(fn func(targetID string)) {
	p.mu.Lock()
	p.onVisible = append(p.onVisible, fn)
	p.mu.Unlock()
}

// Observe starts watching a target. The returned cancel detaches it.
func (p *PollingNotifier) Observe(targetID string) func() {
	p.mu.Lock()
	p.observed[targetID] = true
	p.mu.Unlock()
	p.poll()
	return func() {
		p.mu.Lock()
		delete(p.observed, targetID)
		delete(p.visible, targetID)
		p.mu.Unlock()
	}
}

// SetPosition reports a target's offset within the scrolled content.
func (p *PollingNotifier) SetPosition(targetID string, offset int) {
	p.mu.Lock()
	p.positions[targetID] = offset
	p.mu.Unlock()
	p.poll()
}

// Scroll reports the viewport's top offset and re-evaluates
// visibility. A target fires once per entry; leaving and re-entering
// fires again.
func (p *PollingNotifier) Scroll(top int) {
	p.mu.Lock()
	p.top = top
	p.mu.Unlock()
	p.poll()
}

func (p *PollingNotifier) poll() {
	p.mu.Lock()
	var fired []string
	for id := range p.observed {
		offset, known := p.positions[id]
		if !known {
			continue
		}
		inside := offset >= p.top && offset < p.top+p.height
		if inside && !p.visible[id] {
			fired = append(fired, id)
		}
		p.visible[id] = inside
	}
	fns := make([]func(string), len(p.onVisible))
	copy(fns, p.onVisible)
	p.mu.Unlock()

	for _, id := range fired {
		for _, fn := range fns {
			fn(id)
		}
	}
}
