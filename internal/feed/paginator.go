package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"bookstorefront/internal/api"
)

// State of a paginator.
type State string

const (
	// StateIdle means nothing loaded yet (or just reset).
	StateIdle State = "idle"
	// StateLoading means the first page is in flight.
	StateLoading State = "loading"
	// StateLoaded means items are present and more may exist.
	StateLoaded State = "loaded"
	// StateLoadingMore means a follow-up page is in flight.
	StateLoadingMore State = "loading_more"
	// StateExhausted means the feed reported no further pages.
	StateExhausted State = "exhausted"
)

// FetchFunc loads one page of a feed.
type FetchFunc[T any] func(ctx context.Context, page, size int) (api.FeedPage[T], error)

// Snapshot is the paginator state handed to subscribers.
type Snapshot[T any] struct {
	Items         []T
	State         State
	PageIndex     int
	HasNext       bool
	TotalElements int
	Err           error
}

// Paginator accumulates feed pages, append-only, driven either by
// explicit LoadMore calls or by viewport visibility of the last item.
// The same primitive backs the reviews, orders and rentals views; a
// paginator is owned by the single view that created it.
type Paginator[T any] struct {
	fetch FetchFunc[T]
	size  int

	mu      sync.Mutex
	state   State
	items   []T
	page    int
	hasNext bool
	total   int
	lastErr error
	// gen invalidates in-flight loads after Reset: a page fetched for
	// an earlier generation is discarded on arrival.
	gen uuid.UUID

	// visibility wiring
	notifier      VisibilityNotifier
	key           func(T) string
	visCtx        context.Context
	cancelObserve func()

	subMu   sync.Mutex
	subs    map[int]func(Snapshot[T])
	nextSub int
}

// NewPaginator builds an idle paginator over a fetch function.
func NewPaginator[T any](fetch FetchFunc[T], pageSize int) *Paginator[T] {
	return &Paginator[T]{
		fetch:   fetch,
		size:    pageSize,
		state:   StateIdle,
		hasNext: true,
		gen:     uuid.New(),
		subs:    map[int]func(Snapshot[T]){},
	}
}

// Subscribe registers an observer; the returned function cancels it.
func (p *Paginator[T]) Subscribe(fn func(Snapshot[T])) func() {
	p.subMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

// Snapshot returns the current accumulated state.
func (p *Paginator[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Paginator[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(p.items))
	copy(items, p.items)
	return Snapshot[T]{
		Items:         items,
		State:         p.state,
		PageIndex:     p.page,
		HasNext:       p.hasNext,
		TotalElements: p.total,
		Err:           p.lastErr,
	}
}

func (p *Paginator[T]) notify(snap Snapshot[T]) {
	p.subMu.Lock()
	fns := make([]func(Snapshot[T]), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Reset clears accumulated items and returns to Idle at page zero.
// Must be called whenever an upstream parameter (sort order, owning
// entity) changes. Any in-flight load is invalidated.
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	p.items = nil
	p.page = 0
	p.hasNext = true
	p.total = 0
	p.lastErr = nil
	p.state = StateIdle
	p.gen = uuid.New()
	detach := p.cancelObserve
	p.cancelObserve = nil
	snap := p.snapshotLocked()
	p.mu.Unlock()
	if detach != nil {
		detach()
	}
	p.notify(snap)
}

// Load fetches the first page. No-op when a load is already running
// or items are already present; use Reset to start over.
func (p *Paginator[T]) Load(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return
	}
	p.state = StateLoading
	gen := p.gen
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)

	page, err := p.fetch(ctx, 0, p.size)
	p.finish(gen, StateIdle, page, err, false)
}

// LoadMore fetches the next page and appends it. No-op while a page is
// already in flight and after the feed is exhausted, so a visibility
// event firing twice in quick succession issues only one fetch.
func (p *Paginator[T]) LoadMore(ctx context.Context) {
	p.mu.Lock()
	switch p.state {
	case StateIdle:
		p.mu.Unlock()
		p.Load(ctx)
		return
	case StateLoading, StateLoadingMore, StateExhausted:
		p.mu.Unlock()
		return
	}
	if !p.hasNext {
		p.mu.Unlock()
		return
	}
	p.state = StateLoadingMore
	gen := p.gen
	next := p.page + 1
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(snap)

	page, err := p.fetch(ctx, next, p.size)
	p.finish(gen, StateLoaded, page, err, true)
}

// finish applies a completed fetch. Results from a generation that was
// reset away are discarded. On failure accumulated items stay intact,
// the state reverts and hasNext is left untouched so the caller can
// retry.
func (p *Paginator[T]) finish(gen uuid.UUID, revert State, page api.FeedPage[T], err error, appendItems bool) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		slog.Debug("feed_page_discarded_after_reset")
		return
	}
	if err != nil {
		p.lastErr = err
		p.state = revert
		snap := p.snapshotLocked()
		p.mu.Unlock()
		slog.Warn("feed_page_failed", "err", err)
		p.notify(snap)
		return
	}
	p.lastErr = nil
	if appendItems {
		p.items = append(p.items, page.Items...)
	} else {
		p.items = page.Items
	}
	p.page = page.PageIndex
	p.hasNext = page.HasNext
	p.total = page.TotalElements
	if p.hasNext {
		p.state = StateLoaded
	} else {
		p.state = StateExhausted
	}
	reattach := p.reattachLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	if reattach != nil {
		reattach()
	}
	p.notify(snap)
}

// BindVisibility wires the paginator to a notifier. key extracts the
// render target id of an item. After every append the notifier is
// re-attached to the new last item and detached from the previous one,
// so one append produces at most one visibility trigger.
func (p *Paginator[T]) BindVisibility(ctx context.Context, n VisibilityNotifier, key func(T) string) {
	p.mu.Lock()
	p.notifier = n
	p.key = key
	p.visCtx = ctx
	reattach := p.reattachLocked()
	p.mu.Unlock()
	if reattach != nil {
		reattach()
	}

	n.OnVisible(func(targetID string) {
		p.mu.Lock()
		ok := p.state == StateLoaded && p.hasNext &&
			len(p.items) > 0 && p.key != nil && p.key(p.items[len(p.items)-1]) == targetID
		vctx := p.visCtx
		p.mu.Unlock()
		if ok {
			p.LoadMore(vctx)
		}
	})
}

// reattachLocked swaps the observed target to the current last item.
// Returns a closure to run outside the lock, or nil.
func (p *Paginator[T]) reattachLocked() func() {
	if p.notifier == nil || p.key == nil || len(p.items) == 0 {
		return nil
	}
	detach := p.cancelObserve
	target := p.key(p.items[len(p.items)-1])
	notifier := p.notifier
	return func() {
		if detach != nil {
			detach()
		}
		cancel := notifier.Observe(target)
		p.mu.Lock()
		p.cancelObserve = cancel
		p.mu.Unlock()
	}
}
