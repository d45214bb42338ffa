package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"bookstorefront/internal/api"
	"bookstorefront/pkg/domain"
)

// Navigator mirrors applied view state into the navigable URL.
// Replace must not create a history entry; Push must. Implementations
// live in the UI layer (browser history, TUI route stack).
type Navigator interface {
	Replace(query string)
	Push(query string)
}

// NopNavigator ignores URL mirroring, for headless embedders.
type NopNavigator struct{}

func (NopNavigator) Replace(string) {}
func (NopNavigator) Push(string)    {}

// Snapshot is the read-only view handed to subscribers and callers.
type Snapshot struct {
	View        ViewState
	Draft       FilterState
	DraftSearch string
	Books       []domain.Book
	Pagination  domain.PaginationState
	Loading     bool
	Err         error
}

// Request is the backend request derived from the current view.
type Request struct {
	Endpoint string
	Params   url.Values
}

// Orchestrator owns the catalog view state and decides when to
// refetch. Every trigger funnels through one refetch step; every
// response carries the query it was built from and is discarded when
// that query is no longer current.
type Orchestrator struct {
	client   *api.Client
	nav      Navigator
	pageSize int

	mu             sync.Mutex
	draft          FilterState
	draftSearch    string
	view           ViewState
	books          []domain.Book
	pagination     domain.PaginationState
	loading        bool
	loadedOnce     bool
	lastErr        error
	fetchTag       uuid.UUID
	cancelInflight context.CancelFunc

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	group singleflight.Group
}

// NewOrchestrator builds an orchestrator over the backend client.
// A nil navigator disables URL mirroring.
func NewOrchestrator(client *api.Client, nav Navigator, pageSize int) *Orchestrator {
	if nav == nil {
		nav = NopNavigator{}
	}
	if pageSize <= 0 {
		pageSize = 9
	}
	return &Orchestrator{
		client:   client,
		nav:      nav,
		pageSize: pageSize,
		subs:     map[int]func(Snapshot){},
	}
}

// Subscribe registers an observer called after every state change.
// The returned function cancels the subscription.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) func() {
	o.subMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	o.subMu.Unlock()
	return func() {
		o.subMu.Lock()
		delete(o.subs, id)
		o.subMu.Unlock()
	}
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	books := make([]domain.Book, len(o.books))
	copy(books, o.books)
	return Snapshot{
		View:        o.view,
		Draft:       o.draft,
		DraftSearch: o.draftSearch,
		Books:       books,
		Pagination:  o.pagination,
		Loading:     o.loading,
		Err:         o.lastErr,
	}
}

func (o *Orchestrator) notify(snap Snapshot) {
	o.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// SetDraftFilter replaces the draft bound to the filter controls.
// No fetch happens until Apply.
func (o *Orchestrator) SetDraftFilter(f FilterState) {
	o.mu.Lock()
	o.draft = f
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

// SetDraftSearch replaces the search box text. No fetch until Apply.
func (o *Orchestrator) SetDraftSearch(text string) {
	o.mu.Lock()
	o.draftSearch = text
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

// Load runs the initial fetch for the current view.
func (o *Orchestrator) Load(ctx context.Context) {
	o.mu.Lock()
	o.refetchLocked(ctx, o.view, false)
}

// Apply copies the draft into the applied state, clears any special
// override and resets to page zero, then refetches.
func (o *Orchestrator) Apply(ctx context.Context) {
	o.mu.Lock()
	next := ViewState{
		Filter: o.draft,
		Search: strings.TrimSpace(o.draftSearch),
		Page:   0,
	}
	o.refetchLocked(ctx, next, false)
}

// SelectSpecial activates a special-category override. Applied filters
// and search text are cleared: an override is mutually exclusive with
// ordinary querying. The draft controls reset too, matching the view.
func (o *Orchestrator) SelectSpecial(ctx context.Context, cat domain.SpecialCategory) {
	o.mu.Lock()
	o.draft = FilterState{}
	o.draftSearch = ""
	o.refetchLocked(ctx, ViewState{Special: cat, Page: 0}, false)
}

// ResetAll returns everything to the default view and refetches.
func (o *Orchestrator) ResetAll(ctx context.Context) {
	o.mu.Lock()
	o.draft = FilterState{}
	o.draftSearch = ""
	o.refetchLocked(ctx, ViewState{}, false)
}

// SetPage changes only the page index, clamped to the known page
// range. Same page means no fetch.
func (o *Orchestrator) SetPage(ctx context.Context, page int) {
	o.mu.Lock()
	if page < 0 {
		page = 0
	}
	if o.pagination.TotalPages > 0 && page > o.pagination.TotalPages-1 {
		page = o.pagination.TotalPages - 1
	}
	next := o.view
	next.Page = page
	o.refetchLocked(ctx, next, false)
}

// HandleLocationChange adopts a view decoded from the URL, typically
// after back/forward navigation. A decoded view equal to the current
// one is a no-op, which breaks the state-to-URL-to-state feedback
// loop. The adopted view is not re-pushed to the navigator.
func (o *Orchestrator) HandleLocationChange(ctx context.Context, rawQuery string) {
	decoded := DecodeView(rawQuery)
	o.mu.Lock()
	if decoded.Equal(o.view) && o.loadedOnce {
		o.mu.Unlock()
		return
	}
	// Keep the controls consistent with what the URL restored.
	o.draft = decoded.Filter
	o.draftSearch = decoded.Search
	o.refetchLocked(ctx, decoded, true)
}

// BuildRequest derives the backend request from the current view.
// With an override active the request targets the dedicated feed
// endpoint and carries page and size only.
func (o *Orchestrator) BuildRequest() Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buildRequestLocked(o.view)
}

func (o *Orchestrator) buildRequestLocked(view ViewState) Request {
	if view.Special != "" {
		params := url.Values{}
		params.Set("page", strconv.Itoa(view.Page))
		params.Set("size", strconv.Itoa(o.pageSize))
		return Request{
			Endpoint: "/api/catalog/books/" + string(view.Special),
			Params:   params,
		}
	}
	params := api.CatalogParams{
		Page:        view.Page,
		Size:        o.pageSize,
		GenreIDs:    view.Filter.GenreIDs(),
		CategoryIDs: view.Filter.CategoryIDs(),
		Sort:        view.Filter.Sort(),
		Title:       view.Search,
	}
	return Request{Endpoint: "/api/catalog/books", Params: params.Values()}
}

// refetchLocked adopts next as the applied view and runs one fetch for
// it. Callers must hold o.mu; the lock is released before any network
// or subscriber work. fromURL suppresses URL mirroring for changes
// that originated in the URL itself.
func (o *Orchestrator) refetchLocked(ctx context.Context, next ViewState, fromURL bool) {
	unchanged := next.Equal(o.view) && o.loadedOnce && o.lastErr == nil
	if unchanged {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return
	}

	if o.cancelInflight != nil {
		o.cancelInflight()
	}
	fctx, cancel := context.WithCancel(ctx)
	tag := uuid.New()
	o.view = next
	o.fetchTag = tag
	o.cancelInflight = cancel
	o.loading = true
	query := next
	mirror := ""
	if !fromURL {
		mirror = EncodeView(next)
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if !fromURL {
		o.nav.Replace(mirror)
	}
	o.notify(snap)

	page, err := o.fetch(fctx, query)

	o.mu.Lock()
	if o.fetchTag != tag || !o.view.Equal(query) {
		// A newer trigger superseded this fetch; its result would
		// not reflect the last issued action.
		o.mu.Unlock()
		slog.Debug("catalog_fetch_discarded", "query", EncodeView(query))
		return
	}
	o.cancelInflight = nil
	o.loading = false
	if err != nil {
		o.lastErr = err
		slog.Warn("catalog_fetch_failed", "query", EncodeView(query), "err", err)
	} else {
		o.lastErr = nil
		o.loadedOnce = true
		o.books = page.Books
		o.pagination = page.Pagination
	}
	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

// fetch issues the backend call for one query. Identical concurrent
// queries collapse into a single request.
func (o *Orchestrator) fetch(ctx context.Context, query ViewState) (api.BookPage, error) {
	key := EncodeView(query)
	v, err, _ := o.group.Do(key, func() (any, error) {
		if query.Special != "" {
			return o.client.SpecialBooks(ctx, query.Special, query.Page, o.pageSize)
		}
		return o.client.CatalogBooks(ctx, api.CatalogParams{
			Page:        query.Page,
			Size:        o.pageSize,
			GenreIDs:    query.Filter.GenreIDs(),
			CategoryIDs: query.Filter.CategoryIDs(),
			Sort:        query.Filter.Sort(),
			Title:       query.Search,
		})
	})
	if err != nil {
		return api.BookPage{}, err
	}
	return v.(api.BookPage), nil
}
