package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bookstorefront/internal/api"
	"bookstorefront/internal/session"
	"bookstorefront/pkg/domain"
)

type recordingNavigator struct {
	mu       sync.Mutex
	replaced []string
}

func (n *recordingNavigator) Replace(query string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replaced = append(n.replaced, query)
}

func (n *recordingNavigator) Push(string) {}

func (n *recordingNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.replaced) == 0 {
		return ""
	}
	return n.replaced[len(n.replaced)-1]
}

// catalogBackend fakes the catalog endpoints and records every request.
type catalogBackend struct {
	mu       sync.Mutex
	requests []string
	// block, when set, holds matching requests until released.
	blockMatch string
	blockCh    chan struct{}
	arrived    chan struct{}
}

func (b *catalogBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		full := r.URL.Path + "?" + r.URL.RawQuery
		b.mu.Lock()
		b.requests = append(b.requests, full)
		blockMatch, blockCh, arrived := b.blockMatch, b.blockCh, b.arrived
		b.mu.Unlock()

		if blockMatch != "" && r.URL.Query().Get("genres") == blockMatch {
			if arrived != nil {
				close(arrived)
			}
			<-blockCh
			_ = json.NewEncoder(w).Encode([]domain.Book{{BookID: 999, Title: "Stale"}})
			return
		}

		switch r.URL.Path {
		case "/api/catalog/books":
			_, _ = w.Write([]byte(`{"books":[{"bookId":1,"title":"Dune"}],"currentPage":0,"totalPages":3,"totalElements":25}`))
		case "/api/catalog/books/bestsellers":
			_ = json.NewEncoder(w).Encode([]domain.Book{{BookID: 2, Title: "Bestseller"}})
		case "/api/catalog/books/discounts":
			_ = json.NewEncoder(w).Encode([]domain.Book{{BookID: 3, Title: "Bargain"}})
		default:
			http.NotFound(w, r)
		}
	})
}

func (b *catalogBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func newTestOrchestrator(t *testing.T, backend *catalogBackend, nav Navigator) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	client := api.New(api.Config{BaseURL: srv.URL, Credentials: session.NewCredentials()})
	return NewOrchestrator(client, nav, 9)
}

func TestApplyMirrorsURLAndBuildsCatalogRequest(t *testing.T) {
	backend := &catalogBackend{}
	nav := &recordingNavigator{}
	orch := newTestOrchestrator(t, backend, nav)

	orch.SetDraftFilter(NewFilterState([]int64{3}, nil, domain.SortAsc))
	orch.SetDraftSearch("dune")
	orch.Apply(context.Background())

	if got := nav.last(); got != "genres=3&title=dune" {
		t.Fatalf("URL mirror: got %q", got)
	}
	req := orch.BuildRequest()
	if req.Endpoint != "/api/catalog/books" {
		t.Fatalf("endpoint: %s", req.Endpoint)
	}
	expect := map[string]string{"page": "0", "size": "9", "genres": "3", "sort": "asc", "title": "dune"}
	for k, want := range expect {
		if req.Params.Get(k) != want {
			t.Fatalf("param %s: want %q got %q", k, want, req.Params.Get(k))
		}
	}
	snap := orch.Snapshot()
	if snap.Err != nil || len(snap.Books) != 1 || snap.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSelectSpecialClearsFiltersAndSearch(t *testing.T) {
	backend := &catalogBackend{}
	nav := &recordingNavigator{}
	orch := newTestOrchestrator(t, backend, nav)

	orch.SetDraftFilter(NewFilterState([]int64{3}, nil, domain.SortAsc))
	orch.SetDraftSearch("dune")
	orch.Apply(context.Background())
	orch.SelectSpecial(context.Background(), domain.SpecialBestsellers)

	if got := nav.last(); got != "category=bestsellers" {
		t.Fatalf("URL mirror after override: %q", got)
	}
	req := orch.BuildRequest()
	if req.Endpoint != "/api/catalog/books/bestsellers" {
		t.Fatalf("endpoint: %s", req.Endpoint)
	}
	for _, banned := range []string{"genres", "categories", "title", "sort"} {
		if req.Params.Has(banned) {
			t.Fatalf("override request must not carry %s", banned)
		}
	}
	snap := orch.Snapshot()
	if snap.View.Special != domain.SpecialBestsellers {
		t.Fatalf("override not applied: %+v", snap.View)
	}
	if !snap.View.Filter.IsZero() || snap.View.Search != "" {
		t.Fatalf("filters/search must be cleared: %+v", snap.View)
	}
	if len(snap.Books) != 1 || snap.Books[0].BookID != 2 {
		t.Fatalf("bestseller books expected: %+v", snap.Books)
	}
}

func TestResetAllReturnsToDefaults(t *testing.T) {
	backend := &catalogBackend{}
	nav := &recordingNavigator{}
	orch := newTestOrchestrator(t, backend, nav)

	orch.SelectSpecial(context.Background(), domain.SpecialDiscounts)
	orch.ResetAll(context.Background())

	snap := orch.Snapshot()
	if !snap.View.IsZero() {
		t.Fatalf("view not reset: %+v", snap.View)
	}
	if got := nav.last(); got != "" {
		t.Fatalf("default view must encode empty, got %q", got)
	}
}

func TestSetPageClampsAndSkipsEqualPage(t *testing.T) {
	backend := &catalogBackend{}
	orch := newTestOrchestrator(t, backend, &recordingNavigator{})

	orch.Load(context.Background()) // totalPages=3
	before := backend.requestCount()

	orch.SetPage(context.Background(), 99)
	snap := orch.Snapshot()
	if snap.View.Page != 2 {
		t.Fatalf("page not clamped to last: %d", snap.View.Page)
	}
	afterClamp := backend.requestCount()
	if afterClamp != before+1 {
		t.Fatalf("expected one fetch for page change, got %d", afterClamp-before)
	}

	orch.SetPage(context.Background(), 2)
	if backend.requestCount() != afterClamp {
		t.Fatalf("same page must not refetch")
	}

	orch.SetPage(context.Background(), -5)
	if got := orch.Snapshot().View.Page; got != 0 {
		t.Fatalf("negative page must clamp to 0, got %d", got)
	}
}

func TestHandleLocationChangeAdoptsURLState(t *testing.T) {
	backend := &catalogBackend{}
	nav := &recordingNavigator{}
	orch := newTestOrchestrator(t, backend, nav)

	orch.HandleLocationChange(context.Background(), "genres=3&title=dune")

	snap := orch.Snapshot()
	if got := snap.View.Filter.GenreIDs(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("genres not adopted: %v", got)
	}
	if snap.View.Search != "dune" {
		t.Fatalf("search not adopted: %q", snap.View.Search)
	}
	if snap.Draft.IsZero() || snap.DraftSearch != "dune" {
		t.Fatalf("draft controls must follow the URL: %+v %q", snap.Draft, snap.DraftSearch)
	}
	if len(nav.replaced) != 0 {
		t.Fatalf("URL-originated change must not re-push: %v", nav.replaced)
	}
}

func TestHandleLocationChangeNoOpWhenUnchanged(t *testing.T) {
	backend := &catalogBackend{}
	orch := newTestOrchestrator(t, backend, &recordingNavigator{})

	orch.HandleLocationChange(context.Background(), "genres=3")
	count := backend.requestCount()

	// Re-delivering the same URL (the feedback-loop case) is a no-op.
	orch.HandleLocationChange(context.Background(), "genres=3")
	if backend.requestCount() != count {
		t.Fatalf("unchanged URL must not refetch")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	backend := &catalogBackend{
		blockMatch: "3",
		blockCh:    make(chan struct{}),
		arrived:    make(chan struct{}),
	}
	orch := newTestOrchestrator(t, backend, &recordingNavigator{})

	orch.SetDraftFilter(NewFilterState([]int64{3}, nil, domain.SortAsc))
	done := make(chan struct{})
	go func() {
		orch.Apply(context.Background())
		close(done)
	}()
	<-backend.arrived

	// A newer trigger supersedes the in-flight filtered fetch.
	orch.SelectSpecial(context.Background(), domain.SpecialBestsellers)
	close(backend.blockCh)
	<-done

	snap := orch.Snapshot()
	if snap.View.Special != domain.SpecialBestsellers {
		t.Fatalf("last issued action must win: %+v", snap.View)
	}
	for _, b := range snap.Books {
		if b.Title == "Stale" {
			t.Fatalf("stale response applied: %+v", snap.Books)
		}
	}
	if snap.Loading {
		t.Fatalf("loading flag stuck")
	}
}

func TestFetchErrorIsClassifiedAndContained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := api.New(api.Config{BaseURL: srv.URL, Credentials: session.NewCredentials()})
	orch := NewOrchestrator(client, nil, 9)

	orch.Load(context.Background())
	snap := orch.Snapshot()
	if snap.Err == nil || !api.IsRetryable(snap.Err) {
		t.Fatalf("expected retryable error in snapshot, got %v", snap.Err)
	}
}

func TestSubscribersSeeFinalState(t *testing.T) {
	backend := &catalogBackend{}
	orch := newTestOrchestrator(t, backend, &recordingNavigator{})

	var mu sync.Mutex
	var states []Snapshot
	cancel := orch.Subscribe(func(s Snapshot) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	orch.Load(context.Background())
	cancel()
	orch.SetPage(context.Background(), 1)

	mu.Lock()
	defer mu.Unlock()
	if len(states) < 2 {
		t.Fatalf("expected loading + loaded notifications, got %d", len(states))
	}
	last := states[len(states)-1]
	if last.Loading || last.Err != nil || len(last.Books) == 0 {
		t.Fatalf("final notified state wrong: %+v", last)
	}
	for _, s := range states {
		if s.View.Page == 1 {
			t.Fatalf("cancelled subscriber still notified")
		}
	}
}
