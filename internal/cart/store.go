// Package cart holds the client-side cart store. The backend cart is
// authoritative; the store keeps a local snapshot that is mutated
// optimistically and fully replaced on Refresh. All mutations are
// serialized through a single-writer lock so the capacity check can
// never race.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"bookstorefront/internal/api"
	"bookstorefront/pkg/domain"
)

// ErrCartFull is returned by Add when the cart already holds the
// maximum number of items. No network call is made in that case.
var ErrCartFull = errors.New("cart is full")

// Store owns the cart snapshot shared read-only by display components.
type Store struct {
	client *api.Client

	// writeMu serializes mutations, held across the network call. The
	// capacity check runs under it, so two near-simultaneous Adds
	// cannot both observe a free slot.
	writeMu sync.Mutex

	mu   sync.RWMutex
	snap domain.CartSnapshot

	subMu   sync.Mutex
	subs    map[int]func(domain.CartSnapshot)
	nextSub int
}

// NewStore builds an empty store over the backend client.
func NewStore(client *api.Client) *Store {
	return &Store{
		client: client,
		snap:   domain.NewCartSnapshot(nil),
		subs:   map[int]func(domain.CartSnapshot){},
	}
}

// Subscribe registers an observer notified after every snapshot
// change. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func(domain.CartSnapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) setSnapshot(snap domain.CartSnapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(domain.CartSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Snapshot returns the current cart state. Items are copied; callers
// must treat the result as immutable anyway.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	items := make([]domain.CartItem, len(snap.Items))
	copy(items, snap.Items)
	snap.Items = items
	return snap
}

// CountOf returns how many cart lines reference the book.
func (s *Store) CountOf(bookID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.snap.Items {
		if it.BookID == bookID {
			n++
		}
	}
	return n
}

// IsFull reports whether the capacity limit is reached.
func (s *Store) IsFull() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.IsFull()
}

// RemainingSlots returns how many items can still be added.
func (s *Store) RemainingSlots() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.RemainingSlots
}

// Refresh replaces the local snapshot with the authoritative server
// cart. This is the only path through which an item can become
// unavailable; local mutations never infer availability.
func (s *Store) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	remote, err := s.client.CartContents(ctx)
	if err != nil {
		return err
	}
	// Recompute counts and totals locally so the invariant
	// itemsCount == len(items) holds regardless of envelope fields.
	s.setSnapshot(domain.NewCartSnapshot(remote.Items))
	return nil
}

// Add puts one item into the cart. The capacity check runs before any
// network call; on success the returned line is merged optimistically.
// A later Refresh remains the authoritative reconciliation.
func (s *Store) Add(ctx context.Context, bookID int64, itemType domain.ItemType, rentalDays *int) (domain.CartItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.Snapshot().IsFull() {
		return domain.CartItem{}, ErrCartFull
	}

	item, err := s.client.CartAdd(ctx, bookID, itemType, rentalDays)
	if err != nil {
		return domain.CartItem{}, err
	}

	cur := s.Snapshot()
	s.setSnapshot(domain.NewCartSnapshot(append(cur.Items, item)))
	return item, nil
}

// Remove deletes one cart line. The local filter-out happens only
// after the backend confirms; a backend NotFound means the line was
// already gone and counts as satisfied.
func (s *Store) Remove(ctx context.Context, cartItemID int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.client.CartRemove(ctx, cartItemID); err != nil {
		if !api.IsNotFound(err) {
			return err
		}
		slog.Debug("cart_remove_already_gone", "cartItemId", cartItemID)
	}

	cur := s.Snapshot()
	items := make([]domain.CartItem, 0, len(cur.Items))
	for _, it := range cur.Items {
		if it.CartItemID != cartItemID {
			items = append(items, it)
		}
	}
	s.setSnapshot(domain.NewCartSnapshot(items))
	return nil
}

// Clear empties the cart. Destructive and rare, so the local snapshot
// resets only after server confirmation, never optimistically.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.client.CartClear(ctx); err != nil {
		return err
	}
	s.setSnapshot(domain.NewCartSnapshot(nil))
	return nil
}

// CheckAvailability probes stock for a book before opening the
// purchase or rental confirmation. Never mutates the snapshot.
func (s *Store) CheckAvailability(ctx context.Context, bookID int64, itemType domain.ItemType) (api.Availability, error) {
	return s.client.CheckAvailability(ctx, bookID, itemType)
}
