package feedclient

import (
	"context"
	"errors"
	"sync"
)

// Store is the authoritative holder of feed state: the ordered list of loaded
// comments, the resume cursor, and the load phase. It is the only component
// that mutates them.
//
// Items are newest-first with no duplicate IDs. Loads are strictly sequential:
// at most one page fetch is in flight per store, enforced by the phase flag.
// All mutation happens under the mutex, so a Store is safe to drive from a
// consumer goroutine while a background load resolves.
type Store struct {
	transport Transport
	pageSize  int

	mu            sync.Mutex
	items         []Comment
	cursor        *string
	hasLoadedOnce bool
	phase         Phase
	err           error
	totalCount    int
	generation    uint64
}

// NewStore creates an empty store reading pages of pageSize from transport.
// pageSize <= 0 falls back to DefaultPageSize.
func NewStore(transport Transport, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{
		transport: transport,
		pageSize:  pageSize,
		phase:     PhaseIdle,
	}
}

// LoadFirstPage fetches the first page and replaces the item list wholesale.
// A call while a first load is already in flight is a no-op. On failure the
// previously loaded items are kept, so a failed refresh does not wipe a
// rendered feed.
func (s *Store) LoadFirstPage(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseLoadingFirst || s.phase == PhaseLoadingMore {
		s.mu.Unlock()
		return nil
	}
	s.phase = PhaseLoadingFirst
	s.err = nil
	gen := s.generation
	s.mu.Unlock()

	page, err := s.transport.FetchPage(ctx, nil, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		// Reset during flight: the result belongs to a discarded state.
		return nil
	}
	if err == nil && ctx.Err() != nil {
		// The caller's context expired but the store was not reset. The
		// result is stale; park in the failed phase so a retry can load.
		err = ctx.Err()
	}

	if err != nil {
		s.phase = PhaseFailed
		s.err = &FetchError{Cause: err}
		return s.err
	}

	// Server order is trusted; the client does not re-sort.
	s.items = append([]Comment(nil), page.Comments...)
	s.cursor = page.NextCursor
	s.totalCount = page.TotalCount
	s.hasLoadedOnce = true
	s.phase = PhaseReady
	s.err = nil
	return nil
}

// LoadNextPage fetches the page at the current cursor and appends it. It is a
// no-op while any load is in flight, and a no-op once the feed is exhausted
// (cursor consumed down to nil) until Reset. Items already present are
// filtered out by ID, so a locally inserted comment reappearing in a fetched
// page does not duplicate.
func (s *Store) LoadNextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseLoadingFirst || s.phase == PhaseLoadingMore {
		s.mu.Unlock()
		return nil
	}
	if s.cursor == nil && s.hasLoadedOnce {
		s.mu.Unlock()
		return nil
	}
	cursor := s.cursor
	s.phase = PhaseLoadingMore
	s.err = nil
	gen := s.generation
	s.mu.Unlock()

	page, err := s.transport.FetchPage(ctx, cursor, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return nil
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	if err != nil {
		s.phase = PhaseFailed
		s.err = &FetchError{Cause: err}
		return s.err
	}

	seen := make(map[int64]struct{}, len(s.items))
	for _, c := range s.items {
		seen[c.ID] = struct{}{}
	}
	for _, c := range page.Comments {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		s.items = append(s.items, c)
		seen[c.ID] = struct{}{}
	}

	s.cursor = page.NextCursor
	s.totalCount = page.TotalCount
	s.hasLoadedOnce = true
	s.phase = PhaseReady
	s.err = nil
	return nil
}

// InsertSubmitted prepends a freshly posted comment at the head of the list.
// The head position is unconditional: a just-created comment is the newest by
// definition, whatever its timestamp says relative to loaded items. Inserting
// an ID that is already present is a no-op, which makes double-submit replays
// harmless.
func (s *Store) InsertSubmitted(c Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == c.ID {
			return
		}
	}
	s.items = append([]Comment{c}, s.items...)
	s.totalCount++
}

// Reset clears the store back to its initial empty state and bumps the
// generation so any in-flight fetch resolves to a no-op.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.cursor = nil
	s.hasLoadedOnce = false
	s.phase = PhaseIdle
	s.err = nil
	s.totalCount = 0
	s.generation++
}

// Items returns a copy of the loaded comments, newest first.
func (s *Store) Items() []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Comment(nil), s.items...)
}

// Phase returns the current load phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns the last load error, or nil after any successful operation.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// HasMore reports whether the feed may have further pages. It is true before
// the first load (the feed hasn't been looked at yet) and false once a page
// resolved with no next cursor.
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !(s.hasLoadedOnce && s.cursor == nil)
}

// TotalCount returns the server-reported total, adjusted for local inserts.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCount
}

// Failed reports whether the most recent load failed.
func (s *Store) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseFailed
}

// IsFetchError reports whether err is a transient page-load failure.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
