package feedclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// MOCK TRANSPORT
// =============================================================================
//
// The store depends on the Transport interface, so tests swap in a mock whose
// behavior each test defines through function fields. Calls are recorded for
// assertions on how many network operations actually ran.

type mockTransport struct {
	mu              sync.Mutex
	fetchPageFn     func(ctx context.Context, cursor *string, limit int) (*FeedPage, error)
	createCommentFn func(ctx context.Context, content, key string) (*Comment, error)

	fetchCalls  []fetchCall
	createCalls []createCall
}

type fetchCall struct {
	Cursor *string
	Limit  int
}

type createCall struct {
	Content string
	Key     string
}

func (m *mockTransport) FetchPage(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
	m.mu.Lock()
	m.fetchCalls = append(m.fetchCalls, fetchCall{Cursor: cursor, Limit: limit})
	fn := m.fetchPageFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, cursor, limit)
	}
	return &FeedPage{Comments: []Comment{}}, nil
}

func (m *mockTransport) CreateComment(ctx context.Context, content, key string) (*Comment, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, createCall{Content: content, Key: key})
	fn := m.createCommentFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, content, key)
	}
	return &Comment{ID: 1, Content: content, CreatedAt: time.Now()}, nil
}

func (m *mockTransport) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetchCalls)
}

// makeComments builds n comments with descending timestamps starting at id.
func makeComments(startID int64, n int) []Comment {
	base := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	comments := make([]Comment, n)
	for i := 0; i < n; i++ {
		id := startID + int64(i)
		comments[i] = Comment{
			ID:        id,
			Content:   fmt.Sprintf("comment %d", id),
			CreatedAt: base.Add(-time.Duration(id) * time.Minute),
		}
	}
	return comments
}

func strPtr(s string) *string { return &s }

// =============================================================================
// FIRST PAGE
// =============================================================================

func TestStore_LoadFirstPage_EmptyFeed(t *testing.T) {
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			return &FeedPage{Comments: []Comment{}, NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if got := store.Phase(); got != PhaseReady {
		t.Errorf("phase = %v, want %v", got, PhaseReady)
	}
	if got := len(store.Items()); got != 0 {
		t.Errorf("items length = %d, want 0", got)
	}
	if store.HasMore() {
		t.Error("expected HasMore to be false after an empty final page")
	}
}

func TestStore_LoadFirstPage_ReplacesWholesale(t *testing.T) {
	pages := [][]Comment{makeComments(1, 3), makeComments(100, 2)}
	var call int
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			p := pages[call]
			call++
			return &FeedPage{Comments: p, NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("refresh load: %v", err)
	}

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("items length = %d, want 2 (wholesale replace)", len(items))
	}
	if items[0].ID != 100 {
		t.Errorf("items[0].ID = %d, want 100", items[0].ID)
	}
}

func TestStore_LoadFirstPage_FailureKeepsItems(t *testing.T) {
	var fail bool
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if fail {
				return nil, errors.New("connection refused")
			}
			return &FeedPage{Comments: makeComments(1, 5), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	fail = true
	err := store.LoadFirstPage(context.Background())
	if err == nil {
		t.Fatal("expected an error from the failed refresh")
	}
	if !IsFetchError(err) {
		t.Errorf("expected a FetchError, got %T", err)
	}

	// A failed refresh must not wipe the previously rendered feed
	if got := len(store.Items()); got != 5 {
		t.Errorf("items length after failed refresh = %d, want 5", got)
	}
	if got := store.Phase(); got != PhaseFailed {
		t.Errorf("phase = %v, want %v", got, PhaseFailed)
	}
}

// =============================================================================
// PAGINATION
// =============================================================================

func TestStore_TwoPageWalk(t *testing.T) {
	// 15 comments, page size 10: first page carries a cursor, second is final
	all := makeComments(1, 15)
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if cursor == nil {
				return &FeedPage{Comments: all[:10], NextCursor: strPtr("c1"), TotalCount: 15}, nil
			}
			if *cursor != "c1" {
				t.Errorf("cursor = %q, want %q", *cursor, "c1")
			}
			return &FeedPage{Comments: all[10:], NextCursor: nil, TotalCount: 15}, nil
		},
	}
	store := NewStore(transport, 10)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}
	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("second page: %v", err)
	}

	items := store.Items()
	if len(items) != 15 {
		t.Fatalf("items length = %d, want 15", len(items))
	}
	for i, c := range items {
		if c.ID != all[i].ID {
			t.Fatalf("items[%d].ID = %d, want %d (server order preserved)", i, c.ID, all[i].ID)
		}
	}

	// Feed exhausted: further loads must not reach the network until Reset
	before := transport.fetchCount()
	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("post-exhaustion load: %v", err)
	}
	if got := transport.fetchCount(); got != before {
		t.Errorf("fetch count after exhaustion = %d, want %d", got, before)
	}

	store.Reset()
	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("reload after reset: %v", err)
	}
	if got := transport.fetchCount(); got != before+1 {
		t.Errorf("fetch count after reset+reload = %d, want %d", got, before+1)
	}
}

func TestStore_LoadNextPage_AppendPreservesPrefix(t *testing.T) {
	first := makeComments(1, 3)
	second := makeComments(50, 3)
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if cursor == nil {
				return &FeedPage{Comments: first, NextCursor: strPtr("c1")}, nil
			}
			return &FeedPage{Comments: second, NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 3)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}
	prefix := store.Items()

	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("second page: %v", err)
	}
	items := store.Items()

	for i := range prefix {
		if items[i].ID != prefix[i].ID {
			t.Fatalf("prefix changed at %d: got %d, want %d", i, items[i].ID, prefix[i].ID)
		}
	}
	for i, c := range second {
		if items[len(prefix)+i].ID != c.ID {
			t.Fatalf("appended item %d = %d, want %d", i, items[len(prefix)+i].ID, c.ID)
		}
	}
}

func TestStore_LoadNextPage_DedupsAgainstLoadedItems(t *testing.T) {
	first := makeComments(1, 3)
	// Second page re-serves comment 3 (the user scrolled back over a page
	// boundary that shifted), plus two new ones
	overlap := append([]Comment{first[2]}, makeComments(50, 2)...)
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if cursor == nil {
				return &FeedPage{Comments: first, NextCursor: strPtr("c1")}, nil
			}
			return &FeedPage{Comments: overlap, NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 3)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}
	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("second page: %v", err)
	}

	items := store.Items()
	if len(items) != 5 {
		t.Fatalf("items length = %d, want 5 (duplicate filtered)", len(items))
	}
	seen := make(map[int64]bool)
	for _, c := range items {
		if seen[c.ID] {
			t.Fatalf("duplicate id %d in items", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestStore_LoadNextPage_FailureKeepsItemsAndAllowsRetry(t *testing.T) {
	var fail bool
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if cursor == nil {
				return &FeedPage{Comments: makeComments(1, 3), NextCursor: strPtr("c1")}, nil
			}
			if fail {
				return nil, errors.New("gateway timeout")
			}
			return &FeedPage{Comments: makeComments(50, 2), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 3)

	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}

	fail = true
	if err := store.LoadNextPage(context.Background()); err == nil {
		t.Fatal("expected the failed page load to error")
	}
	if got := len(store.Items()); got != 3 {
		t.Errorf("items length after failure = %d, want 3", got)
	}

	// An explicit retry succeeds from where the cursor left off
	fail = false
	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := len(store.Items()); got != 5 {
		t.Errorf("items length after retry = %d, want 5", got)
	}
}

// =============================================================================
// HEAD INSERTION
// =============================================================================

func TestStore_InsertSubmitted_PrependsRegardlessOfTimestamp(t *testing.T) {
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			return &FeedPage{Comments: makeComments(1, 3), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)
	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}

	// Deliberately older than everything loaded: head position still wins
	submitted := Comment{ID: 999, Content: "mine", CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.InsertSubmitted(submitted)

	items := store.Items()
	if items[0].ID != 999 {
		t.Fatalf("items[0].ID = %d, want 999", items[0].ID)
	}
	if len(items) != 4 {
		t.Fatalf("items length = %d, want 4", len(items))
	}
}

func TestStore_InsertSubmitted_IdempotentOnReplay(t *testing.T) {
	store := NewStore(&mockTransport{}, 10)

	c := Comment{ID: 7, Content: "hello"}
	store.InsertSubmitted(c)
	store.InsertSubmitted(c) // double-submit replay

	if got := len(store.Items()); got != 1 {
		t.Errorf("items length = %d, want 1", got)
	}
}

func TestStore_InsertSubmitted_NoDuplicateAfterRefetch(t *testing.T) {
	submitted := Comment{ID: 42, Content: "mine", CreatedAt: time.Now()}
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			// The server now serves the submitted comment in the page
			return &FeedPage{Comments: append([]Comment{submitted}, makeComments(1, 2)...), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	store.InsertSubmitted(submitted)
	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("page load: %v", err)
	}

	count := 0
	for _, c := range store.Items() {
		if c.ID == 42 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("comment 42 appears %d times, want 1", count)
	}
}

// =============================================================================
// SINGLE FLIGHT AND CANCELLATION
// =============================================================================

func TestStore_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			close(started)
			<-release
			return &FeedPage{Comments: makeComments(1, 2), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	done := make(chan error, 1)
	go func() { done <- store.LoadNextPage(context.Background()) }()
	<-started

	// Second trigger while the first is still in flight: dropped, no fetch
	if err := store.LoadNextPage(context.Background()); err != nil {
		t.Fatalf("concurrent load: %v", err)
	}
	if got := transport.fetchCount(); got != 1 {
		t.Errorf("fetch count = %d, want 1", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("blocked load: %v", err)
	}
}

func TestStore_ResetDiscardsLateResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			close(started)
			<-release
			return &FeedPage{Comments: makeComments(1, 5), NextCursor: strPtr("c1")}, nil
		},
	}
	store := NewStore(transport, 10)

	done := make(chan error, 1)
	go func() { done <- store.LoadFirstPage(context.Background()) }()
	<-started

	store.Reset()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("late-arriving load reported an error: %v", err)
	}

	// The late result must not touch post-reset state
	if got := len(store.Items()); got != 0 {
		t.Errorf("items length after reset = %d, want 0", got)
	}
	if got := store.Phase(); got != PhaseIdle {
		t.Errorf("phase after reset = %v, want %v", got, PhaseIdle)
	}
	if !store.HasMore() {
		t.Error("expected HasMore to be true for a reset store")
	}
}

func TestStore_CancelledLoadIsRetryable(t *testing.T) {
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return &FeedPage{Comments: makeComments(1, 2), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.LoadFirstPage(ctx); err == nil {
		t.Fatal("expected the cancelled load to error")
	}
	if got := store.Phase(); got != PhaseFailed {
		t.Fatalf("phase after cancelled load = %v, want %v", got, PhaseFailed)
	}

	// A fresh context must get through; the cancellation must not leave the
	// store stuck in a loading phase that swallows every later call.
	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := len(store.Items()); got != 2 {
		t.Errorf("items length after retry = %d, want 2", got)
	}
	if got := transport.fetchCount(); got != 2 {
		t.Errorf("fetch count = %d, want 2", got)
	}
}

func TestStore_CancelledLoadDiscardsDataButStaysRetryable(t *testing.T) {
	// A transport that races its result against cancellation may return a
	// page even though the context is already done. The stale page must not
	// land, but the store must still accept an explicit retry.
	first := true
	transport := &mockTransport{
		fetchPageFn: func(ctx context.Context, cursor *string, limit int) (*FeedPage, error) {
			if first {
				return &FeedPage{Comments: makeComments(1, 5), NextCursor: nil}, nil
			}
			return &FeedPage{Comments: makeComments(10, 3), NextCursor: nil}, nil
		},
	}
	store := NewStore(transport, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.LoadFirstPage(ctx); err == nil {
		t.Fatal("expected an error for a load whose context expired")
	}
	if got := len(store.Items()); got != 0 {
		t.Fatalf("items length = %d, want 0 (stale result must not land)", got)
	}

	first = false
	if err := store.LoadFirstPage(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := len(store.Items()); got != 3 {
		t.Errorf("items length after retry = %d, want 3", got)
	}
}
