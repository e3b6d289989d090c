package feedclient

import (
	"context"
	"sync"
)

// Controller bridges consumer trigger events to store operations. It owns
// cancellation of in-flight fetches and coalesces repeated "load more"
// triggers: signals arriving while a load is in flight collapse into a single
// pending intent, consumed once the load resolves — bounded to one extra
// call, never queued indefinitely.
//
// The controller holds no feed data; everything lives in the store.
type Controller struct {
	store *Store

	// OnUpdate, when set, is invoked after every load attempt resolves
	// (success, failure, or discarded cancellation). Set it before Start.
	OnUpdate func()

	mu          sync.Mutex
	rootCtx     context.Context
	rootCancel  context.CancelFunc
	fetchCancel context.CancelFunc
	loading     bool
	loadSeq     uint64
	pending     bool
	closed      bool
}

// NewController creates a controller driving the given store.
func NewController(store *Store) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:      store,
		rootCtx:    ctx,
		rootCancel: cancel,
	}
}

// Start kicks off the initial page load in the background.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.loading {
		return
	}
	c.beginLoadLocked(true)
}

// RequestMore signals that the consumer is near the end of the loaded feed.
// The signal is a level, not an edge: while a load is in flight repeated
// calls set a single pending intent instead of stacking requests.
func (c *Controller) RequestMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.loading {
		c.pending = true
		return
	}
	if !c.store.HasMore() {
		return
	}
	c.beginLoadLocked(false)
}

// Refresh discards all loaded state and reloads from the top. Any in-flight
// fetch is cancelled; its late-arriving result will not touch the fresh
// state.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.fetchCancel != nil {
		c.fetchCancel()
	}
	c.pending = false
	c.store.Reset()
	c.beginLoadLocked(true)
}

// Close cancels any in-flight work. The controller must not be used after
// Close; late results are discarded silently.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.rootCancel()
}

// beginLoadLocked starts a load goroutine. Caller holds c.mu.
func (c *Controller) beginLoadLocked(first bool) {
	ctx, cancel := context.WithCancel(c.rootCtx)
	c.fetchCancel = cancel
	c.loading = true
	c.loadSeq++
	go c.runLoad(ctx, cancel, c.loadSeq, first)
}

func (c *Controller) runLoad(ctx context.Context, cancel context.CancelFunc, seq uint64, first bool) {
	defer cancel()

	for {
		var err error
		if first {
			err = c.store.LoadFirstPage(ctx)
			first = false
		} else {
			err = c.store.LoadNextPage(ctx)
		}

		if c.OnUpdate != nil && ctx.Err() == nil {
			c.OnUpdate()
		}

		c.mu.Lock()
		if c.loadSeq != seq {
			// Superseded by a Refresh; the new load owns the flags.
			c.mu.Unlock()
			return
		}
		// Consume the pending intent only after a successful load; a failed
		// load waits for an explicit retry rather than auto-retrying.
		if c.pending && err == nil && ctx.Err() == nil && !c.closed && c.store.HasMore() {
			c.pending = false
			c.mu.Unlock()
			continue
		}
		c.pending = false
		c.loading = false
		c.mu.Unlock()
		return
	}
}
