// Package listing implements the list-screen controller shared by every
// entity: paginated query state, debounced search, optimistic mutation with
// server reconciliation, and realtime resync over a change feed. One generic
// controller parameterized per entity replaces per-screen copies.
package listing

import (
	"context"
	"sync"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/session"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/utils"
)

const DefaultDebounce = 500 * time.Millisecond

// Config parameterizes a controller for one entity.
type Config[T Record] struct {
	// Collection names the backing collection, used for realtime subscription
	// scoping and logs.
	Collection string
	// PageSize is the initial page size; DefaultPageSize when zero.
	PageSize int
	// Debounce is the search quiescence window; DefaultDebounce when zero.
	Debounce time.Duration
	// VisibleTo decides whether the principal still sees a row after a
	// toggle/settle mutation. nil means always visible (replace in place).
	// When it answers false the row is removed optimistically instead.
	VisibleTo func(p *domain.Principal, row T) bool
}

// PendingAction is the tagged confirmation state the dialog layer renders
// from. Exactly one action can be pending at a time.
type PendingAction int

const (
	PendingNone PendingAction = iota
	PendingDelete
	PendingSettle
)

// State is a snapshot of a list screen.
type State[T Record] struct {
	Page        int
	PageSize    int
	TotalCount  int
	RawSearch   string
	Search      string
	Rows        []T
	Loading     bool
	LastError   string
	Pending     PendingAction
	PendingID   string
	// FocusSearch is set when the last completed load should return keyboard
	// focus to the search input (everything except pagination actions).
	FocusSearch bool
}

// TotalPages derives the page count from the last known total.
func (s State[T]) TotalPages() int { return TotalPages(s.TotalCount, s.PageSize) }

// Controller owns one screen's ListQueryState. All exported methods are safe
// for concurrent use; loads run asynchronously and stale responses are
// discarded by sequence number.
type Controller[T Record] struct {
	cfg  Config[T]
	gw   Gateway[T]
	sess *session.Session

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	state         State[T]
	seq           uint64
	closed        bool
	skipNextFocus bool
	debounce      *time.Timer
	debounceGen   uint64
	unsub         func()
	sessUnsub     func()
}

// NewController builds the controller and, when sub is non-nil, opens the
// realtime subscription for the controller's lifetime. The initial load is
// issued immediately (screen mount).
func NewController[T Record](cfg Config[T], gw Gateway[T], sub Subscriber, sess *session.Session) *Controller[T] {
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller[T]{
		cfg:    cfg,
		gw:     gw,
		sess:   sess,
		ctx:    ctx,
		cancel: cancel,
		state: State[T]{
			Page:     1,
			PageSize: cfg.PageSize,
		},
	}

	if sub != nil {
		ch, unsub, err := sub.Subscribe(ctx, cfg.Collection)
		if err != nil {
			utils.LogEvent("", cfg.Collection, "subscribe", "falha na assinatura realtime: "+err.Error())
		} else {
			c.unsub = unsub
			go c.resyncLoop(ch)
		}
	}

	if sess != nil {
		// what a principal may see depends on who they are; refetch when the
		// session resolves or switches users
		c.sessUnsub = sess.Subscribe(func(*domain.Principal) { c.Reload() })
	}

	c.mu.Lock()
	c.loadLocked()
	c.mu.Unlock()
	return c
}

// Close tears the screen down: cancels in-flight loads, stops the debounce
// timer and unsubscribes the change feed. Late responses are never applied.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	if c.debounce != nil {
		c.debounce.Stop()
	}
	unsub := c.unsub
	sessUnsub := c.sessUnsub
	c.mu.Unlock()

	c.cancel()
	if unsub != nil {
		unsub()
	}
	if sessUnsub != nil {
		sessUnsub()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Rows = append([]T(nil), c.state.Rows...)
	return st
}

// Reload refetches the current page with the current query state.
func (c *Controller[T]) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.loadLocked()
}

// Search records the raw text immediately and schedules the debounced apply:
// 500 ms of no further keystrokes moves the text into the effective query,
// resets to page 1 and loads. Last write wins.
func (c *Controller[T]) Search(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.RawSearch = text
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounceGen++
	gen := c.debounceGen
	c.debounce = time.AfterFunc(c.cfg.Debounce, func() { c.fireSearch(gen) })
}

// fireSearch applies the debounced text. Stop does not invalidate a timer that
// already fired and is waiting on the mutex; the generation check keeps such a
// timer from applying text a newer keystroke replaced.
func (c *Controller[T]) fireSearch(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.debounceGen {
		return
	}
	c.state.Search = c.state.RawSearch
	c.state.Page = 1
	c.loadLocked()
}

// SetPage jumps to page p (clamped to [1, totalPages]) and suppresses the
// search-focus side effect for the resulting load.
func (c *Controller[T]) SetPage(p int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if p < 1 {
		p = 1
	}
	if tp := c.state.TotalPages(); p > tp {
		p = tp
	}
	if p == c.state.Page {
		return
	}
	c.state.Page = p
	c.skipNextFocus = true
	c.loadLocked()
}

// SetPageSize switches to one of the selectable page sizes, returning to
// page 1. Invalid sizes are ignored.
func (c *Controller[T]) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !ValidPageSize(n) || n == c.state.PageSize {
		return
	}
	c.state.PageSize = n
	c.state.Page = 1
	c.skipNextFocus = true
	c.loadLocked()
}

// CanMutate answers the UI pre-check for a row currently on screen. The
// gateway remains the authority; this only disables buttons.
func (c *Controller[T]) CanMutate(id string) bool {
	c.mu.Lock()
	row, ok := c.findLocked(id)
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.sess.CanMutate(row)
}

// ToggleActive flips a row's active flag through the gateway and reconciles
// local state with the returned row. When the configured visibility rule hides
// the updated row from the current principal it is removed optimistically,
// stepping back a page when a non-first page empties.
func (c *Controller[T]) ToggleActive(id string) (T, error) {
	var zero T

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, domain.InternalError{Msg: "tela encerrada"}
	}
	row, ok := c.findLocked(id)
	if !ok {
		c.mu.Unlock()
		return zero, domain.NotFoundError{Resource: c.cfg.Collection}
	}
	if err := c.precheckLocked(row); err != nil {
		c.state.LastError = err.Error()
		c.mu.Unlock()
		return zero, err
	}
	target := !row.IsActive()
	c.mu.Unlock()

	updated, err := c.gw.SetActive(c.ctx, id, target)
	return c.reconcile(id, updated, err)
}

// RequestDelete opens the confirmation state for id. Nothing is deleted until
// ConfirmDelete.
func (c *Controller[T]) RequestDelete(id string) {
	c.setPending(PendingDelete, id)
}

// RequestSettle opens the confirmation state for settling id.
func (c *Controller[T]) RequestSettle(id string) {
	c.setPending(PendingSettle, id)
}

// CancelPending declines whichever confirmation is open, with no side effect.
func (c *Controller[T]) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pending = PendingNone
	c.state.PendingID = ""
}

// ConfirmDelete performs the pending deletion. On success the search text is
// cleared (post-deletion the screen returns to the unfiltered view), the page
// steps back when the last row of a page beyond the first went away, and the
// list reloads.
func (c *Controller[T]) ConfirmDelete() error {
	c.mu.Lock()
	if c.state.Pending != PendingDelete || c.state.PendingID == "" {
		c.mu.Unlock()
		return domain.InternalError{Msg: "nenhuma exclusão pendente"}
	}
	id := c.state.PendingID
	c.state.Pending = PendingNone
	c.state.PendingID = ""

	if row, ok := c.findLocked(id); ok {
		if err := c.precheckLocked(row); err != nil {
			c.state.LastError = err.Error()
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	err := c.gw.Delete(c.ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}
	if err != nil {
		c.state.LastError = err.Error()
		return err
	}

	c.removeLocked(id)
	if c.state.TotalCount > 0 {
		c.state.TotalCount--
	}
	c.state.RawSearch = ""
	c.state.Search = ""
	c.debounceGen++
	if c.debounce != nil {
		c.debounce.Stop()
	}
	if len(c.state.Rows) == 0 && c.state.Page > 1 {
		c.state.Page--
	}
	c.loadLocked()
	return nil
}

// ConfirmSettle stamps the pending row as settled at the given time,
// reconciling like ToggleActive.
func (c *Controller[T]) ConfirmSettle(at time.Time) (T, error) {
	var zero T

	c.mu.Lock()
	if c.state.Pending != PendingSettle || c.state.PendingID == "" {
		c.mu.Unlock()
		return zero, domain.InternalError{Msg: "nenhuma baixa pendente"}
	}
	id := c.state.PendingID
	c.state.Pending = PendingNone
	c.state.PendingID = ""

	if row, ok := c.findLocked(id); ok {
		if err := c.precheckLocked(row); err != nil {
			c.state.LastError = err.Error()
			c.mu.Unlock()
			return zero, err
		}
	}
	c.mu.Unlock()

	updated, err := c.gw.Settle(c.ctx, id, at)
	return c.reconcile(id, updated, err)
}

// ConsumeFocusSearch reports whether the last completed load should return
// keyboard focus to the search input, clearing the flag. One consumer per
// load: pagination and page-size loads never set it.
func (c *Controller[T]) ConsumeFocusSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	focus := c.state.FocusSearch
	c.state.FocusSearch = false
	return focus
}

// ClearError dismisses the error dialog.
func (c *Controller[T]) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastError = ""
}

func (c *Controller[T]) setPending(kind PendingAction, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Pending = kind
	c.state.PendingID = id
}

// precheckLocked applies the client-side authorization gate. An unresolved
// session is "unknown", not denied, so the action is refused with a distinct
// message.
func (c *Controller[T]) precheckLocked(row T) error {
	if c.sess.Loading() {
		return domain.InternalError{Msg: "sessão ainda não resolvida, tente novamente"}
	}
	if !domain.CanMutate(c.sess.Principal(), row) {
		return domain.PermissionDeniedError{Resource: c.cfg.Collection}
	}
	return nil
}

// reconcile applies a mutation result: replace in place when the row stays
// visible, remove optimistically when not, stepping back a page when a
// non-first page empties.
func (c *Controller[T]) reconcile(id string, updated T, err error) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return zero, err
	}
	if err != nil {
		c.state.LastError = err.Error()
		return zero, err
	}
	c.state.LastError = ""

	visible := true
	if c.cfg.VisibleTo != nil {
		visible = c.cfg.VisibleTo(c.sess.Principal(), updated)
	}
	if visible {
		for i, r := range c.state.Rows {
			if r.RecordID() == id {
				c.state.Rows[i] = updated
				break
			}
		}
		return updated, nil
	}

	c.removeLocked(id)
	if len(c.state.Rows) == 0 && c.state.Page > 1 {
		c.state.Page--
		c.loadLocked()
	}
	return updated, nil
}

func (c *Controller[T]) findLocked(id string) (T, bool) {
	for _, r := range c.state.Rows {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) removeLocked(id string) {
	rows := c.state.Rows[:0]
	for _, r := range c.state.Rows {
		if r.RecordID() != id {
			rows = append(rows, r)
		}
	}
	c.state.Rows = rows
}

// loadLocked issues an asynchronous fetch for the current query state. The
// caller holds c.mu. Responses older than the latest issued request are
// dropped so a slow page-1 response can never overwrite page 2.
func (c *Controller[T]) loadLocked() {
	c.seq++
	seq := c.seq
	q := Query{Page: c.state.Page, PageSize: c.state.PageSize, Search: c.state.Search}
	c.state.Loading = true

	go func() {
		page, err := c.gw.List(c.ctx, q)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.seq {
			return
		}
		c.state.Loading = false
		c.state.FocusSearch = !c.skipNextFocus
		c.skipNextFocus = false

		if err != nil {
			// rows keep their previous (stale but displayed) value
			c.state.LastError = err.Error()
			return
		}
		c.state.Rows = page.Rows
		c.state.TotalCount = page.TotalCount
		c.state.LastError = ""

		// A remote shrink can leave us past the end; clamp and refetch.
		if tp := c.state.TotalPages(); c.state.Page > tp {
			c.state.Page = tp
			c.loadLocked()
		}
	}()
}

func (c *Controller[T]) resyncLoop(ch <-chan Change) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			c.mu.Lock()
			if !c.closed {
				c.loadLocked()
			}
			c.mu.Unlock()
		}
	}
}
