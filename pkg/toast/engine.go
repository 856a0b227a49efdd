package toast

import (
	"log/slog"
	"sync"
	"time"
)

// dismissReason labels why a record left the store. Used for logging
// and metrics only.
type dismissReason string

const (
	reasonManual    dismissReason = "manual"
	reasonExpired   dismissReason = "expired"
	reasonReplaced  dismissReason = "replaced"
	reasonCleared   dismissReason = "cleared"
	reasonDestroyed dismissReason = "destroyed"
)

// timerEntry is one live countdown. A timer entry exists for a record
// iff that record is active, unpaused, non-sticky and has positive
// remaining time; reconcileLocked re-establishes this after every
// mutation.
type timerEntry struct {
	cancel func() bool
}

// subscription is one registered listener. The active flag lets a
// notification pass skip listeners that unsubscribed mid-pass without
// disturbing delivery to the others.
type subscription[T any] struct {
	fn     func(Snapshot[T])
	active bool
	mu     sync.Mutex
}

func (s *subscription[T]) deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *subscription[T]) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Engine is the toast state and timer engine. One engine per
// independent notification scope; instances share no state.
//
// All public methods run to completion synchronously. Timer callbacks
// re-enter the engine's own mutation path through the same mutex, so
// record, timer and listener state can never be observed mid-mutation.
type Engine[T any] struct {
	mu sync.Mutex

	// Insertion-ordered records plus an id index. Invariant: both
	// always contain exactly the same set of ids.
	order []*Record[T]
	index map[string]*Record[T]

	// Live countdowns by record id.
	timers map[string]*timerEntry

	// Listeners in subscription order.
	subs []*subscription[T]

	destroyed bool

	maxVisible int
	dedupe     DedupePolicy
	clock      func() time.Time
	generateID func() string

	// newTimer schedules fn after d and returns a cancel func.
	// Overrideable for deterministic tests.
	newTimer func(d time.Duration, fn func()) func() bool

	logger  *slog.Logger
	metrics *Metrics

	registry  *Registry
	scopeName string
}

// New creates an engine. The zero configuration shows at most five
// toasts, ignores duplicate ids, uses the wall clock and generates
// UUID record ids.
func New[T any](opts ...Option) *Engine[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine[T]{
		index:      make(map[string]*Record[T]),
		timers:     make(map[string]*timerEntry),
		maxVisible: cfg.maxVisible,
		dedupe:     cfg.dedupe,
		clock:      cfg.clock,
		generateID: cfg.generateID,
		newTimer:   stdTimer,
		logger:     cfg.logger.With("component", "toast_engine"),
		metrics:    cfg.metrics,
		registry:   cfg.registry,
		scopeName:  cfg.scopeName,
	}

	if e.registry != nil && e.scopeName != "" {
		e.registry.Register(e.scopeName, e)
	}

	return e
}

// stdTimer is the production timer primitive.
func stdTimer(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Add validates input, enqueues a record and returns its id.
//
// If a record with the resolved id already exists the configured
// dedupe policy applies: DedupeIgnore returns the existing id with no
// mutation and no notification; DedupeRefresh atomically replaces the
// old record with a fresh one at the end of insertion order.
func (e *Engine[T]) Add(in Input[T]) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	e.mu.Lock()

	id := in.ID
	if id == "" {
		id = e.generateID()
	}

	if e.destroyed {
		e.mu.Unlock()
		return id, nil
	}

	if _, exists := e.index[id]; exists {
		if e.dedupe == DedupeIgnore {
			e.mu.Unlock()
			e.metrics.recordDeduped("ignore")
			return id, nil
		}
		// DedupeRefresh: the replacement does not keep the old
		// queue position.
		e.removeLocked(id, reasonReplaced)
		e.metrics.recordDeduped("refresh")
	}

	dur := in.Duration
	if dur < 0 {
		dur = 0
	}

	rec := &Record[T]{
		ID:             id,
		Variant:        in.Variant,
		Payload:        in.Payload,
		Duration:       dur,
		Position:       in.Position,
		DismissOnClick: in.DismissOnClick,
		Role:           in.Role,
		CreatedAt:      e.clock(),
	}
	e.order = append(e.order, rec)
	e.index[id] = rec

	e.reconcileLocked()
	e.metrics.recordAdded(rec.Variant)
	e.logger.Debug("toast added",
		"id", id,
		"variant", rec.Variant,
		"duration", rec.Duration,
		"total", len(e.order))

	e.notifyAndUnlock()
	return id, nil
}

// Dismiss removes the record with the given id. Absent ids are a
// silent no-op: callers legitimately race a dismiss against timer
// expiry.
func (e *Engine[T]) Dismiss(id string) {
	e.mu.Lock()
	if e.destroyed || e.index[id] == nil {
		e.mu.Unlock()
		return
	}

	e.removeLocked(id, reasonManual)
	e.reconcileLocked()
	e.notifyAndUnlock()
}

// DismissAll removes every record. It notifies even when the engine
// is already empty; consumers may rely on the notification as a
// heartbeat.
func (e *Engine[T]) DismissAll() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	for id := range e.timers {
		e.stopTimerLocked(id)
	}
	for _, rec := range e.order {
		e.metrics.recordDismissed(reasonCleared, e.visibleFor(rec))
	}
	e.order = nil
	e.index = make(map[string]*Record[T])
	e.metrics.setDepth(0, 0)

	e.logger.Debug("all toasts dismissed")
	e.notifyAndUnlock()
}

// Pause freezes a running countdown. It is a silent no-op unless the
// record exists, is unpaused, is non-sticky and is currently in the
// active window; hover handlers fire pause/resume in bursts and must
// never see an error.
func (e *Engine[T]) Pause(id string) {
	e.mu.Lock()
	rec := e.index[id]
	if e.destroyed || rec == nil || rec.Paused || rec.Sticky() || !e.inActiveWindowLocked(id) {
		e.mu.Unlock()
		return
	}

	rec.PausedAt = e.clock()
	rec.Paused = true
	e.stopTimerLocked(id)
	e.reconcileLocked()

	e.logger.Debug("toast paused", "id", id, "remaining", rec.Remaining(rec.PausedAt))
	e.notifyAndUnlock()
}

// Resume unfreezes a paused countdown. Silent no-op unless the record
// exists and is paused.
func (e *Engine[T]) Resume(id string) {
	e.mu.Lock()
	rec := e.index[id]
	if e.destroyed || rec == nil || !rec.Paused {
		e.mu.Unlock()
		return
	}

	now := e.clock()
	rec.TotalPaused += now.Sub(rec.PausedAt)
	rec.PausedAt = time.Time{}
	rec.Paused = false
	e.reconcileLocked()

	e.logger.Debug("toast resumed", "id", id)
	e.notifyAndUnlock()
}

// Subscribe registers a listener and invokes it immediately with the
// current snapshot, so a late-mounting renderer needs no separate
// initial fetch. The returned function unsubscribes; it is safe to
// call from within the listener's own callback and is idempotent.
func (e *Engine[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		fn(Snapshot[T]{})
		return func() {}
	}

	sub := &subscription[T]{fn: fn, active: true}
	e.subs = append(e.subs, sub)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	fn(snap)

	return func() {
		sub.deactivate()
		e.mu.Lock()
		for i, s := range e.subs {
			if s == sub {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				break
			}
		}
		e.mu.Unlock()
	}
}

// State returns the current derived snapshot. Pure read, no side
// effects.
func (e *Engine[T]) State() Snapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Count returns the number of records in the store.
func (e *Engine[T]) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.order)
}

// Destroy cancels every timer, drops every listener and empties the
// store. No further notifications fire; subsequent calls on the
// engine are no-ops. If the engine was registered in a registry it is
// unregistered here.
func (e *Engine[T]) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true

	for id := range e.timers {
		e.stopTimerLocked(id)
	}
	for _, rec := range e.order {
		e.metrics.recordDismissed(reasonDestroyed, e.visibleFor(rec))
	}
	e.order = nil
	e.index = make(map[string]*Record[T])
	e.subs = nil
	e.metrics.setDepth(0, 0)
	e.mu.Unlock()

	if e.registry != nil && e.scopeName != "" {
		e.registry.Unregister(e.scopeName, e)
	}

	e.logger.Debug("engine destroyed", "scope", e.scopeName)
}

// expire is the timer callback path. entry identity is checked so a
// callback that lost the race against Dismiss or a dedupe refresh is
// a safe no-op even when Timer.Stop reported failure.
func (e *Engine[T]) expire(id string, entry *timerEntry) {
	e.mu.Lock()
	if e.destroyed || e.timers[id] != entry {
		e.mu.Unlock()
		return
	}
	delete(e.timers, id)

	if e.index[id] == nil {
		e.mu.Unlock()
		return
	}

	e.removeLocked(id, reasonExpired)
	e.reconcileLocked()
	e.logger.Debug("toast expired", "id", id)
	e.notifyAndUnlock()
}

// removeLocked drops a record from both the order slice and the index
// and cancels its timer if any.
func (e *Engine[T]) removeLocked(id string, reason dismissReason) {
	rec := e.index[id]
	if rec == nil {
		return
	}
	e.stopTimerLocked(id)
	delete(e.index, id)
	for i, r := range e.order {
		if r.ID == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.metrics.recordDismissed(reason, e.visibleFor(rec))
}

func (e *Engine[T]) stopTimerLocked(id string) {
	if entry, ok := e.timers[id]; ok {
		entry.cancel()
		delete(e.timers, id)
	}
}

// inActiveWindowLocked reports whether id sits within the first
// maxVisible records in insertion order.
func (e *Engine[T]) inActiveWindowLocked(id string) bool {
	for i, rec := range e.order {
		if i >= e.maxVisible {
			return false
		}
		if rec.ID == id {
			return true
		}
	}
	return false
}

// reconcileLocked is the single-pass timer reconciler invoked after
// every mutation. It cancels timers whose records are no longer
// eligible, starts timers for active records that lack one, and
// immediately removes records whose remaining time is already spent
// (clock skew, long synchronous pause in the host), looping so that
// any record promoted by such a removal is handled in turn.
func (e *Engine[T]) reconcileLocked() {
	now := e.clock()
	for {
		activeSet := make(map[string]*Record[T], e.maxVisible)
		for i, rec := range e.order {
			if i >= e.maxVisible {
				break
			}
			activeSet[rec.ID] = rec
		}

		for id, entry := range e.timers {
			rec, active := activeSet[id]
			if !active || rec.Paused || rec.Sticky() || rec.Remaining(now) <= 0 {
				entry.cancel()
				delete(e.timers, id)
			}
		}

		var expired []string
		for i, rec := range e.order {
			if i >= e.maxVisible {
				break
			}
			if rec.Paused || rec.Sticky() {
				continue
			}
			if _, running := e.timers[rec.ID]; running {
				continue
			}
			rem := rec.Remaining(now)
			if rem <= 0 {
				expired = append(expired, rec.ID)
				continue
			}
			e.scheduleLocked(rec.ID, rem)
		}

		if len(expired) == 0 {
			break
		}
		for _, id := range expired {
			e.removeLocked(id, reasonExpired)
		}
	}

	active := len(e.order)
	if active > e.maxVisible {
		active = e.maxVisible
	}
	e.metrics.setDepth(active, len(e.order)-active)
}

// scheduleLocked starts a countdown of exactly d for id.
func (e *Engine[T]) scheduleLocked(id string, d time.Duration) {
	entry := &timerEntry{}
	entry.cancel = e.newTimer(d, func() { e.expire(id, entry) })
	e.timers[id] = entry
}

// snapshotLocked builds the derived view. Records are copied by
// value so subscribers never alias engine storage.
func (e *Engine[T]) snapshotLocked() Snapshot[T] {
	all := make([]Record[T], len(e.order))
	for i, rec := range e.order {
		all[i] = *rec
	}
	split := len(all)
	if split > e.maxVisible {
		split = e.maxVisible
	}
	return Snapshot[T]{
		All:    all,
		Active: all[:split:split],
		Queued: all[split:],
	}
}

// notifyAndUnlock delivers the post-mutation snapshot to every
// listener in subscription order, releasing the engine lock first so
// a listener may safely call back into the engine. Listeners that
// unsubscribed mid-pass are skipped; the rest are invoked exactly
// once. Listener panics are not caught: a panicking listener is a
// caller bug.
func (e *Engine[T]) notifyAndUnlock() {
	snap := e.snapshotLocked()
	subs := make([]*subscription[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, sub := range subs {
		if sub.isActive() {
			sub.fn(snap)
		}
	}
}

// visibleFor is the time a record spent unpaused in the store, used
// for the visibility histogram.
func (e *Engine[T]) visibleFor(rec *Record[T]) time.Duration {
	ref := e.clock()
	if rec.Paused {
		ref = rec.PausedAt
	}
	return ref.Sub(rec.CreatedAt) - rec.TotalPaused
}
