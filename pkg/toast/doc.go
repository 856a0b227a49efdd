// Package toast is a headless toast notification engine: it decides
// which transient messages are shown, when, for how long and in what
// order, while delegating all rendering to caller-supplied view code.
//
// # Engine
//
// An Engine holds an insertion-ordered record store split into an
// active window (the first MaxVisible records, which alone may hold
// running countdowns) and a queue. Every mutation funnels through a
// single timer reconciler, so active/queued/paused/timer state cannot
// drift apart regardless of the call sequence that produced it.
//
//	engine := toast.New[string](toast.WithMaxVisible(3))
//	defer engine.Destroy()
//
//	unsubscribe := engine.Subscribe(func(s toast.Snapshot[string]) {
//	    render(s.Active) // s.Queued waits for a free slot
//	})
//	defer unsubscribe()
//
// The payload type parameter is opaque to the engine: it is stored
// and forwarded verbatim, never inspected.
//
// # Triggering
//
// Renderers consume Subscribe/State and call Dismiss, Pause and
// Resume; they never call Add directly. Triggering goes through a
// Notifier, which layers per-call options over instance defaults:
//
//	notify := toast.NewNotifier(engine,
//	    toast.WithDefaultDuration(4*time.Second),
//	)
//	notify.Success("Changes saved!")
//	notify.Error("Delete failed", toast.Sticky())
//
// # Scopes
//
// One engine per independent notification scope (for example "global"
// vs "modal" toasts never share a queue). WithScope registers the
// engine in a process-wide registry so hosts can discover scopes for
// zero-configuration mounting; Destroy unregisters it.
package toast
