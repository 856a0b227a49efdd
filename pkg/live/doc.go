// Package live streams toast engine state to remote renderers over
// WebSocket and relays their dismiss/pause/resume commands back.
//
// A Bridge is a pure consumer of the engine's subscription API: it
// pushes a snapshot frame on connect and after every engine
// notification, and it never mutates a snapshot. Frames are JSON:
//
//	{"type":"snapshot","active":[...],"queued":[...]}
//
// Inbound command frames select one engine operation:
//
//	{"op":"dismiss","id":"abc"}
//	{"op":"dismissAll"}
//
// The bridge deliberately has no "add" command: toasts are triggered
// by the host application through a toast.Notifier, not by renderers.
//
//	engine := toast.New[Payload](toast.WithScope("global"))
//	bridge := live.NewBridge(engine)
//	defer bridge.Close()
//
//	mux.Mount("/toasts", bridge.Router())
package live
