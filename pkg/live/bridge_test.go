package live

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/toastkit/pkg/toast"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBridge(t *testing.T) (*toast.Engine[string], *Bridge[string], *httptest.Server) {
	t.Helper()

	engine := toast.New[string](toast.WithLogger(quietLogger()))
	bridge := NewBridge(engine,
		WithLogger(quietLogger()),
		WithCheckOrigin(func(*http.Request) bool { return true }),
	)
	srv := httptest.NewServer(bridge.Router())

	t.Cleanup(func() {
		srv.Close()
		bridge.Close()
		engine.Destroy()
	})
	return engine, bridge, srv
}

func stickyInput(id string) toast.Input[string] {
	return toast.Input[string]{
		ID:       id,
		Variant:  toast.VariantInfo,
		Payload:  "hello",
		Position: toast.PositionBottomRight,
		Role:     toast.RoleStatus,
	}
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) wireSnapshot[string] {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var snap wireSnapshot[string]
	if err := json.Unmarshal(msg, &snap); err != nil {
		t.Fatalf("bad frame %s: %v", msg, err)
	}
	if snap.Type != "snapshot" {
		t.Fatalf("frame type = %q, want snapshot", snap.Type)
	}
	return snap
}

// waitFor polls cond until it holds or the deadline passes. Commands
// travel through the socket's read loop, so engine effects are
// eventually visible rather than immediate.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestStateEndpoint(t *testing.T) {
	engine, _, srv := newTestBridge(t)
	engine.Add(stickyInput("x"))

	resp, err := http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatalf("GET /state failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var snap wireSnapshot[string]
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(snap.Active) != 1 || snap.Active[0].ID != "x" {
		t.Errorf("active = %+v, want [x]", snap.Active)
	}
	if snap.Active[0].Payload != "hello" {
		t.Errorf("payload = %q", snap.Active[0].Payload)
	}
}

func TestWSInitialSnapshot(t *testing.T) {
	engine, _, srv := newTestBridge(t)
	engine.Add(stickyInput("pre"))

	conn := dialWS(t, srv)

	snap := readSnapshot(t, conn)
	if len(snap.Active) != 1 || snap.Active[0].ID != "pre" {
		t.Errorf("initial snapshot = %+v, want the state at connect", snap.Active)
	}
}

func TestWSPushOnMutation(t *testing.T) {
	engine, _, srv := newTestBridge(t)
	conn := dialWS(t, srv)

	if snap := readSnapshot(t, conn); len(snap.Active) != 0 {
		t.Fatalf("initial snapshot not empty: %+v", snap.Active)
	}

	in := stickyInput("new")
	in.Duration = time.Minute
	engine.Add(in)

	snap := readSnapshot(t, conn)
	if len(snap.Active) != 1 || snap.Active[0].ID != "new" {
		t.Fatalf("pushed snapshot = %+v, want [new]", snap.Active)
	}
	rec := snap.Active[0]
	if rec.DurationMS != 60_000 {
		t.Errorf("durationMs = %d, want 60000", rec.DurationMS)
	}
	if rec.RemainingMS <= 0 || rec.RemainingMS > rec.DurationMS {
		t.Errorf("remainingMs = %d out of range", rec.RemainingMS)
	}
}

func TestWSDismissCommand(t *testing.T) {
	engine, _, srv := newTestBridge(t)
	engine.Add(stickyInput("x"))

	conn := dialWS(t, srv)
	readSnapshot(t, conn)

	if err := conn.WriteJSON(command{Op: "dismiss", ID: "x"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	waitFor(t, func() bool { return engine.Count() == 0 })
}

func TestWSPauseResumeCommands(t *testing.T) {
	engine, _, srv := newTestBridge(t)
	in := stickyInput("x")
	in.Duration = time.Minute
	engine.Add(in)

	conn := dialWS(t, srv)
	readSnapshot(t, conn)

	conn.WriteJSON(command{Op: "pause", ID: "x"})
	waitFor(t, func() bool {
		s := engine.State()
		return len(s.All) == 1 && s.All[0].Paused
	})

	conn.WriteJSON(command{Op: "resume", ID: "x"})
	waitFor(t, func() bool {
		s := engine.State()
		return len(s.All) == 1 && !s.All[0].Paused
	})
}

func TestWSUnknownOpIgnored(t *testing.T) {
	engine, _, srv := newTestBridge(t)
	engine.Add(stickyInput("x"))

	conn := dialWS(t, srv)
	readSnapshot(t, conn)

	conn.WriteJSON(command{Op: "explode"})
	conn.WriteJSON(command{Op: "dismiss", ID: "x"}) // still processed

	waitFor(t, func() bool { return engine.Count() == 0 })
}

func TestSlowConsumerDoesNotBlockEngine(t *testing.T) {
	engine, _, srv := newTestBridge(t)

	// Connect and never read: frames pile into the outbound queue
	// and the oldest get dropped, but mutations stay synchronous.
	dialWS(t, srv)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			in := stickyInput("")
			engine.Add(in)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine mutations blocked by a slow consumer")
	}
}

func TestClosedBridgeRejectsWS(t *testing.T) {
	engine := toast.New[string](toast.WithLogger(quietLogger()))
	defer engine.Destroy()

	bridge := NewBridge(engine, WithLogger(quietLogger()))
	srv := httptest.NewServer(bridge.Router())
	defer srv.Close()

	bridge.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded against a closed bridge")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %v, want 503", resp)
	}
}
