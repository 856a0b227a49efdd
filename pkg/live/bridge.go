package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/toastkit/pkg/toast"
)

// defaultTracerName is the tracer used for renderer commands.
const defaultTracerName = "toastkit"

// Config configures a Bridge.
type Config struct {
	// Logger is the bridge logger. Default: slog.Default.
	Logger *slog.Logger

	// TracerName names the otel tracer for command spans.
	// Default: "toastkit".
	TracerName string

	// CheckOrigin is the WebSocket origin check.
	// Default: same-origin (the gorilla default).
	CheckOrigin func(r *http.Request) bool

	// SendBuffer is the per-connection outbound queue length.
	// A slow consumer drops stale snapshots rather than blocking the
	// engine. Default: 8.
	SendBuffer int
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Config)

// WithLogger sets the bridge logger.
func WithLogger(logger *slog.Logger) BridgeOption {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithTracerName sets the otel tracer name.
func WithTracerName(name string) BridgeOption {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithCheckOrigin sets the WebSocket origin check. Tests pass a
// check that accepts everything.
func WithCheckOrigin(check func(r *http.Request) bool) BridgeOption {
	return func(c *Config) {
		c.CheckOrigin = check
	}
}

// WithSendBuffer sets the per-connection outbound queue length.
func WithSendBuffer(n int) BridgeOption {
	return func(c *Config) {
		if n > 0 {
			c.SendBuffer = n
		}
	}
}

func defaultBridgeConfig() Config {
	return Config{
		Logger:     slog.Default(),
		TracerName: defaultTracerName,
		SendBuffer: 8,
	}
}

// Bridge exposes one engine to remote renderers: snapshots stream out
// over WebSocket, renderer commands (dismiss, pause, resume) come
// back in and re-enter the engine's mutation path. The renderer never
// adds toasts; triggering stays with the host application.
type Bridge[T any] struct {
	engine *toast.Engine[T]
	logger *slog.Logger
	tracer trace.Tracer

	upgrader   websocket.Upgrader
	sendBuffer int

	mu          sync.Mutex
	conns       map[*wsConn]struct{}
	closed      bool
	unsubscribe func()
}

// wsConn is one renderer connection with its outbound queue.
type wsConn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

// NewBridge creates a bridge over engine and subscribes to it. Call
// Close to detach.
func NewBridge[T any](engine *toast.Engine[T], opts ...BridgeOption) *Bridge[T] {
	cfg := defaultBridgeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Bridge[T]{
		engine: engine,
		logger: cfg.Logger.With("component", "toast_bridge"),
		tracer: otel.Tracer(cfg.TracerName),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		sendBuffer: cfg.SendBuffer,
		conns:      make(map[*wsConn]struct{}),
	}

	b.unsubscribe = engine.Subscribe(func(s toast.Snapshot[T]) {
		b.broadcast(s)
	})

	return b
}

// Router returns the bridge's HTTP surface:
//
//	GET /state  - current snapshot as JSON
//	GET /ws     - WebSocket snapshot stream + command channel
func (b *Bridge[T]) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/state", b.handleState)
	r.Get("/ws", b.handleWS)
	return r
}

// Close unsubscribes from the engine and closes every connection.
func (b *Bridge[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	conns := make([]*wsConn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.conns = make(map[*wsConn]struct{})
	b.mu.Unlock()

	b.unsubscribe()
	for _, c := range conns {
		c.shutdown()
	}
}

// wireRecord is the renderer-facing projection of a record. Durations
// go out in milliseconds, and remaining time is computed at send time
// so the renderer can seed progress bars without knowing the engine's
// accounting.
type wireRecord[T any] struct {
	ID             string    `json:"id"`
	Variant        string    `json:"variant"`
	Payload        T         `json:"payload"`
	DurationMS     int64     `json:"durationMs"`
	RemainingMS    int64     `json:"remainingMs"`
	Position       string    `json:"position"`
	DismissOnClick bool      `json:"dismissOnClick"`
	Role           string    `json:"role"`
	Paused         bool      `json:"paused"`
	CreatedAt      time.Time `json:"createdAt"`
}

// wireSnapshot is one outbound frame.
type wireSnapshot[T any] struct {
	Type   string          `json:"type"`
	Active []wireRecord[T] `json:"active"`
	Queued []wireRecord[T] `json:"queued"`
}

// command is one inbound renderer frame.
type command struct {
	Op string `json:"op"`
	ID string `json:"id,omitempty"`
}

func toWire[T any](recs []toast.Record[T], now time.Time) []wireRecord[T] {
	out := make([]wireRecord[T], len(recs))
	for i := range recs {
		rec := &recs[i]
		out[i] = wireRecord[T]{
			ID:             rec.ID,
			Variant:        rec.Variant,
			Payload:        rec.Payload,
			DurationMS:     rec.Duration.Milliseconds(),
			RemainingMS:    rec.Remaining(now).Milliseconds(),
			Position:       string(rec.Position),
			DismissOnClick: rec.DismissOnClick,
			Role:           string(rec.Role),
			Paused:         rec.Paused,
			CreatedAt:      rec.CreatedAt,
		}
	}
	return out
}

func (b *Bridge[T]) encodeSnapshot(s toast.Snapshot[T]) ([]byte, error) {
	now := time.Now()
	return json.Marshal(wireSnapshot[T]{
		Type:   "snapshot",
		Active: toWire(s.Active, now),
		Queued: toWire(s.Queued, now),
	})
}

// broadcast fans a snapshot out to every connection. Sends never
// block: when a queue is full the oldest frame is dropped, so a slow
// consumer converges on the latest snapshot.
func (b *Bridge[T]) broadcast(s toast.Snapshot[T]) {
	msg, err := b.encodeSnapshot(s)
	if err != nil {
		b.logger.Error("snapshot encode failed", "error", err)
		return
	}

	b.mu.Lock()
	conns := make([]*wsConn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		select {
		case c.send <- msg:
		default:
			select {
			case <-c.send:
			default:
			}
			select {
			case c.send <- msg:
			default:
			}
		}
	}
}

// handleState serves the current snapshot as JSON.
func (b *Bridge[T]) handleState(w http.ResponseWriter, r *http.Request) {
	msg, err := b.encodeSnapshot(b.engine.State())
	if err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(msg)
}

// handleWS upgrades the connection, pushes the current snapshot and
// then relays: engine notifications out, renderer commands in.
func (b *Bridge[T]) handleWS(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		http.Error(w, "bridge closed", http.StatusServiceUnavailable)
		return
	}
	b.mu.Unlock()

	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &wsConn{
		ws:   ws,
		send: make(chan []byte, b.sendBuffer),
		done: make(chan struct{}),
	}

	// Seed the new connection before it joins the broadcast set so
	// it cannot miss the state it mounted against.
	if msg, err := b.encodeSnapshot(b.engine.State()); err == nil {
		c.send <- msg
	}

	b.mu.Lock()
	b.conns[c] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug("renderer connected", "remote", ws.RemoteAddr().String())

	go b.writeLoop(c)
	b.readLoop(r.Context(), c)

	b.mu.Lock()
	delete(b.conns, c)
	b.mu.Unlock()
	c.shutdown()

	b.logger.Debug("renderer disconnected", "remote", ws.RemoteAddr().String())
}

// writeLoop drains the outbound queue onto the socket.
func (b *Bridge[T]) writeLoop(c *wsConn) {
	for {
		select {
		case msg := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.ws.Close()
				return
			}
		case <-c.done:
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			c.ws.Close()
			return
		}
	}
}

// readLoop decodes renderer commands until the connection drops.
func (b *Bridge[T]) readLoop(ctx context.Context, c *wsConn) {
	c.ws.SetReadLimit(4096)
	for {
		var cmd command
		if err := c.ws.ReadJSON(&cmd); err != nil {
			return
		}
		b.applyCommand(ctx, cmd)
	}
}

// applyCommand re-enters the engine's mutation path for one renderer
// command, wrapped in a span. Unknown ops are logged and dropped; the
// engine's own no-op semantics cover stale ids.
func (b *Bridge[T]) applyCommand(ctx context.Context, cmd command) {
	_, span := b.tracer.Start(ctx, "toastkit.command",
		trace.WithAttributes(
			attribute.String("toast.op", cmd.Op),
			attribute.String("toast.id", cmd.ID),
		))
	defer span.End()

	switch cmd.Op {
	case "dismiss":
		b.engine.Dismiss(cmd.ID)
	case "dismissAll":
		b.engine.DismissAll()
	case "pause":
		b.engine.Pause(cmd.ID)
	case "resume":
		b.engine.Resume(cmd.ID)
	default:
		span.SetStatus(codes.Error, "unknown op")
		b.logger.Warn("unknown renderer command", "op", cmd.Op)
	}
}
