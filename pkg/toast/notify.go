package toast

import "time"

// Built-in variant tags used by the Notifier helpers. Variants are
// opaque to the engine; renderers map them to view components.
const (
	VariantSuccess = "success"
	VariantError   = "error"
	VariantWarning = "warning"
	VariantInfo    = "info"
)

// Notifier is the typed trigger layer in front of an engine. It
// merges per-call options over instance-level defaults and hands the
// engine a fully-resolved input; the engine itself holds no notion of
// defaults.
type Notifier[T any] struct {
	engine   *Engine[T]
	defaults Input[T]
}

// NotifierOption sets an instance-level default on a Notifier.
type NotifierOption func(*notifierDefaults)

type notifierDefaults struct {
	duration       time.Duration
	position       Position
	role           Role
	dismissOnClick bool
}

// WithDefaultDuration sets the default visible lifetime.
// Default: 5 seconds.
func WithDefaultDuration(d time.Duration) NotifierOption {
	return func(nd *notifierDefaults) {
		nd.duration = d
	}
}

// WithDefaultPosition sets the default anchor position.
// Default: PositionBottomRight.
func WithDefaultPosition(p Position) NotifierOption {
	return func(nd *notifierDefaults) {
		nd.position = p
	}
}

// WithDefaultRole sets the default accessibility role.
// Default: RoleStatus.
func WithDefaultRole(r Role) NotifierOption {
	return func(nd *notifierDefaults) {
		nd.role = r
	}
}

// WithDefaultDismissOnClick sets the default click-to-dismiss hint.
// Default: true.
func WithDefaultDismissOnClick(b bool) NotifierOption {
	return func(nd *notifierDefaults) {
		nd.dismissOnClick = b
	}
}

// NewNotifier creates a trigger layer over engine.
func NewNotifier[T any](engine *Engine[T], opts ...NotifierOption) *Notifier[T] {
	nd := notifierDefaults{
		duration:       5 * time.Second,
		position:       PositionBottomRight,
		role:           RoleStatus,
		dismissOnClick: true,
	}
	for _, opt := range opts {
		opt(&nd)
	}

	return &Notifier[T]{
		engine: engine,
		defaults: Input[T]{
			Duration:       nd.duration,
			Position:       nd.position,
			Role:           nd.role,
			DismissOnClick: nd.dismissOnClick,
		},
	}
}

// Engine returns the underlying engine.
func (n *Notifier[T]) Engine() *Engine[T] {
	return n.engine
}

// PushOption overrides one field of a single Push call.
type PushOption func(*pushOverrides)

type pushOverrides struct {
	id             string
	duration       *time.Duration
	position       *Position
	role           *Role
	dismissOnClick *bool
}

// WithID sets the record id, making it the dedupe key for this toast.
func WithID(id string) PushOption {
	return func(po *pushOverrides) {
		po.id = id
	}
}

// WithDuration overrides the visible lifetime for this call.
func WithDuration(d time.Duration) PushOption {
	return func(po *pushOverrides) {
		po.duration = &d
	}
}

// Sticky makes the toast never auto-dismiss.
func Sticky() PushOption {
	return WithDuration(0)
}

// At overrides the anchor position for this call.
func At(p Position) PushOption {
	return func(po *pushOverrides) {
		po.position = &p
	}
}

// AsRole overrides the accessibility role for this call.
func AsRole(r Role) PushOption {
	return func(po *pushOverrides) {
		po.role = &r
	}
}

// ClickToDismiss overrides the click-to-dismiss hint for this call.
func ClickToDismiss(b bool) PushOption {
	return func(po *pushOverrides) {
		po.dismissOnClick = &b
	}
}

// Push enqueues a toast with the given variant and payload, applying
// per-call options over the notifier's defaults. Returns the record
// id for later Dismiss/Pause/Resume calls.
func (n *Notifier[T]) Push(variant string, payload T, opts ...PushOption) (string, error) {
	var po pushOverrides
	for _, opt := range opts {
		opt(&po)
	}

	in := n.defaults
	in.ID = po.id
	in.Variant = variant
	in.Payload = payload
	if po.duration != nil {
		in.Duration = *po.duration
	}
	if po.position != nil {
		in.Position = *po.position
	}
	if po.role != nil {
		in.Role = *po.role
	}
	if po.dismissOnClick != nil {
		in.DismissOnClick = *po.dismissOnClick
	}

	return n.engine.Add(in)
}

// Success pushes a success toast.
//
//	notifier.Success(payload)
func (n *Notifier[T]) Success(payload T, opts ...PushOption) (string, error) {
	return n.Push(VariantSuccess, payload, opts...)
}

// Error pushes an error toast. Errors announce assertively unless the
// caller overrides the role.
func (n *Notifier[T]) Error(payload T, opts ...PushOption) (string, error) {
	return n.Push(VariantError, payload, append([]PushOption{AsRole(RoleAlert)}, opts...)...)
}

// Warning pushes a warning toast. Assertive by default, like Error.
func (n *Notifier[T]) Warning(payload T, opts ...PushOption) (string, error) {
	return n.Push(VariantWarning, payload, append([]PushOption{AsRole(RoleAlert)}, opts...)...)
}

// Info pushes an info toast.
func (n *Notifier[T]) Info(payload T, opts ...PushOption) (string, error) {
	return n.Push(VariantInfo, payload, opts...)
}
