package toast

import (
	"errors"
	"fmt"
	"time"
)

// Position is the screen corner or edge a toast is anchored to.
// The engine validates membership but otherwise forwards the value
// opaquely to the renderer.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// valid reports whether p is one of the six fixed positions.
func (p Position) valid() bool {
	switch p {
	case PositionTopLeft, PositionTopCenter, PositionTopRight,
		PositionBottomLeft, PositionBottomCenter, PositionBottomRight:
		return true
	}
	return false
}

// Role is the accessibility role hint forwarded to the renderer.
type Role string

const (
	// RoleStatus is for polite, non-interrupting announcements.
	RoleStatus Role = "status"

	// RoleAlert is for assertive announcements that interrupt the user.
	RoleAlert Role = "alert"
)

// valid reports whether r is one of the two fixed roles.
func (r Role) valid() bool {
	return r == RoleStatus || r == RoleAlert
}

// ErrInvalidInput is returned by Add when the input fails validation.
// It is the only error the engine ever returns; every other
// out-of-contract call is a silent no-op.
var ErrInvalidInput = errors.New("toast: invalid input")

// Input describes a toast to enqueue. The engine holds no notion of
// defaults: callers (typically a Notifier) must supply a fully-resolved
// input on every Add call.
type Input[T any] struct {
	// ID is the caller-supplied identifier. Empty means the engine
	// generates one. A non-empty ID is the dedupe key.
	ID string

	// Variant is an opaque tag the renderer uses to pick a view
	// component. The engine does not validate it against any known set.
	Variant string

	// Payload is caller data forwarded verbatim to the renderer.
	// The engine never inspects it.
	Payload T

	// Duration is how long the toast stays visible once active.
	// Zero means sticky: the toast never auto-dismisses.
	Duration time.Duration

	// Position anchors the toast on screen.
	Position Position

	// DismissOnClick hints that the renderer should dismiss on click.
	DismissOnClick bool

	// Role is the accessibility role hint.
	Role Role
}

// validate checks the input against the engine's contract.
// It fails on the first violation; no partial mutation ever occurs
// on a failed Add.
func (in *Input[T]) validate() error {
	if in.Duration < 0 {
		return fmt.Errorf("%w: duration must be >= 0, got %v", ErrInvalidInput, in.Duration)
	}
	if !in.Position.valid() {
		return fmt.Errorf("%w: unknown position %q", ErrInvalidInput, in.Position)
	}
	if !in.Role.valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	return nil
}

// Record is one notification instance owned by the engine.
// Snapshots hand out value copies; external code never holds a
// reference into engine storage.
type Record[T any] struct {
	// ID is unique within the engine instance.
	ID string `json:"id"`

	// Variant is the renderer's view-selection tag.
	Variant string `json:"variant"`

	// Payload is the caller data, forwarded verbatim.
	Payload T `json:"payload"`

	// Duration is the visible lifetime; zero means sticky.
	Duration time.Duration `json:"duration"`

	// Position is the presentation anchor hint.
	Position Position `json:"position"`

	// DismissOnClick is the click-to-dismiss hint.
	DismissOnClick bool `json:"dismissOnClick"`

	// Role is the accessibility role hint.
	Role Role `json:"role"`

	// CreatedAt is the engine-clock timestamp at creation.
	CreatedAt time.Time `json:"createdAt"`

	// Paused reports whether the countdown is frozen.
	Paused bool `json:"paused"`

	// PausedAt is when the current pause began; zero unless Paused.
	PausedAt time.Time `json:"pausedAt"`

	// TotalPaused is the cumulative time spent paused over the
	// record's lifetime.
	TotalPaused time.Duration `json:"totalPaused"`
}

// Remaining returns the time left before auto-dismissal as of now.
// It is always recomputed from CreatedAt, Duration, TotalPaused and
// (while paused) PausedAt, so there is exactly one source of truth
// for timing. Sticky records report their full (zero) duration.
func (r *Record[T]) Remaining(now time.Time) time.Duration {
	if r.Duration == 0 {
		return 0
	}
	ref := now
	if r.Paused {
		ref = r.PausedAt
	}
	elapsed := ref.Sub(r.CreatedAt) - r.TotalPaused
	if rem := r.Duration - elapsed; rem > 0 {
		return rem
	}
	return 0
}

// Sticky reports whether the record never auto-dismisses.
func (r *Record[T]) Sticky() bool {
	return r.Duration == 0
}

// Snapshot is the derived, read-only view handed to subscribers.
// All is every record in insertion order, Active the first MaxVisible
// of All, Queued the remainder.
type Snapshot[T any] struct {
	All    []Record[T] `json:"all"`
	Active []Record[T] `json:"active"`
	Queued []Record[T] `json:"queued"`
}
