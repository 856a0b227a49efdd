package toast

import (
	"errors"
	"testing"
	"time"
)

func newTestNotifier(t *testing.T, opts ...NotifierOption) (*Notifier[string], *Engine[string]) {
	t.Helper()
	e, _, _ := newTestEngine(t)
	return NewNotifier(e, opts...), e
}

func TestNotifierDefaults(t *testing.T) {
	n, e := newTestNotifier(t)

	id, err := n.Push("upload-done", "file stored")
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	rec := e.State().All[0]
	if rec.ID != id {
		t.Errorf("id = %q, want %q", rec.ID, id)
	}
	if rec.Variant != "upload-done" {
		t.Errorf("variant = %q", rec.Variant)
	}
	if rec.Payload != "file stored" {
		t.Errorf("payload = %q", rec.Payload)
	}
	if rec.Duration != 5*time.Second {
		t.Errorf("duration = %v, want default 5s", rec.Duration)
	}
	if rec.Position != PositionBottomRight {
		t.Errorf("position = %q, want default bottom-right", rec.Position)
	}
	if rec.Role != RoleStatus {
		t.Errorf("role = %q, want default status", rec.Role)
	}
	if !rec.DismissOnClick {
		t.Error("dismissOnClick = false, want default true")
	}
}

func TestNotifierInstanceDefaults(t *testing.T) {
	n, e := newTestNotifier(t,
		WithDefaultDuration(2*time.Second),
		WithDefaultPosition(PositionTopCenter),
		WithDefaultRole(RoleAlert),
		WithDefaultDismissOnClick(false),
	)

	n.Push("x", "payload")

	rec := e.State().All[0]
	if rec.Duration != 2*time.Second || rec.Position != PositionTopCenter ||
		rec.Role != RoleAlert || rec.DismissOnClick {
		t.Errorf("instance defaults not applied: %+v", rec)
	}
}

func TestNotifierPerCallOverrides(t *testing.T) {
	n, e := newTestNotifier(t)

	id, err := n.Push("x", "payload",
		WithID("fixed"),
		WithDuration(time.Second),
		At(PositionTopLeft),
		AsRole(RoleAlert),
		ClickToDismiss(false),
	)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if id != "fixed" {
		t.Errorf("id = %q, want fixed", id)
	}

	rec := e.State().All[0]
	if rec.Duration != time.Second || rec.Position != PositionTopLeft ||
		rec.Role != RoleAlert || rec.DismissOnClick {
		t.Errorf("per-call overrides not applied: %+v", rec)
	}
}

func TestNotifierSticky(t *testing.T) {
	n, e := newTestNotifier(t)

	n.Push("x", "payload", Sticky())

	if !e.State().All[0].Sticky() {
		t.Error("Sticky() did not zero the duration")
	}
}

func TestNotifierVariantHelpers(t *testing.T) {
	tests := []struct {
		name        string
		push        func(n *Notifier[string]) (string, error)
		wantVariant string
		wantRole    Role
	}{
		{
			name:        "success",
			push:        func(n *Notifier[string]) (string, error) { return n.Success("ok") },
			wantVariant: VariantSuccess,
			wantRole:    RoleStatus,
		},
		{
			name:        "info",
			push:        func(n *Notifier[string]) (string, error) { return n.Info("fyi") },
			wantVariant: VariantInfo,
			wantRole:    RoleStatus,
		},
		{
			name:        "error is assertive",
			push:        func(n *Notifier[string]) (string, error) { return n.Error("boom") },
			wantVariant: VariantError,
			wantRole:    RoleAlert,
		},
		{
			name:        "warning is assertive",
			push:        func(n *Notifier[string]) (string, error) { return n.Warning("careful") },
			wantVariant: VariantWarning,
			wantRole:    RoleAlert,
		},
		{
			name: "error role overridable",
			push: func(n *Notifier[string]) (string, error) {
				return n.Error("quiet", AsRole(RoleStatus))
			},
			wantVariant: VariantError,
			wantRole:    RoleStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, e := newTestNotifier(t)

			if _, err := tt.push(n); err != nil {
				t.Fatalf("push failed: %v", err)
			}

			rec := e.State().All[0]
			if rec.Variant != tt.wantVariant {
				t.Errorf("variant = %q, want %q", rec.Variant, tt.wantVariant)
			}
			if rec.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", rec.Role, tt.wantRole)
			}
		})
	}
}

func TestNotifierPropagatesValidation(t *testing.T) {
	n, _ := newTestNotifier(t)

	_, err := n.Push("x", "payload", WithDuration(-1*time.Second))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
