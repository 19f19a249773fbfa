package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphi011/settle/internal/log"
)

// ErrCancelled matches errors by which a hook cancelled a release.
var ErrCancelled = errors.New("release cancelled by hook")

// Release describes the release an event is delivered for.
type Release struct {
	User        string   `json:"user"`
	InstallPath string   `json:"install_path"`
	Variants    []int    `json:"variants,omitempty"` // nil = all variants
	Message     string   `json:"message,omitempty"`
	Changelog   []string `json:"changelog,omitempty"`

	// Empty if there is no previous release
	PreviousVersion  string `json:"previous_version,omitempty"`
	PreviousRevision string `json:"previous_revision,omitempty"`
}

// Hook receives release events.
//
// PreBuild and PreRelease may return a *CancelError to cancel the release.
type Hook interface {
	Name() string
	PreBuild(ctx context.Context, r Release) error
	PreRelease(ctx context.Context, r Release) error
	PostRelease(ctx context.Context, r Release) error
}

// Base implements Hook with no-op event methods. Embed it and override
// the events a hook cares about.
type Base struct {
	HookName   string
	SourcePath string // directory containing the released source
}

func (b Base) Name() string                               { return b.HookName }
func (b Base) PreBuild(context.Context, Release) error    { return nil }
func (b Base) PreRelease(context.Context, Release) error  { return nil }
func (b Base) PostRelease(context.Context, Release) error { return nil }

// CancelError is returned by a hook to cancel the release.
type CancelError struct {
	Hook   string
	Event  Event
	Reason string
	Err    error
}

func (e *CancelError) Error() string {
	msg := fmt.Sprintf("%s cancelled by hook %q", e.Event.Noun(), e.Hook)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CancelError) Unwrap() error { return e.Err }

func (e *CancelError) Is(target error) bool { return target == ErrCancelled }

// Deliver calls the method of h handling ev.
func Deliver(ctx context.Context, h Hook, ev Event, r Release) error {
	switch ev {
	case PreBuild:
		return h.PreBuild(ctx, r)
	case PreRelease:
		return h.PreRelease(ctx, r)
	case PostRelease:
		return h.PostRelease(ctx, r)
	}
	return fmt.Errorf("unknown release event %d", int(ev))
}

// Dispatch delivers ev to hooks in order.
//
// For pre-build and pre-release the first error stops the dispatch and is
// returned. Post-release errors are logged as warnings and never returned.
func Dispatch(ctx context.Context, hooks []Hook, ev Event, r Release) error {
	l := log.FromContext(ctx)

	for _, h := range hooks {
		l.Debug("running release hook", "hook", h.Name(), "event", ev)

		err := Deliver(ctx, h, ev, r)
		if err == nil {
			continue
		}
		if !ev.Cancellable() {
			l.Warn(fmt.Sprintf("%s hook %q failed: %v", ev, h.Name(), err))
			continue
		}
		return fmt.Errorf("%s hook %q: %w", ev, h.Name(), err)
	}
	return nil
}
