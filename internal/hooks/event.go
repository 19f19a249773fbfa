package hooks

import (
	"fmt"
	"strings"
)

// Event identifies a point in the release process
type Event int

const (
	PreBuild Event = iota
	PreRelease
	PostRelease
)

var eventInfo = [...]struct {
	label  string // e.g. pre-build
	noun   string // the process the event is part of
	method string // Hook method receiving the event
}{
	PreBuild:    {"pre-build", "build", "PreBuild"},
	PreRelease:  {"pre-release", "release", "PreRelease"},
	PostRelease: {"post-release", "release", "PostRelease"},
}

// Events returns all events in release order.
func Events() []Event {
	return []Event{PreBuild, PreRelease, PostRelease}
}

// Label returns the event label, e.g. "pre-build".
func (e Event) Label() string {
	if !e.valid() {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventInfo[e].label
}

// Noun returns the process the event belongs to: "build" or "release".
func (e Event) Noun() string {
	if !e.valid() {
		return ""
	}
	return eventInfo[e].noun
}

// Method returns the name of the Hook method handling the event.
func (e Event) Method() string {
	if !e.valid() {
		return ""
	}
	return eventInfo[e].method
}

func (e Event) String() string { return e.Label() }

// Cancellable reports whether a hook error stops the release.
func (e Event) Cancellable() bool {
	return e == PreBuild || e == PreRelease
}

func (e Event) valid() bool {
	return e >= 0 && int(e) < len(eventInfo)
}

// ParseEvent parses an event label.
func ParseEvent(label string) (Event, error) {
	for _, e := range Events() {
		if strings.EqualFold(label, e.Label()) {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown release event %q: must be pre-build, pre-release or post-release", label)
}
