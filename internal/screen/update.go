package screen

import (
	"time"

	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/weather"
)

// event is anything the loop can apply to the state.
type event interface {
	isEvent()
}

type (
	startEvent          struct{}
	refreshEvent        struct{}
	dismissNoticeEvent  struct{}
	selectLocationEvent struct{ key string }
	setUnitEvent        struct{ unit weather.Unit }
	setThemeEvent       struct{ theme Theme }
	setColorblindEvent  struct{ enabled bool }
	tickEvent           struct{ now time.Time }

	// rejectLocationEvent reports a selection key outside the list. It never
	// changes the state.
	rejectLocationEvent struct {
		key string
		err error
	}

	// loadResultEvent completes the load issued with tag.
	loadResultEvent struct {
		tag      uint64
		location location.Location
		snapshot weather.Snapshot
		err      error
	}
)

func (startEvent) isEvent()          {}
func (refreshEvent) isEvent()        {}
func (dismissNoticeEvent) isEvent()  {}
func (selectLocationEvent) isEvent() {}
func (setUnitEvent) isEvent()        {}
func (setThemeEvent) isEvent()       {}
func (setColorblindEvent) isEvent()  {}
func (tickEvent) isEvent()           {}
func (rejectLocationEvent) isEvent() {}
func (loadResultEvent) isEvent()     {}

// loadRequest asks the loop to resolve key and fetch its weather under tag.
type loadRequest struct {
	tag uint64
	key string
}

// outcome is what update produced besides the next state.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeApplied
	outcomeDiscarded
	outcomeFailed
)

// transition is the result of applying one event.
type transition struct {
	state   State
	load    *loadRequest
	outcome outcome
	kind    ErrorKind
}

// update applies ev to s. It is pure: all I/O is described by the returned
// load request and performed by the caller.
func update(s State, ev event) transition {
	switch ev := ev.(type) {
	case startEvent:
		if s.Lifecycle.Phase != PhaseIdle {
			return transition{state: s}
		}
		return issueLoad(s, PhaseInitialLoading)

	case refreshEvent:
		return issueLoad(s, PhaseRefreshing)

	case selectLocationEvent:
		next := s
		next.Settings.LocationKey = ev.key
		return issueLoad(next, PhaseBackgroundUpdating)

	case setUnitEvent:
		// Display only; the snapshot stays in Celsius.
		next := s
		next.Settings.Unit = ev.unit
		return changed(s, next)

	case setThemeEvent:
		next := s
		next.Settings.Theme = ev.theme
		return changed(s, next)

	case setColorblindEvent:
		next := s
		next.Settings.Colorblind = ev.enabled
		return changed(s, next)

	case tickEvent:
		next := s
		next.Now = ev.now
		return changed(s, next)

	case dismissNoticeEvent:
		next := s
		next.Notice = ""
		next.TransientError = ErrorNone
		return changed(s, next)

	case loadResultEvent:
		return complete(s, ev)
	}

	return transition{state: s}
}

// issueLoad tags a new load. Without a snapshot there is nothing to keep
// showing, so the phase is InitialLoading whatever the trigger was.
func issueLoad(s State, phase Phase) transition {
	if s.Snapshot == nil {
		phase = PhaseInitialLoading
	}

	next := s
	next.seq++
	next.Lifecycle = Lifecycle{Phase: phase}

	t := changed(s, next)
	t.load = &loadRequest{tag: next.seq, key: next.Settings.LocationKey}
	return t
}

// complete applies a load result. Only the newest tag is accepted.
func complete(s State, ev loadResultEvent) transition {
	if ev.tag != s.seq {
		return transition{state: s, outcome: outcomeDiscarded}
	}

	next := s
	if ev.err == nil {
		snapshot := ev.snapshot
		loc := ev.location
		next.Snapshot = &snapshot
		next.Location = &loc
		next.Lifecycle = Lifecycle{Phase: PhaseReady}
		next.TransientError = ErrorNone

		t := changed(s, next)
		t.outcome = outcomeApplied
		return t
	}

	kind := Classify(ev.err)
	if kind == ErrorPermissionDenied {
		next.Notice = PermissionNotice
	}

	if s.Snapshot != nil {
		next.Lifecycle = Lifecycle{Phase: PhaseReady}
		next.TransientError = kind
	} else {
		next.Lifecycle = Lifecycle{Phase: PhaseFailed, Err: kind}
	}

	t := changed(s, next)
	t.outcome = outcomeFailed
	t.kind = kind
	return t
}

func changed(prev, next State) transition {
	next.Revision = prev.Revision + 1
	return transition{state: next}
}
