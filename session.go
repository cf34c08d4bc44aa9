package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bodul/clockofclocks/clockface"
	"github.com/bodul/clockofclocks/timer"
	"github.com/jonboulle/clockwork"
)

// TimerKind selects the timer a session runs.
type TimerKind string

const (
	KindStopwatch TimerKind = "stopwatch"
	KindPomodoro  TimerKind = "pomodoro"
)

var (
	errUnknownKind = errors.New("unknown timer kind")
	errNotPomodoro = errors.New("timer has no modes")
)

// TimerState is the JSON view of a session at one instant.
type TimerState struct {
	ID        string                                        `json:"id"`
	Kind      TimerKind                                     `json:"kind"`
	Running   bool                                          `json:"running"`
	Mode      timer.Mode                                    `json:"mode,omitempty"`
	Done      bool                                          `json:"done"`
	Progress  float64                                       `json:"progress"`
	Millis    int64                                         `json:"millis"` // elapsed or remaining
	Reading   timer.Reading                                 `json:"reading"`
	Cells     [][clockface.CellCount]clockface.RotationPair `json:"cells"`
	CreatedAt time.Time                                     `json:"created_at"`
}

// TimerSession is a server-side stopwatch or pomodoro shared by every page
// that opens it.
type TimerSession struct {
	ID        string
	Kind      TimerKind
	CreatedAt time.Time

	mu        sync.Mutex
	stopwatch *timer.Stopwatch
	pomodoro  *timer.Pomodoro
}

func newTimerSession(id string, kind TimerKind, clock clockwork.Clock) (*TimerSession, error) {
	s := &TimerSession{ID: id, Kind: kind, CreatedAt: clock.Now()}
	switch kind {
	case KindStopwatch:
		s.stopwatch = timer.NewStopwatch(clock)
	case KindPomodoro:
		s.pomodoro = timer.NewPomodoro(clock)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, string(kind))
	}
	return s, nil
}

// Toggle starts or pauses the timer.
func (s *TimerSession) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopwatch != nil {
		s.stopwatch.Toggle()
	} else {
		s.pomodoro.Toggle()
	}
}

// Reset stops the timer and restores its initial reading.
func (s *TimerSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopwatch != nil {
		s.stopwatch.Reset()
	} else {
		s.pomodoro.Reset()
	}
}

// SetMode switches a pomodoro session to m.
func (s *TimerSession) SetMode(m timer.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pomodoro == nil {
		return errNotPomodoro
	}
	return s.pomodoro.SetMode(m)
}

// expire reports whether a pomodoro countdown just reached zero.
func (s *TimerSession) expire() bool {
	if s.pomodoro == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pomodoro.Expire()
}

// State returns a snapshot of the session.
func (s *TimerSession) State() TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := TimerState{ID: s.ID, Kind: s.Kind, CreatedAt: s.CreatedAt}
	if s.stopwatch != nil {
		st.Running = s.stopwatch.Running()
		st.Millis = s.stopwatch.Elapsed().Milliseconds()
		st.Reading = s.stopwatch.Reading()
	} else {
		st.Running = s.pomodoro.Running()
		st.Mode = s.pomodoro.Mode()
		st.Done = s.pomodoro.Done()
		st.Progress = s.pomodoro.Progress()
		st.Millis = s.pomodoro.Remaining().Milliseconds()
		st.Reading = s.pomodoro.Reading()
	}
	st.Cells = clockface.Digits(st.Reading.Digits())
	return st
}
