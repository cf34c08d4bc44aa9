// Package timer implements the stopwatch and pomodoro timers of the clock
// demos. Timers hold no goroutines; every reading is computed from the
// injected clock. They are not safe for concurrent use.
package timer

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Reading is a timer display split into two-digit fields.
type Reading struct {
	Minutes    string `json:"minutes"`
	Seconds    string `json:"seconds"`
	Hundredths string `json:"hundredths,omitempty"`
}

// Digits concatenates the fields of r.
func (r Reading) Digits() string {
	return r.Minutes + r.Seconds + r.Hundredths
}

// Stopwatch counts elapsed running time.
type Stopwatch struct {
	clock     clockwork.Clock
	running   bool
	startedAt time.Time
	banked    time.Duration // elapsed before the current run
}

// NewStopwatch returns a paused stopwatch at zero.
func NewStopwatch(clock clockwork.Clock) *Stopwatch {
	return &Stopwatch{clock: clock}
}

// Start resumes counting. It is a no-op when already running.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.running = true
	s.startedAt = s.clock.Now()
}

// Pause stops counting and keeps the elapsed time.
func (s *Stopwatch) Pause() {
	if !s.running {
		return
	}
	s.banked += s.clock.Since(s.startedAt)
	s.running = false
}

// Toggle starts a paused stopwatch or pauses a running one.
func (s *Stopwatch) Toggle() {
	if s.running {
		s.Pause()
	} else {
		s.Start()
	}
}

// Reset stops the stopwatch and clears the elapsed time.
func (s *Stopwatch) Reset() {
	s.running = false
	s.banked = 0
}

func (s *Stopwatch) Running() bool { return s.running }

// Elapsed returns the total running time.
func (s *Stopwatch) Elapsed() time.Duration {
	if !s.running {
		return s.banked
	}
	return s.banked + s.clock.Since(s.startedAt)
}

// Reading returns minutes (wrapping at 60), seconds and hundredths.
func (s *Stopwatch) Reading() Reading {
	e := s.Elapsed()
	return Reading{
		Minutes:    twoDigits(int(e/time.Minute) % 60),
		Seconds:    twoDigits(int(e/time.Second) % 60),
		Hundredths: twoDigits(int(e/(10*time.Millisecond)) % 100),
	}
}

func twoDigits(n int) string {
	return fmt.Sprintf("%02d", n)
}
