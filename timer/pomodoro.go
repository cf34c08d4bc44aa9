package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrUnknownMode is returned when a pomodoro mode name is not recognised.
var ErrUnknownMode = errors.New("unknown pomodoro mode")

// Mode is a pomodoro phase.
type Mode string

const (
	Focus      Mode = "focus"
	ShortBreak Mode = "short"
	LongBreak  Mode = "long"
)

var modeDurations = map[Mode]time.Duration{
	Focus:      25 * time.Minute,
	ShortBreak: 5 * time.Minute,
	LongBreak:  15 * time.Minute,
}

// Duration returns the full length of m.
func (m Mode) Duration() (time.Duration, error) {
	d, ok := modeDurations[m]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
	}
	return d, nil
}

// Pomodoro counts down the duration of its current mode.
type Pomodoro struct {
	clock     clockwork.Clock
	mode      Mode
	running   bool
	startedAt time.Time
	left      time.Duration // remaining when the current run started
	done      bool
}

// NewPomodoro returns a paused timer in focus mode.
func NewPomodoro(clock clockwork.Clock) *Pomodoro {
	return &Pomodoro{
		clock: clock,
		mode:  Focus,
		left:  modeDurations[Focus],
	}
}

func (p *Pomodoro) Mode() Mode { return p.mode }
func (p *Pomodoro) Running() bool { return p.running }

// Done reports whether the countdown reached zero since the last reset.
func (p *Pomodoro) Done() bool { return p.done }

// SetMode switches to m, stopped at its full duration.
func (p *Pomodoro) SetMode(m Mode) error {
	d, err := m.Duration()
	if err != nil {
		return err
	}
	p.mode = m
	p.running = false
	p.left = d
	p.done = false
	return nil
}

// Reset stops the timer and restores the current mode's full duration.
func (p *Pomodoro) Reset() {
	p.running = false
	p.left = modeDurations[p.mode]
	p.done = false
}

// Toggle starts or pauses the countdown. An expired timer stays stopped
// until it is reset. A running timer that already reached zero is left
// running so that Expire still reports it.
func (p *Pomodoro) Toggle() {
	if p.running {
		if p.Remaining() == 0 {
			return
		}
		p.left = p.Remaining()
		p.running = false
		return
	}
	if p.left <= 0 {
		return
	}
	p.running = true
	p.startedAt = p.clock.Now()
}

// Remaining returns the time left, never negative.
func (p *Pomodoro) Remaining() time.Duration {
	if !p.running {
		return p.left
	}
	return max(p.left-p.clock.Since(p.startedAt), 0)
}

// Expire stops a running timer whose countdown reached zero. It returns
// true only on that transition.
func (p *Pomodoro) Expire() bool {
	if !p.running || p.Remaining() > 0 {
		return false
	}
	p.running = false
	p.left = 0
	p.done = true
	return true
}

// Progress returns the remaining fraction of the mode duration.
func (p *Pomodoro) Progress() float64 {
	total := modeDurations[p.mode]
	return float64(p.Remaining()) / float64(total)
}

// Reading returns the remaining minutes and seconds, rounded down.
func (p *Pomodoro) Reading() Reading {
	secs := int(p.Remaining() / time.Second)
	return Reading{
		Minutes: twoDigits(secs / 60),
		Seconds: twoDigits(secs % 60),
	}
}
