package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/bodul/clockofclocks/clockface"
	"github.com/jonboulle/clockwork"
)

const defaultPollInterval = 100 * time.Millisecond

// clockFrame is the payload of a "clock" event.
type clockFrame struct {
	Type  string                                        `json:"type"`
	Time  clockface.Time                                `json:"time"`
	Cells [][clockface.CellCount]clockface.RotationPair `json:"cells"`
}

func newClockFrame(t clockface.Time) clockFrame {
	return clockFrame{Type: "clock", Time: t, Cells: clockface.Face(t)}
}

// Poller samples the wall clock more often than it changes and broadcasts
// a frame only when the displayed fields differ. Each tick also reports
// pomodoro sessions that ran out.
type Poller struct {
	clock    clockwork.Clock
	interval time.Duration
	sse      *Broadcaster
	store    *Store

	last    clockface.Time
	started bool
}

// NewPoller creates a poller ticking every interval.
func NewPoller(clock clockwork.Clock, interval time.Duration, sse *Broadcaster, store *Store) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{clock: clock, interval: interval, sse: sse, store: store}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.tick()
		}
	}
}

// tick reports whether a clock frame was broadcast.
func (p *Poller) tick() bool {
	for _, ts := range p.store.ExpireTimers() {
		slog.Info("pomodoro terminé", "timer", ts.ID)
		p.sse.BroadcastJSON(ts.ID, map[string]any{
			"type":  "time_up",
			"state": ts.State(),
		})
	}

	now := clockface.Now(p.clock)
	if p.started && clockface.Equal(now, p.last) {
		return false
	}
	p.last, p.started = now, true
	p.sse.BroadcastJSON(clockTopic, newClockFrame(now))
	return true
}
