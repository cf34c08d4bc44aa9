// Package clockface maps decimal digits onto a 4x6 grid of two-handed
// analog cells.
//
// Each digit is drawn from seven stroke glyphs (corners, bars and blank).
// A glyph resolves to a RotationPair: the angles of the two hands that
// trace it. Every lookup is total; unknown digits, out-of-range indexes and
// unknown glyphs all resolve to BlankRotation.
package clockface

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Time is a 12-hour wall-clock reading as zero-padded two-digit fields.
type Time struct {
	Hours   string `json:"hours"`
	Minutes string `json:"minutes"`
	Seconds string `json:"seconds"`
}

func (t Time) String() string {
	return t.Hours + ":" + t.Minutes + ":" + t.Seconds
}

// Cell returns the hand angles of cell index of digit.
func Cell(digit string, index int) RotationPair {
	cells, ok := digits[digit]
	if !ok || index < 0 || index >= CellCount {
		return BlankRotation
	}
	return Rotation(cells[index])
}

// Digit returns the rotations of all cells of digit in row-major order.
func Digit(digit string) [CellCount]RotationPair {
	var out [CellCount]RotationPair
	for i := range out {
		out[i] = Cell(digit, i)
	}
	return out
}

// Digits returns one grid per rune of s.
func Digits(s string) [][CellCount]RotationPair {
	out := make([][CellCount]RotationPair, 0, len(s))
	for _, r := range s {
		out = append(out, Digit(string(r)))
	}
	return out
}

// Face returns the six digit grids of t: hours, minutes, then seconds.
func Face(t Time) [][CellCount]RotationPair {
	return Digits(t.Hours + t.Minutes + t.Seconds)
}

// Now samples clock in the local time zone.
func Now(clock clockwork.Clock) Time {
	return FromTime(clock.Now())
}

// Sample reads the system clock.
func Sample() Time {
	return Now(clockwork.NewRealClock())
}

// FromTime formats t, converted to local time, as a 12-hour reading.
// Midnight and noon both read "12".
func FromTime(t time.Time) Time {
	t = t.Local()
	return Time{
		Hours:   t.Format("03"),
		Minutes: t.Format("04"),
		Seconds: t.Format("05"),
	}
}

// Equal reports whether a and b show the same fields.
func Equal(a, b Time) bool {
	return a.Hours == b.Hours && a.Minutes == b.Minutes && a.Seconds == b.Seconds
}
