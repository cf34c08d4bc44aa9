// Package render rasterises clock faces to PNG.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/bodul/clockofclocks/clockface"
	"github.com/gogpu/gg"
)

// ErrInvalidOptions is returned for unusable layout or colour options.
var ErrInvalidOptions = errors.New("invalid render options")

// Options controls the layout and palette of a rendered face. Sizes are in
// pixels, colours are hex strings ("#rgb", "#rrggbb", "#rrggbbaa").
type Options struct {
	CellSize   float64
	CellGap    float64
	DigitGap   float64 // between the two digits of a field
	FieldGap   float64 // between fields
	Padding    float64
	HandWidth  float64
	Background string
	Face       string
	Hand       string
}

// DefaultOptions matches the indigo palette of the clock page.
func DefaultOptions() Options {
	return Options{
		CellSize:   48,
		CellGap:    2,
		DigitGap:   2,
		FieldGap:   32,
		Padding:    24,
		HandWidth:  2,
		Background: "#0c0a1d",
		Face:       "#1e1b4b",
		Hand:       "#818cf8",
	}
}

func (o Options) validate() error {
	if o.CellSize <= 0 {
		return fmt.Errorf("%w: cell size %v", ErrInvalidOptions, o.CellSize)
	}
	if o.CellGap < 0 || o.DigitGap < 0 || o.FieldGap < 0 || o.Padding < 0 || o.HandWidth <= 0 {
		return fmt.Errorf("%w: negative spacing or hand width", ErrInvalidOptions)
	}
	for _, c := range []string{o.Background, o.Face, o.Hand} {
		if !validHex(c) {
			return fmt.Errorf("%w: colour %q", ErrInvalidOptions, c)
		}
	}
	return nil
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func (o Options) digitSize() (w, h float64) {
	w = clockface.Columns*o.CellSize + (clockface.Columns-1)*o.CellGap
	h = clockface.Rows*o.CellSize + (clockface.Rows-1)*o.CellGap
	return w, h
}

// gapBefore returns the spacing left of digit i. Digits pair up into fields.
func (o Options) gapBefore(i int) float64 {
	switch {
	case i == 0:
		return 0
	case i%2 == 0:
		return o.FieldGap
	default:
		return o.DigitGap
	}
}

// Size returns the image dimensions for n digits.
func Size(n int, opts Options) (w, h int) {
	dw, dh := opts.digitSize()
	width := 2 * opts.Padding
	for i := range n {
		width += opts.gapBefore(i) + dw
	}
	return int(math.Ceil(width)), int(math.Ceil(dh + 2*opts.Padding))
}

// Face writes a PNG of the six digits of t.
func Face(w io.Writer, t clockface.Time, opts Options) error {
	return Digits(w, t.Hours+t.Minutes+t.Seconds, opts)
}

// Digits writes a PNG of s, one digit grid per rune.
func Digits(w io.Writer, s string, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	grids := clockface.Digits(s)
	if len(grids) == 0 {
		return fmt.Errorf("%w: nothing to draw", ErrInvalidOptions)
	}

	width, height := Size(len(grids), opts)
	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(opts.Background))
	dc.SetLineCap(gg.LineCapRound)

	dw, _ := opts.digitSize()
	x := opts.Padding
	for i, grid := range grids {
		x += opts.gapBefore(i)
		if err := drawDigit(dc, grid, x, opts.Padding, opts); err != nil {
			return fmt.Errorf("draw digit %d: %w", i, err)
		}
		x += dw
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawDigit(dc *gg.Context, grid [clockface.CellCount]clockface.RotationPair, x0, y0 float64, opts Options) error {
	step := opts.CellSize + opts.CellGap
	r := opts.CellSize / 2
	for i, pair := range grid {
		col, row := i%clockface.Columns, i/clockface.Columns
		cx := x0 + float64(col)*step + r
		cy := y0 + float64(row)*step + r

		dc.SetHexColor(opts.Face)
		dc.SetLineWidth(1)
		dc.DrawCircle(cx, cy, r-0.5)
		if err := dc.Stroke(); err != nil {
			return err
		}

		dc.SetHexColor(opts.Hand)
		dc.SetLineWidth(opts.HandWidth)
		for _, deg := range pair {
			hx, hy := handEnd(cx, cy, r-1, deg)
			dc.DrawLine(cx, cy, hx, hy)
		}
		if err := dc.Stroke(); err != nil {
			return err
		}

		dc.DrawCircle(cx, cy, opts.HandWidth/2)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// handEnd returns the tip of a hand of the given length. Angles grow
// clockwise since the y axis points down.
func handEnd(cx, cy, length float64, deg int) (x, y float64) {
	rad := float64(deg) * math.Pi / 180
	return cx + length*math.Cos(rad), cy + length*math.Sin(rad)
}
