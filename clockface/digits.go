package clockface

import "fmt"

// Grid dimensions of a single digit.
const (
	Columns   = 4
	Rows      = 6
	CellCount = Columns * Rows
)

// digits maps each decimal digit to its 24 glyphs, row by row.
var digits = buildDigits(map[string][Rows]string{
	"0": {"┌--┐", "|┌┐|", "||||", "||||", "|└┘|", "└--┘"},
	"1": {"┌-┐ ", "└┐| ", " || ", " || ", "┌┘└┐", "└--┘"},
	"2": {"┌--┐", "└-┐|", "┌-┘|", "|┌-┘", "|└-┐", "└--┘"},
	"3": {"┌--┐", "└-┐|", " ┌┘|", " └┐|", "┌-┘|", "└--┘"},
	"4": {"┌┐┌┐", "||||", "|└┘|", "└-┐|", "  ||", "  └┘"},
	"5": {"┌--┐", "|┌-┘", "|└-┐", "└-┐|", "┌-┘|", "└--┘"},
	"6": {"┌--┐", "|┌-┘", "|└-┐", "|┌┐|", "|└┘|", "└--┘"},
	"7": {"┌--┐", "└-┐|", "  ||", "  ||", "  ||", "  └┘"},
	"8": {"┌--┐", "|┌┐|", "|└┘|", "|┌┐|", "|└┘|", "└--┘"},
	"9": {"┌--┐", "|┌┐|", "|└┘|", "└-┐|", "┌-┘|", "└--┘"},
})

// buildDigits flattens the row layouts. It panics on a malformed row since
// the table is fixed at compile time.
func buildDigits(layouts map[string][Rows]string) map[string][CellCount]Glyph {
	out := make(map[string][CellCount]Glyph, len(layouts))
	for digit, rows := range layouts {
		var cells [CellCount]Glyph
		for r, row := range rows {
			runes := []rune(row)
			if len(runes) != Columns {
				panic(fmt.Sprintf("clockface: digit %q row %d has %d cells", digit, r, len(runes)))
			}
			for c, ch := range runes {
				g := Glyph(ch)
				if _, ok := rotations[g]; !ok {
					panic(fmt.Sprintf("clockface: digit %q uses unknown glyph %q", digit, ch))
				}
				cells[r*Columns+c] = g
			}
		}
		out[digit] = cells
	}
	return out
}

// Glyphs returns a copy of the layout of digit. The boolean is false when
// digit is not one of "0".."9".
func Glyphs(digit string) ([CellCount]Glyph, bool) {
	cells, ok := digits[digit]
	return cells, ok
}
