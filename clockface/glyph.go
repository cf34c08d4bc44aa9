package clockface

// Glyph is a stroke symbol drawn by the two hands of a single cell.
type Glyph rune

// The seven glyphs a digit is composed of.
const (
	Blank       Glyph = ' '
	TopLeft     Glyph = '┌'
	TopRight    Glyph = '┐'
	BottomLeft  Glyph = '└'
	BottomRight Glyph = '┘'
	Horizontal  Glyph = '-'
	Vertical    Glyph = '|'
)

// RotationPair holds the angles, in degrees, of a cell's two hands.
// Angles grow clockwise from 3 o'clock, the way CSS rotate does.
type RotationPair [2]int

// BlankRotation is the rest pose used for blank cells and for any input
// that does not resolve to a glyph. Both hands overlap on the diagonal.
var BlankRotation = RotationPair{135, 135}

var rotations = map[Glyph]RotationPair{
	Blank:       BlankRotation,
	BottomRight: {180, 270},
	BottomLeft:  {0, 270},
	TopRight:    {90, 180},
	TopLeft:     {0, 90},
	Horizontal:  {0, 180},
	Vertical:    {90, 270},
}

// Rotation returns the hand angles that trace g. Unknown glyphs get
// BlankRotation.
func Rotation(g Glyph) RotationPair {
	if pair, ok := rotations[g]; ok {
		return pair
	}
	return BlankRotation
}

// AllGlyphs lists every glyph with a rotation entry, blank first.
func AllGlyphs() []Glyph {
	return []Glyph{Blank, TopLeft, TopRight, BottomLeft, BottomRight, Horizontal, Vertical}
}

func (g Glyph) String() string { return string(rune(g)) }
