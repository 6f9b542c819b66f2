package layout

import (
	"fmt"
	"image"
	"image/color"
)

type FontVariant int

const (
	Regular FontVariant = iota
	Bold
)

func (f FontVariant) String() string {
	switch f {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	default:
		return fmt.Sprintf("<unknown font variant %d>", int(f))
	}
}

// DrawCommand is one drawing operation of the panel. It is either a
// FilledRect or a Text.
type DrawCommand interface {
	isDrawCommand()
}

// FilledRect paints Rect with Fill. A non-nil Outline is drawn over
// its one pixel border.
type FilledRect struct {
	Rect    image.Rectangle
	Fill    color.Color
	Outline color.Color
}

// Text is a single line, At is its top-left corner.
type Text struct {
	At    image.Point
	Value string
	Font  FontVariant
	Color color.Color
}

func (FilledRect) isDrawCommand() {}

func (Text) isDrawCommand() {}
