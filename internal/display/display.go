// Package display describes the e-paper panel and the sinks that show
// a rendered dashboard.
package display

import (
	"fmt"
	"image"
	"image/color"
)

// Colour is the variant of a three colour e-paper panel.
type Colour string

const (
	Auto   Colour = "auto"
	Red    Colour = "red"
	Black  Colour = "black"
	Yellow Colour = "yellow"
)

func ParseColour(s string) (Colour, error) {
	switch c := Colour(s); c {
	case Auto, Red, Black, Yellow:
		return c, nil
	default:
		return "", fmt.Errorf("invalid colour '%s' (expected auto, red, black or yellow)", s)
	}
}

func (c *Colour) UnmarshalFlag(value string) error {
	res, err := ParseColour(value)
	if err != nil {
		return err
	}
	*c = res
	return nil
}

var (
	White     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Ink       = color.RGBA{0x00, 0x00, 0x00, 0xff}
	RedInk    = color.RGBA{0xff, 0x00, 0x00, 0xff}
	YellowInk = color.RGBA{0xff, 0xff, 0x00, 0xff}
)

// Default resolution, the one of an Inky pHAT.
const (
	DefaultWidth  = 212
	DefaultHeight = 104
)

// DisplayConfig is the geometry and the palette of a panel.
type DisplayConfig struct {
	Width      int
	Height     int
	Colour     Colour
	Background color.Color
	Foreground color.Color
	// Alert fills the ventilation indicators. It is the accent colour
	// of the panel, or the foreground on a black and white panel.
	Alert  color.Color
	Border color.Color
}

// NewDisplayConfig returns the configuration of a width x height panel
// of the given colour. Auto is resolved as Black.
func NewDisplayConfig(colour Colour, width, height int) DisplayConfig {
	res := DisplayConfig{
		Width:      width,
		Height:     height,
		Colour:     colour,
		Background: White,
		Foreground: Ink,
		Alert:      Ink,
		Border:     White,
	}
	switch colour {
	case Red:
		res.Alert = RedInk
	case Yellow:
		res.Alert = YellowInk
	default:
		res.Colour = Black
	}
	return res
}

func (c DisplayConfig) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Palette is the set of colours the panel can show.
func (c DisplayConfig) Palette() color.Palette {
	if c.Colour == Black {
		return color.Palette{c.Background, c.Foreground}
	}
	return color.Palette{c.Background, c.Foreground, c.Alert}
}

//go:generate mockgen -source display.go -destination mock_sink.go -package display

// Sink receives the rendered dashboard.
type Sink interface {
	Config() DisplayConfig
	Show(img image.Image) error
	Close() error
}
