// Package canvas paints layout commands over the background artwork.
package canvas

import (
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/display"
	"github.com/formicidae-tracker/calenv/internal/layout"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type Compositor struct {
	faces  map[layout.FontVariant]font.Face
	logger *logrus.Entry
}

func NewCompositor(fonts Fonts) *Compositor {
	logger := calenv.NewLogger("canvas")
	return &Compositor{
		faces:  loadFaces(fonts, logger),
		logger: logger,
	}
}

func (c *Compositor) face(v layout.FontVariant) font.Face {
	if f, ok := c.faces[v]; ok == true {
		return f
	}
	return c.faces[layout.Regular]
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func (c *Compositor) rect(dst *image.RGBA, cmd layout.FilledRect) {
	if cmd.Fill != nil {
		fill(dst, cmd.Rect, cmd.Fill)
	}
	if cmd.Outline == nil || cmd.Rect.Empty() {
		return
	}
	r := cmd.Rect
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), cmd.Outline)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), cmd.Outline)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), cmd.Outline)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), cmd.Outline)
}

func (c *Compositor) text(dst *image.RGBA, cmd layout.Text) {
	face := c.face(cmd.Font)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(cmd.Color),
		Face: face,
		// anchors are top-left, the drawer expects the baseline.
		Dot: fixed.P(cmd.At.X, cmd.At.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(cmd.Value)
}

// Render paints cmds in order over a copy of base.
func (c *Compositor) Render(base image.Image, cmds []layout.DrawCommand) *image.RGBA {
	res := image.NewRGBA(base.Bounds())
	draw.Draw(res, res.Bounds(), base, base.Bounds().Min, draw.Src)
	for _, cmd := range cmds {
		switch cmd := cmd.(type) {
		case layout.FilledRect:
			c.rect(res, cmd)
		case layout.Text:
			c.text(res, cmd)
		default:
			c.logger.Errorf("unsupported draw command %T", cmd)
		}
	}
	return res
}

// Blank returns an image of the display size filled with its
// background.
func Blank(config display.DisplayConfig) *image.RGBA {
	res := image.NewRGBA(config.Bounds())
	fill(res, res.Bounds(), config.Background)
	return res
}

// LoadBackground decodes the artwork at path and scales it to the
// display resolution. Artwork that is missing or cannot be decoded
// yields a blank background.
func (c *Compositor) LoadBackground(path string, config display.DisplayConfig) *image.RGBA {
	logger := c.logger.WithField("path", path)
	if len(path) == 0 {
		return Blank(config)
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no background artwork")
		return Blank(config)
	}
	if err != nil {
		logger.WithError(err).Warn("could not open background artwork")
		return Blank(config)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		logger.WithError(err).Warn("could not decode background artwork")
		return Blank(config)
	}

	res := Blank(config)
	draw.CatmullRom.Scale(res, res.Bounds(), src, src.Bounds(), draw.Over, nil)
	logger.WithFields(logrus.Fields{
		"format": format,
		"size":   src.Bounds().Size(),
	}).Debug("background loaded")
	return res
}
