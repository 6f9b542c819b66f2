package display

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/sirupsen/logrus"
)

// PNGFile writes the dashboard to a file instead of a panel. The
// image is reduced to the panel palette so the preview matches what
// the panel would show.
type PNGFile struct {
	path   string
	config DisplayConfig
	logger *logrus.Entry
}

func NewPNGFile(path string, config DisplayConfig) *PNGFile {
	return &PNGFile{
		path:   path,
		config: config,
		logger: calenv.NewLogger("display/png").WithField("path", path),
	}
}

func (s *PNGFile) Config() DisplayConfig {
	return s.config
}

func (s *PNGFile) quantize(img image.Image) *image.Paletted {
	res := image.NewPaletted(s.config.Bounds(), s.config.Palette())
	draw.Draw(res, res.Bounds(), img, img.Bounds().Min, draw.Src)
	return res
}

func (s *PNGFile) Show(img image.Image) (err error) {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("could not create preview: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close preview: %w", cerr)
		}
	}()
	if err := png.Encode(f, s.quantize(img)); err != nil {
		return fmt.Errorf("could not encode preview: %w", err)
	}
	s.logger.Info("dashboard written")
	return nil
}

func (s *PNGFile) Close() error {
	return nil
}
