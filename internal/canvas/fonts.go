package canvas

import (
	"fmt"
	"os"

	"github.com/formicidae-tracker/calenv/internal/layout"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

const (
	DefaultRegularFont = "/usr/share/fonts/truetype/mplus/mplus-2c-regular.ttf"
	DefaultBoldFont    = "/usr/share/fonts/truetype/mplus/mplus-2c-bold.ttf"
)

// Fonts are the paths of the TrueType or OpenType files of the two
// variants.
type Fonts struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

func DefaultFonts() Fonts {
	return Fonts{Regular: DefaultRegularFont, Bold: DefaultBoldFont}
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse '%s': %w", path, err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// loadFaces returns the faces of the two variants. A face that cannot
// be loaded is replaced by a fixed bitmap face, which lacks CJK
// glyphs.
func loadFaces(fonts Fonts, logger *logrus.Entry) map[layout.FontVariant]font.Face {
	res := make(map[layout.FontVariant]font.Face, 2)
	for _, v := range []struct {
		Variant layout.FontVariant
		Path    string
		Size    float64
	}{
		{layout.Regular, fonts.Regular, layout.FontSize},
		{layout.Bold, fonts.Bold, layout.BoldFontSize},
	} {
		face, err := loadFace(v.Path, v.Size)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"font":  v.Variant,
				"path":  v.Path,
				"error": err,
			}).Warn("using fallback font")
			face = basicfont.Face7x13
		}
		res[v.Variant] = face
	}
	return res
}
