package scroll2d

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
)

var (
	boldOnce   sync.Once
	boldSource *text.GoTextFaceSource
)

// defaultFontSource returns the bold Go font used for labels, poppers and
// DrawText when no face is configured.
func defaultFontSource() *text.GoTextFaceSource {
	boldOnce.Do(func() {
		src, err := LoadFont(gobold.TTF)
		if err != nil {
			panic(err)
		}
		boldSource = src
	})
	return boldSource
}

// LoadFont parses TrueType or OpenType data into a face source usable as
// Options.Font or SpriteOptions.LabelFace.
func LoadFont(ttf []byte) (*text.GoTextFaceSource, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("scroll2d: load font: %w", err)
	}
	return src, nil
}

// MeasureText returns the size of s at the given font size in pixels.
func MeasureText(src *text.GoTextFaceSource, s string, size float64) (w, h float64) {
	if src == nil {
		src = defaultFontSource()
	}
	face := &text.GoTextFace{Source: src, Size: size}
	return text.Measure(s, face, face.Metrics().HAscent+face.Metrics().HDescent)
}
