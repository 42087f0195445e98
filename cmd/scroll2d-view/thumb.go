package main

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/phanxgames/scroll2d"
)

// thumbnail scales img to width pixels wide, keeping its aspect ratio.
func thumbnail(img image.Image, width int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == 0 || width <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	height := max(b.Dy()*width/b.Dx(), 1)
	return transform.Resize(img, width, height, transform.Linear)
}

// saveWithThumb writes img with SaveSnapshot and, when width is positive,
// a thumbnail next to it with a _thumb suffix. It returns the snapshot path.
func saveWithThumb(dir, label string, img image.Image, width int) (string, error) {
	path, err := scroll2d.SaveSnapshot(dir, label, img)
	if err != nil || width <= 0 {
		return path, err
	}
	thumb := strings.TrimSuffix(path, filepath.Ext(path)) + "_thumb.png"
	return path, scroll2d.WritePNG(thumb, thumbnail(img, width))
}
