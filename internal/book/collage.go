package book

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Cover geometry: a portrait canvas filled by a grid of recipe photos.
const (
	coverWidth   = 1200
	coverHeight  = 1600
	coverMaxTile = 6
	coverQuality = 85
)

// ErrNoCoverImages means no usable image was provided for the collage.
var ErrNoCoverImages = errors.New("no cover images")

// BuildCover lays the images out on a white 1200x1600 canvas and encodes the
// result as JPEG. At most six images are used: one column for up to two
// images, two columns beyond that. Each image keeps its aspect ratio and is
// centered in its grid cell.
func BuildCover(images []image.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoCoverImages
	}
	if len(images) > coverMaxTile {
		images = images[:coverMaxTile]
	}

	n := len(images)
	cols := 2
	if n <= 2 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	tileW := coverWidth / cols
	tileH := coverHeight / rows

	canvas := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for idx, img := range images {
		bounds := img.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		if w == 0 || h == 0 {
			continue
		}

		// Landscape images fill the cell width, portrait ones the height.
		var newW, newH int
		if w > h {
			newW = tileW
			newH = tileW * h / w
		} else {
			newH = tileH
			newW = tileH * w / h
		}
		if newW == 0 || newH == 0 {
			continue
		}

		row := idx / cols
		col := idx % cols
		x := col*tileW + (tileW-newW)/2
		y := row*tileH + (tileH-newH)/2

		dst := image.Rect(x, y, x+newW, y+newH)
		draw.CatmullRom.Scale(canvas, dst, img, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: coverQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
