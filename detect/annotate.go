package detect

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/TheCacophonyProject/track-heatmap/metadata"
)

const lineWidth = 2

var boxColor = color.NRGBA{G: 255, A: 255}

// Annotate returns a copy of img with every detection outlined and
// labelled with its class and confidence.
func Annotate(img image.Image, dets []metadata.Detection) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	src := image.NewUniform(boxColor)
	for _, d := range dets {
		r := image.Rect(int(d.Box[0]), int(d.Box[1]), int(d.Box[2]), int(d.Box[3])).Add(b.Min)
		drawRect(out, r, src)

		face := basicfont.Face7x13
		y := r.Min.Y - 4
		if y-face.Ascent < b.Min.Y {
			y = r.Min.Y + face.Ascent + lineWidth
		}
		drawer := &font.Drawer{
			Dst:  out,
			Src:  src,
			Face: face,
			Dot:  fixed.P(r.Min.X, y),
		}
		drawer.DrawString(fmt.Sprintf("%s %.2f", d.Label, d.Confidence))
	}
	return out
}

func drawRect(dst draw.Image, r image.Rectangle, src image.Image) {
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+lineWidth),
		image.Rect(r.Min.X, r.Max.Y-lineWidth, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+lineWidth, r.Max.Y),
		image.Rect(r.Max.X-lineWidth, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
