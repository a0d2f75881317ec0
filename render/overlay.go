package render

import (
	"image"

	"github.com/disintegration/imaging"
)

// Overlay draws heat over a snapshot of the video. The snapshot is
// scaled to the heat surface when their sizes differ.
func Overlay(snapshot, heat image.Image, opacity float64) *image.NRGBA {
	size := heat.Bounds().Size()
	var base *image.NRGBA
	if snapshot.Bounds().Size() != size {
		base = imaging.Resize(snapshot, size.X, size.Y, imaging.Lanczos)
	} else {
		base = imaging.Clone(snapshot)
	}
	return imaging.Overlay(base, heat, image.Pt(0, 0), opacity)
}
