// track-heatmap - accumulate heatmaps of moving and stationary objects
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package render paints accumulated heatmap points and composes them
// with a video snapshot.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/TheCacophonyProject/track-heatmap/trajectory"
)

// Canvas is the heatmap drawing surface. Every redraw starts from a
// cleared surface; points are never patched into a previous render.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Resize changes the surface size. Like resizing an HTML canvas this
// discards the current contents.
func (c *Canvas) Resize(width, height int) {
	if c.img.Bounds().Dx() == width && c.img.Bounds().Dy() == height {
		c.Clear()
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Clear makes every pixel fully transparent.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// Redraw clears the surface and paints buf in order, so later points
// composite over earlier ones.
func (c *Canvas) Redraw(buf trajectory.Buffer, palette Palette) {
	c.Clear()
	for _, p := range buf {
		c.DrawPoint(p.X, p.Y, p.Radius, palette.Color(p.Class))
	}
}

// DrawPoint paints a radial gradient centred on (x, y) which fades
// linearly from col at the centre to transparent at radius.
func (c *Canvas) DrawPoint(x, y, radius float64, col color.NRGBA) {
	if radius <= 0 || col.A == 0 {
		return
	}
	area := image.Rect(
		int(math.Floor(x-radius)), int(math.Floor(y-radius)),
		int(math.Ceil(x+radius))+1, int(math.Ceil(y+radius))+1,
	).Intersect(c.img.Bounds())

	r := float64(col.R) / 255
	g := float64(col.G) / 255
	b := float64(col.B) / 255
	a := float64(col.A) / 255

	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			d := math.Hypot(float64(px)+0.5-x, float64(py)+0.5-y)
			if d >= radius {
				continue
			}
			sa := a * (1 - d/radius)
			c.blend(px, py, r*sa, g*sa, b*sa, sa)
		}
	}
}

// blend composites a premultiplied source over the pixel at (x, y).
func (c *Canvas) blend(x, y int, sr, sg, sb, sa float64) {
	i := c.img.PixOffset(x, y)
	pix := c.img.Pix[i : i+4 : i+4]
	inv := 1 - sa
	pix[0] = toByte(sr + float64(pix[0])/255*inv)
	pix[1] = toByte(sg + float64(pix[1])/255*inv)
	pix[2] = toByte(sb + float64(pix[2])/255*inv)
	pix[3] = toByte(sa + float64(pix[3])/255*inv)
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Image returns a copy of the surface.
func (c *Canvas) Image() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// MaxSurfaceSize is the largest width or height of a surface sized from
// its points.
const MaxSurfaceSize = 8192

var ErrSurfaceTooLarge = errors.New("points don't fit on the largest surface")

// Extent returns the smallest surface size which holds every point of
// buf including its radius. It fails if either side would be larger
// than MaxSurfaceSize.
func Extent(buf trajectory.Buffer) (int, int, error) {
	var w, h float64
	for _, p := range buf {
		w = math.Max(w, p.X+p.Radius)
		h = math.Max(h, p.Y+p.Radius)
	}
	// Negated so NaN fails too.
	if !(w <= MaxSurfaceSize && h <= MaxSurfaceSize) {
		return 0, 0, fmt.Errorf("%w: need %gx%g, limit is %d", ErrSurfaceTooLarge, w, h, MaxSurfaceSize)
	}
	return int(math.Ceil(w)), int(math.Ceil(h)), nil
}
