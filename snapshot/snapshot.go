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

// Package snapshot captures a still image of a video frame.
package snapshot

import (
	"image"
	"image/color"
	"math"

	"github.com/TheCacophonyProject/track-heatmap/video"
)

type Config struct {
	// Frame to capture. Negative values count back from the last frame.
	Frame int  `yaml:"frame"`
	Raw   bool `yaml:"raw"`
}

func DefaultConfig() Config {
	return Config{
		Frame: video.LastFrame,
		Raw:   false,
	}
}

// Take reads one frame from src. Thermal frames are stretched to the
// full 16 bit range unless conf.Raw is set.
func Take(src video.Source, conf Config) (image.Image, error) {
	img, err := src.Frame(conf.Frame)
	if err != nil {
		return nil, err
	}
	if g16, ok := img.(*image.Gray16); ok && !conf.Raw {
		return Normalize(g16), nil
	}
	return img, nil
}

// Normalize maps the coldest pixel of a thermal frame to black and the
// warmest to white. A frame with a single value is returned unchanged.
func Normalize(src *image.Gray16) *image.Gray16 {
	b := src.Bounds()
	out := image.NewGray16(b)

	// Max and min are needed for normalization of the frame
	var valMax uint16
	var valMin uint16 = math.MaxUint16
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			val := src.Gray16At(x, y).Y
			valMax = maxUint16(valMax, val)
			valMin = minUint16(valMin, val)
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			val := src.Gray16At(x, y).Y
			if valMax > valMin {
				val = uint16(uint32(val-valMin) * math.MaxUint16 / uint32(valMax-valMin))
			}
			out.SetGray16(x, y, color.Gray16{Y: val})
		}
	}
	return out
}

func maxUint16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

func minUint16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}
