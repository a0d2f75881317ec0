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

// Package video reads single frames from recorded video.
package video

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupported = errors.New("unsupported video format")
	ErrNoFrames    = errors.New("video has no frames")
)

// LastFrame can be passed to Source.Frame to read the final frame.
const LastFrame = -1

// Source is an open video. Width and Height are the native frame size.
type Source interface {
	Width() int
	Height() int
	FPS() float64
	FrameCount() int
	// Frame returns the frame at pos, counting from 0. Negative
	// positions count back from the end.
	Frame(pos int) (image.Image, error)
	Close() error
}

// Open opens a video file. CPTV thermal recordings are read natively;
// other containers go through OpenCV.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".cptv") {
		return openCPTV(path)
	}
	return openCapture(path)
}

// resolve turns pos into an absolute frame number.
func resolve(pos, count int) (int, error) {
	if count <= 0 {
		return 0, ErrNoFrames
	}
	if pos < 0 {
		pos += count
	}
	if pos < 0 || pos >= count {
		return 0, fmt.Errorf("frame %d out of range (video has %d frames)", pos, count)
	}
	return pos, nil
}
