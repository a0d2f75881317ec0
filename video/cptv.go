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

package video

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"
)

type camera struct {
	resX, resY, fps int
}

func (c *camera) ResX() int { return c.resX }
func (c *camera) ResY() int { return c.resY }
func (c *camera) FPS() int { return c.fps }

// cptvSource reads a CPTV recording. CPTV frames can only be read in
// order so seeking backwards reopens the file.
type cptvSource struct {
	path   string
	file   *os.File
	reader *cptv.Reader
	camera *camera
	frame  *cptvframe.Frame
	next   int
	count  int
}

func openCPTV(path string) (Source, error) {
	s := &cptvSource{path: path}
	if err := s.rewind(); err != nil {
		return nil, err
	}
	s.camera = &camera{
		resX: s.reader.ResX(),
		resY: s.reader.ResY(),
		fps:  s.reader.FPS(),
	}
	s.frame = cptvframe.NewFrame(s.camera)

	for {
		if err := s.reader.ReadFrame(s.frame); err != nil {
			if err != io.EOF {
				s.Close()
				return nil, fmt.Errorf("reading %s: %v", path, err)
			}
			break
		}
		s.count++
	}
	if err := s.rewind(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *cptvSource) rewind() error {
	if s.file != nil {
		s.file.Close()
	}
	file, err := os.Open(s.path)
	if err != nil {
		return err
	}
	reader, err := cptv.NewReader(file)
	if err != nil {
		file.Close()
		return err
	}
	s.file = file
	s.reader = reader
	s.next = 0
	return nil
}

func (s *cptvSource) Width() int { return s.camera.resX }
func (s *cptvSource) Height() int { return s.camera.resY }
func (s *cptvSource) FPS() float64 { return float64(s.camera.fps) }
func (s *cptvSource) FrameCount() int { return s.count }

// Frame returns the raw thermal values of a frame as a 16 bit grey
// image.
func (s *cptvSource) Frame(pos int) (image.Image, error) {
	pos, err := resolve(pos, s.count)
	if err != nil {
		return nil, err
	}
	if pos < s.next {
		if err := s.rewind(); err != nil {
			return nil, err
		}
	}
	for s.next <= pos {
		if err := s.reader.ReadFrame(s.frame); err != nil {
			return nil, fmt.Errorf("reading frame %d: %v", s.next, err)
		}
		s.next++
	}
	return thermalImage(s.frame), nil
}

func (s *cptvSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func thermalImage(f *cptvframe.Frame) *image.Gray16 {
	height := len(f.Pix)
	width := 0
	if height > 0 {
		width = len(f.Pix[0])
	}
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y, row := range f.Pix {
		for x, val := range row {
			img.SetGray16(x, y, color.Gray16{Y: val})
		}
	}
	return img
}
