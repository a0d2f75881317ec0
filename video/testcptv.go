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
	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"
)

// MakeTestCPTV writes a synthetic recording with one frame per entry of
// bases. Each pixel of a frame is its base value plus x plus y.
func MakeTestCPTV(path string, resX, resY int, bases []uint16) error {
	cam := &camera{resX: resX, resY: resY, fps: 9}
	writer, err := cptv.NewFileWriter(path, cam)
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(cptv.Header{DeviceName: "test", FPS: cam.fps}); err != nil {
		writer.Close()
		return err
	}

	frame := cptvframe.NewFrame(cam)
	for _, base := range bases {
		for y, row := range frame.Pix {
			for x := range row {
				row[x] = base + uint16(x+y)
			}
		}
		if err := writer.WriteFrame(frame); err != nil {
			writer.Close()
			return err
		}
	}
	writer.Close()
	return nil
}
