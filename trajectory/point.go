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

package trajectory

import "fmt"

// Class says whether an object had moved since it was last seen.
type Class int

const (
	Moving Class = iota
	Static
)

func (c Class) String() string {
	switch c {
	case Moving:
		return "moving"
	case Static:
		return "static"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Class) UnmarshalText(text []byte) error {
	switch string(text) {
	case "moving":
		*c = Moving
	case "static":
		*c = Static
	default:
		return fmt.Errorf("unknown class %q", text)
	}
	return nil
}

// Point is one weighted mark in the heatmap. Repeat is the number of
// static points emitted for the object so far, including this one, and
// is zero for moving points.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Class    Class   `json:"class"`
	Repeat   int     `json:"repeat,omitempty"`
	ObjectID string  `json:"objectId"`
	Frame    string  `json:"frame"`
}

// Buffer is the ordered output of one accumulation pass.
type Buffer []Point

// counts returns the number of moving and static points.
func (b Buffer) counts() (moving, static int) {
	for _, p := range b {
		if p.Class == Static {
			static++
		} else {
			moving++
		}
	}
	return moving, static
}
