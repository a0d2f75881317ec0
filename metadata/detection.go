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

package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Box is an axis aligned rectangle given as x1, y1, x2, y2 in video
// pixel coordinates.
type Box [4]float64

// Center returns the midpoint of the box.
func (b Box) Center() (float64, float64) {
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2
}

// Detection is one observation of one object in one frame. An empty
// ObjectID means the record had no usable identifier.
type Detection struct {
	ObjectID   string
	Box        Box
	Label      string
	Confidence float64
}

// ObjectID accepts either a JSON string or a number. Values which don't
// identify anything (null, false, "" and 0) decode to the empty string.
type ObjectID string

func (id *ObjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*id = ""
		return nil
	}
	switch data[0] {
	case 'n', 'f':
		*id = ""
		return nil
	case 't':
		*id = "true"
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ObjectID(s)
		return nil
	case '{', '[':
		return fmt.Errorf("unsupported object_id %s", data)
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid object_id %s: %v", data, err)
	}
	if f == 0 {
		*id = ""
		return nil
	}
	*id = ObjectID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

type record struct {
	ObjectID   ObjectID        `json:"object_id"`
	Label      string          `json:"label,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Box        json.RawMessage `json:"box"`
}

func (r *record) detection() (Detection, error) {
	d := Detection{
		ObjectID:   string(r.ObjectID),
		Label:      r.Label,
		Confidence: r.Confidence,
	}
	if d.ObjectID == "" {
		return d, nil
	}
	box, err := parseBox(r.Box)
	if err != nil {
		return d, err
	}
	d.Box = box
	return d, nil
}

func parseBox(raw json.RawMessage) (Box, error) {
	var box Box
	if len(raw) == 0 {
		return box, fmt.Errorf("missing box")
	}
	var coords []*float64
	if err := json.Unmarshal(raw, &coords); err != nil {
		return box, fmt.Errorf("box %s is not an array of numbers", raw)
	}
	if len(coords) != len(box) {
		return box, fmt.Errorf("box has %d coordinates, want %d", len(coords), len(box))
	}
	for i, c := range coords {
		if c == nil {
			return box, fmt.Errorf("box coordinate %d is null", i)
		}
		box[i] = *c
	}
	return box, nil
}
