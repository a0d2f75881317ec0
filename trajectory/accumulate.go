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

// Package trajectory replays detections in frame order and turns them
// into weighted heatmap points, classifying each object as moving or
// static.
package trajectory

import (
	"github.com/TheCacophonyProject/track-heatmap/metadata"
)

// Source provides frames of detections in replay order.
type Source interface {
	Keys() []string
	Detections(key string) ([]metadata.Detection, error)
}

// Stats summarises one accumulation pass.
type Stats struct {
	Frames     int
	Detections int
	Skipped    int
	Moving     int
	Static     int
	Dropped    int
}

// History is the state of one pass: the last box seen for each object
// and how many static points each object has produced.
type History struct {
	opts    Options
	last    map[string]metadata.Box
	repeats map[string]int
}

func NewHistory(opts Options) *History {
	return &History{
		opts:    opts,
		last:    make(map[string]metadata.Box),
		repeats: make(map[string]int),
	}
}

// Observe classifies d against the object's previous appearance and
// records its box. It returns false when d produces no point, either
// because it has no object id or because the object has reached its
// static cap.
func (h *History) Observe(frame string, d metadata.Detection) (Point, bool) {
	if d.ObjectID == "" {
		return Point{}, false
	}

	prev, seen := h.last[d.ObjectID]
	h.last[d.ObjectID] = d.Box

	x, y := d.Box.Center()
	p := Point{
		X:        x,
		Y:        y,
		Radius:   h.opts.Radius,
		Class:    Moving,
		ObjectID: d.ObjectID,
		Frame:    frame,
	}
	if !seen || prev != d.Box {
		return p, true
	}

	n := h.repeats[d.ObjectID]
	if n >= h.opts.StaticCap {
		return Point{}, false
	}
	n++
	h.repeats[d.ObjectID] = n
	p.Class = Static
	p.Repeat = n
	return p, true
}

// seen reports whether an object has a recorded position.
func (h *History) seen(objectID string) bool {
	_, ok := h.last[objectID]
	return ok
}

// repeatCount returns the number of static points emitted for an object.
func (h *History) repeatCount(objectID string) int {
	return h.repeats[objectID]
}

// Accumulate replays every frame of src and returns the resulting
// points. State is local to the call so every pass starts from scratch.
// A malformed detection aborts the pass and no buffer is returned.
func Accumulate(src Source, opts Options) (Buffer, Stats, error) {
	var stats Stats
	h := NewHistory(opts)
	buf := make(Buffer, 0)

	for _, key := range src.Keys() {
		dets, err := src.Detections(key)
		if err != nil {
			return nil, stats, err
		}
		stats.Frames++

		for _, d := range dets {
			stats.Detections++
			if d.ObjectID == "" {
				stats.Skipped++
				continue
			}
			p, ok := h.Observe(key, d)
			if !ok {
				stats.Dropped++
				continue
			}
			if p.Class == Static {
				stats.Static++
			} else {
				stats.Moving++
			}
			buf = append(buf, p)
		}
	}
	return buf, stats, nil
}
