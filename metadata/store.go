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

// Package metadata loads per-frame object detections and replays them in
// frame order.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Store holds the detections of every frame. It is read only once
// loaded and safe to share between goroutines.
type Store struct {
	keys    []string
	indexes map[string]int64
	frames  map[string][]record
}

var reFrameKey = regexp.MustCompile(`^[^0-9-]*(-?[0-9]+)$`)

// ParseFrameKey returns the frame number of a metadata key. Keys are
// either plain integers ("12") or carry a label prefix ("frame_12").
func ParseFrameKey(key string) (int64, error) {
	m := reFrameKey.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return 0, fmt.Errorf("frame key %q has no frame number", key)
	}
	return strconv.ParseInt(m[1], 10, 64)
}

// Open loads metadata from a file path or an http(s) URL.
func Open(ctx context.Context, source string) (*Store, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetch(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, unavailable(err)
	}
	defer f.Close()
	return Load(f)
}

func fetch(ctx context.Context, url string) (*Store, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(fmt.Errorf("GET %s: %s", url, resp.Status))
	}
	return Load(resp.Body)
}

// Load reads a JSON object mapping frame keys to arrays of detections.
func Load(r io.Reader) (*Store, error) {
	var raw map[string][]record
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, unavailable(err)
	}
	if raw == nil {
		return nil, unavailable(fmt.Errorf("metadata is not an object"))
	}

	s := &Store{
		keys:    make([]string, 0, len(raw)),
		indexes: make(map[string]int64, len(raw)),
		frames:  raw,
	}
	for key := range raw {
		n, err := ParseFrameKey(key)
		if err != nil {
			return nil, unavailable(err)
		}
		s.keys = append(s.keys, key)
		s.indexes[key] = n
	}
	sort.Slice(s.keys, func(i, j int) bool {
		a, b := s.keys[i], s.keys[j]
		if s.indexes[a] != s.indexes[b] {
			return s.indexes[a] < s.indexes[b]
		}
		return a < b
	})
	return s, nil
}

// Keys returns the frame keys in ascending frame number order.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len returns the number of frames.
func (s *Store) Len() int {
	return len(s.keys)
}

// frameNumber returns the parsed frame number for key.
func (s *Store) frameNumber(key string) (int64, bool) {
	n, ok := s.indexes[key]
	return n, ok
}

// Detections returns the detections of one frame, in the order they
// were recorded. Records without an object id are returned with an empty
// ObjectID and their box is not checked.
func (s *Store) Detections(key string) ([]Detection, error) {
	records := s.frames[key]
	dets := make([]Detection, 0, len(records))
	for i := range records {
		d, err := records[i].detection()
		if err != nil {
			return nil, &MalformedError{Frame: key, Index: i, Reason: err.Error()}
		}
		dets = append(dets, d)
	}
	return dets, nil
}

// Count returns the total number of detection records.
func (s *Store) Count() int {
	n := 0
	for _, records := range s.frames {
		n += len(records)
	}
	return n
}
