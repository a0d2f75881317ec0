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
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable is returned when the metadata source can't be
	// read or parsed.
	ErrDataUnavailable = errors.New("metadata unavailable")

	// ErrMalformedInput is returned when a detection's box isn't an
	// array of exactly 4 numbers.
	ErrMalformedInput = errors.New("malformed detection")

	// ErrNoMetadataLoaded is returned when heatmap generation is requested
	// before any metadata has been loaded.
	ErrNoMetadataLoaded = errors.New("no metadata loaded")
)

// MalformedError identifies the detection which failed validation.
type MalformedError struct {
	Frame  string
	Index  int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: frame %q detection %d: %s", ErrMalformedInput, e.Frame, e.Index, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedInput
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
}
