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
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testResX = 8
	testResY = 6
)

func TestOpenCPTV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.cptv")
	require.NoError(t, MakeTestCPTV(path, testResX, testResY, []uint16{3000, 3100, 3200}))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, testResX, src.Width())
	assert.Equal(t, testResY, src.Height())
	assert.Equal(t, 3, src.FrameCount())
}

func TestCPTVFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.cptv")
	require.NoError(t, MakeTestCPTV(path, testResX, testResY, []uint16{3000, 3100, 3200}))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	check := func(pos int, want uint16) {
		img, err := src.Frame(pos)
		require.NoError(t, err)
		g16, ok := img.(*image.Gray16)
		require.True(t, ok)
		assert.Equal(t, image.Rect(0, 0, testResX, testResY), g16.Bounds())
		assert.Equal(t, want, g16.Gray16At(0, 0).Y, "frame %d", pos)
		assert.Equal(t, want+uint16(testResX-1+testResY-1), g16.Gray16At(testResX-1, testResY-1).Y, "frame %d", pos)
	}

	check(LastFrame, 3200)
	check(0, 3000)
	check(1, 3100)
	check(-3, 3000)
	check(2, 3200)

	_, err = src.Frame(3)
	assert.Error(t, err)
	_, err = src.Frame(-4)
	assert.Error(t, err)
}

func TestEmptyCPTV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cptv")
	require.NoError(t, MakeTestCPTV(path, testResX, testResY, nil))

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 0, src.FrameCount())
	_, err = src.Frame(LastFrame)
	assert.True(t, errors.Is(err, ErrNoFrames))
}

func TestMissingCPTV(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.cptv"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	pos, err := resolve(-1, 10)
	require.NoError(t, err)
	assert.Equal(t, 9, pos)

	pos, err = resolve(4, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, pos)

	_, err = resolve(0, 0)
	assert.True(t, errors.Is(err, ErrNoFrames))

	_, err = resolve(10, 10)
	assert.Error(t, err)
}
