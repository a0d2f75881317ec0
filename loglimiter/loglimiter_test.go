// track-heatmap - accumulate heatmaps of moving and stationary objects
// Copyright (C) 2019, The Cacophony Project
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

package loglimiter

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	limiter := New(time.Minute)
	limiter.Print("greeting", "hello")
	limiter.Print("greeting", "world")

	assert.Equal(t, "hello\nworld\n", logs.String())
}

func TestPrintf(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	limiter := New(time.Minute)
	limiter.Printf("greeting", "hello: %d", 42)
	limiter.Printf("greeting", "world: %q", "hi")

	assert.Equal(t, "hello: 42\nworld: \"hi\"\n", logs.String())
}

func TestLimitPrint(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	now := time.Now()

	limiter := New(2 * time.Second)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Print("greeting", "hello")
	assert.Equal(t, "hello\n", logs.String())

	// Advance time but still within the window.
	now = now.Add(time.Second)
	limiter.Print("greeting", "hello")
	assert.Equal(t, "hello\n", logs.String())

	// Now go past the window; see that second line is logged along with
	// the number of suppressed lines.
	now = now.Add(time.Second)
	limiter.Print("greeting", "hello")
	assert.Equal(t, "hello\ngreeting: last message repeated 1 times\nhello\n", logs.String())

	// Log something else and see that this is let through.
	limiter.Print("greeting", "world")
	assert.Equal(t, "hello\ngreeting: last message repeated 1 times\nhello\nworld\n", logs.String())

	// Log again, and see it be suppressed..
	limiter.Print("greeting", "world")
	assert.Equal(t, "hello\ngreeting: last message repeated 1 times\nhello\nworld\n", logs.String())
	assert.Equal(t, 1, limiter.entries["greeting"].suppressed)
}

func TestLimitPrintf(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	now := time.Now()

	limiter := New(2 * time.Second)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Printf("greeting", "hello")
	assert.Equal(t, "hello\n", logs.String())

	// Advance time but still within the window.
	now = now.Add(time.Second)
	limiter.Printf("greeting", "hello")
	assert.Equal(t, "hello\n", logs.String())

	// Now go past the window; see that second line is logged.
	now = now.Add(time.Second)
	limiter.Printf("greeting", "hello")
	assert.Equal(t, "hello\ngreeting: last message repeated 1 times\nhello\n", logs.String())
}

func TestKeysAreLimitedSeparately(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	now := time.Now()
	limiter := New(time.Minute)
	limiter.nowFunc = func() time.Time { return now }

	// Each trigger fails both ways.
	for i := 0; i < 3; i++ {
		limiter.Printf("snapshot", "snapshot failed: %v", "no frames")
		limiter.Printf("heatmap", "heatmap not updated: %v", "bad box")
	}
	assert.Equal(t, "snapshot failed: no frames\nheatmap not updated: bad box\n", logs.String())
	assert.Equal(t, 2, limiter.entries["snapshot"].suppressed)
	assert.Equal(t, 2, limiter.entries["heatmap"].suppressed)
}

func TestSuppressedCountLoggedBeforeNewMessage(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	now := time.Now()
	limiter := New(time.Minute)
	limiter.nowFunc = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		limiter.Printf("snapshot", "snapshot failed: %v", "no frames")
	}
	assert.Equal(t, 3, limiter.entries["snapshot"].suppressed)

	limiter.Print("snapshot", "writing snapshot failed")
	assert.Equal(t, "snapshot failed: no frames\nsnapshot: last message repeated 3 times\nwriting snapshot failed\n", logs.String())
	assert.Equal(t, 0, limiter.entries["snapshot"].suppressed)
}

func TestMixed(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	// Mixing Print and Printf doesn't matter if the resulting string is the same.
	limiter := New(time.Minute)
	limiter.Print("greeting", "hello")
	limiter.Printf("greeting", "hello")
	assert.Equal(t, "hello\n", logs.String())
}

func captureLogs() (*bytes.Buffer, func()) {
	flags := log.Flags()
	log.SetFlags(0)

	logs := new(bytes.Buffer)
	log.SetOutput(logs)

	return logs, func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}
}
