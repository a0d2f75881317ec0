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

// Package loglimiter stops repeated failures from flooding the log.
package loglimiter

import (
	"fmt"
	"log"
	"time"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		entries:  make(map[string]*entry),
	}
}

// LogLimiter suppresses a message if the same message was logged under
// the same key within some time interval. Keys are tracked separately,
// so failures of one kind don't reset the limit for another. The number
// of suppressed messages is logged before the key's next message.
type LogLimiter struct {
	interval time.Duration
	nowFunc  func() time.Time
	entries  map[string]*entry
}

type entry struct {
	message    string
	time       time.Time
	suppressed int
}

func (limiter *LogLimiter) Printf(key, format string, v ...interface{}) {
	limiter.Print(key, fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(key, s string) {
	now := limiter.nowFunc()
	e, ok := limiter.entries[key]
	if !ok {
		e = new(entry)
		limiter.entries[key] = e
	} else if s == e.message && now.Sub(e.time) < limiter.interval {
		e.suppressed++
		return
	}

	if e.suppressed > 0 {
		log.Printf("%s: last message repeated %d times", key, e.suppressed)
		e.suppressed = 0
	}
	log.Print(s)
	e.message = s
	e.time = now
}
