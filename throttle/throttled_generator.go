// track-heatmap - accumulate heatmaps of moving and stationary objects
//  Copyright (C) 2018, The Cacophony Project
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

package throttle

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/track-heatmap/pipeline"
)

var ErrThrottled = errors.New("heatmap generation throttled")

// Generator is anything that can run a generate trigger.
type Generator interface {
	Generate(ctx context.Context) (*pipeline.Result, error)
}

func NewThrottledGenerator(
	base Generator,
	config *ThrottlerConfig,
	listener ThrottledEventListener,
) *ThrottledGenerator {
	return NewThrottledGeneratorWithClock(base, config, listener, new(realClock))
}

func NewThrottledGeneratorWithClock(
	base Generator,
	config *ThrottlerConfig,
	listener ThrottledEventListener,
	clock ratelimit.Clock,
) *ThrottledGenerator {
	if listener == nil {
		listener = new(nullListener)
	}

	throttler := &ThrottledGenerator{
		generator: base,
		listener:  listener,
		// The token bucket tracks the number of triggers available.
		refillRate: 1 / config.MinRefill.Seconds(),
		capacity:   config.BucketSize,
		clock:      clock,
	}
	throttler.bucket = throttler.newBucket()
	return throttler
}

func (throttler *ThrottledGenerator) newBucket() *ratelimit.Bucket {
	return ratelimit.NewBucketWithRateAndClock(throttler.refillRate, throttler.capacity, throttler.clock)
}

// take removes one token if there is one. A full bucket doesn't move its
// refill tick forward, so the first take after an idle spell would be
// refunded by the ticks it missed. Starting a new full bucket at that
// point keeps the count at capacity.
func (throttler *ThrottledGenerator) take() bool {
	throttler.mu.Lock()
	defer throttler.mu.Unlock()
	if throttler.bucket.Available() >= throttler.capacity {
		throttler.bucket = throttler.newBucket()
	}
	return throttler.bucket.TakeAvailable(1) == 1
}

// ThrottledGenerator wraps a generator so that triggers are refused
// (ie get throttled) when requested too often. Each generate pass
// replays all of the metadata so repeated triggers are expensive and
// produce the same heatmap.
type ThrottledGenerator struct {
	generator  Generator
	listener   ThrottledEventListener
	refillRate float64
	capacity   int64
	clock      ratelimit.Clock

	mu     sync.Mutex
	bucket *ratelimit.Bucket
}

type ThrottledEventListener interface {
	WhenThrottled()
}

type nullListener struct{}

func (lis *nullListener) WhenThrottled() {}

func (throttler *ThrottledGenerator) Generate(ctx context.Context) (*pipeline.Result, error) {
	if !throttler.take() {
		log.Print("heatmap generation throttled")
		throttler.listener.WhenThrottled()
		return nil, ErrThrottled
	}
	return throttler.generator.Generate(ctx)
}

// Available returns the number of triggers that can run right now.
func (throttler *ThrottledGenerator) Available() int64 {
	throttler.mu.Lock()
	defer throttler.mu.Unlock()
	return throttler.bucket.Available()
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

// Now implements Clock.Now by calling time.Now.
func (realClock) Now() time.Time {
	return time.Now()
}

// Now implements Clock.Sleep by calling time.Sleep.
func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
