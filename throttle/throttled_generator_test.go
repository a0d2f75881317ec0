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
	"testing"
	"time"

	"github.com/juju/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/track-heatmap/pipeline"
)

const (
	bucketSize = 3
	minRefill  = 20 * time.Second
)

func newTestConfig() *ThrottlerConfig {
	return &ThrottlerConfig{
		ApplyThrottling: true,
		BucketSize:      bucketSize,
		MinRefill:       minRefill,
	}
}

func newTestThrottledGenerator() (*countGenerator, *throttleListener, *ThrottledGenerator, *testClock) {
	clock := new(testClock)
	generator := new(countGenerator)
	listener := new(throttleListener)
	return generator, listener, NewThrottledGeneratorWithClock(generator, newTestConfig(), listener, clock), clock
}

type countGenerator struct {
	runs int
}

func (gen *countGenerator) Generate(ctx context.Context) (*pipeline.Result, error) {
	gen.runs++
	return &pipeline.Result{ID: "test"}, nil
}

type throttleListener struct {
	events int
}

func (tc *throttleListener) WhenThrottled() {
	tc.events++
}

func trigger(gen *ThrottledGenerator, times int) (throttled int) {
	for i := 0; i < times; i++ {
		if _, err := gen.Generate(context.Background()); err == ErrThrottled {
			throttled++
		}
	}
	return throttled
}

func TestOnlyRunsUntilBucketIsEmpty(t *testing.T) {
	generator, listener, throttled, _ := newTestThrottledGenerator()

	assert.Equal(t, 2, trigger(throttled, bucketSize+2))
	assert.Equal(t, bucketSize, generator.runs)
	assert.Equal(t, 2, listener.events)
}

func TestThrottledTriggerReturnsNoResult(t *testing.T) {
	_, _, throttled, _ := newTestThrottledGenerator()
	trigger(throttled, bucketSize)

	res, err := throttled.Generate(context.Background())
	assert.Equal(t, ErrThrottled, err)
	assert.Nil(t, res)
}

func TestRefillsAfterMinRefill(t *testing.T) {
	generator, listener, throttled, clock := newTestThrottledGenerator()

	trigger(throttled, bucketSize)
	assert.Equal(t, int64(0), throttled.Available())

	clock.Sleep(minRefill / 2)
	assert.Equal(t, 1, trigger(throttled, 1))

	clock.Sleep(minRefill / 2)
	assert.Equal(t, int64(1), throttled.Available())
	assert.Equal(t, 0, trigger(throttled, 1))

	assert.Equal(t, bucketSize+1, generator.runs)
	assert.Equal(t, 1, listener.events)
}

func TestNeverHoldsMoreThanBucketSize(t *testing.T) {
	generator, _, throttled, clock := newTestThrottledGenerator()

	clock.Sleep(10 * minRefill)
	assert.Equal(t, int64(bucketSize), throttled.Available())
	assert.Equal(t, 1, trigger(throttled, bucketSize+1))
	assert.Equal(t, bucketSize, generator.runs)
}

func TestIdleBucketDoesNotOverfill(t *testing.T) {
	generator, listener, throttled, clock := newTestThrottledGenerator()

	// Idle while full, then drain.
	clock.Sleep(5 * minRefill)
	assert.Equal(t, 1, trigger(throttled, bucketSize+1))
	assert.Equal(t, int64(0), throttled.Available())

	// Only the ticks since draining count.
	clock.Sleep(minRefill)
	assert.Equal(t, int64(1), throttled.Available())
	assert.Equal(t, 1, trigger(throttled, 2))

	// Idle for a second time.
	clock.Sleep(10 * minRefill)
	assert.Equal(t, 1, trigger(throttled, bucketSize+1))

	assert.Equal(t, 2*bucketSize+1, generator.runs)
	assert.Equal(t, 3, listener.events)
}

func TestNilListener(t *testing.T) {
	clock := new(testClock)
	generator := new(countGenerator)
	throttled := NewThrottledGeneratorWithClock(generator, newTestConfig(), nil, clock)

	require.NotPanics(t, func() { trigger(throttled, bucketSize+1) })
	assert.Equal(t, bucketSize, generator.runs)
}

func TestThrottlerConfigValidate(t *testing.T) {
	conf := DefaultThrottlerConfig()
	assert.NoError(t, conf.Validate())

	conf.BucketSize = 0
	assert.Error(t, conf.Validate())

	conf = DefaultThrottlerConfig()
	conf.MinRefill = 0
	assert.Error(t, conf.Validate())

	conf.ApplyThrottling = false
	assert.NoError(t, conf.Validate())
}

var _ ratelimit.Clock = new(testClock)
var _ ratelimit.Clock = new(realClock)

// testClock implements a fake ratelimit.Clock for testing.
type testClock struct {
	now time.Time
}

// Now implements Clock.Now by calling time.Now.
func (c *testClock) Now() time.Time {
	return c.now
}

// Now implements Clock.Sleep by calling time.Sleep.
func (c *testClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}
