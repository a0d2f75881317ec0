// track-heatmap - accumulate heatmaps of moving and stationary objects
//  Copyright (C) 2020, The Cacophony Project
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

// Package events queues heatmap events with the device event reporter.
package events

import (
	"log"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"

	"github.com/TheCacophonyProject/track-heatmap/pipeline"
)

const (
	ThrottleEvent  = "heatmapThrottled"
	GeneratedEvent = "heatmapGenerated"
)

// Reporter uses the event api to record throttled and completed triggers.
type Reporter struct {
	addEvent func(eventclient.Event) error
	now      func() time.Time
}

func NewReporter() *Reporter {
	return &Reporter{
		addEvent: eventclient.AddEvent,
		now:      time.Now,
	}
}

func (r *Reporter) WhenThrottled() {
	r.add(eventclient.Event{
		Timestamp: r.now(),
		Type:      ThrottleEvent,
		Details: map[string]interface{}{
			"description": map[string]interface{}{
				"type": "throttle",
			},
		},
	})
}

// Generated records the outcome of a generate trigger.
func (r *Reporter) Generated(res *pipeline.Result) {
	details := map[string]interface{}{
		"id":       res.ID,
		"metadata": res.Metadata,
		"moving":   res.Moving,
		"static":   res.Static,
	}
	if res.SnapshotError != "" {
		details["snapshotError"] = res.SnapshotError
	}
	if res.HeatmapError != "" {
		details["heatmapError"] = res.HeatmapError
	}
	r.add(eventclient.Event{
		Timestamp: res.Time,
		Type:      GeneratedEvent,
		Details:   details,
	})
}

func (r *Reporter) add(event eventclient.Event) {
	if err := r.addEvent(event); err != nil {
		log.Printf("could not record %s event: %v", event.Type, err)
	}
}
