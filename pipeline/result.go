package pipeline

import (
	"fmt"
	"time"
)

// Metadata states reported in a Result.
const (
	MetadataLoading     = "loading"
	MetadataLoaded      = "loaded"
	MetadataUnavailable = "unavailable"
)

// Result describes one generate trigger. The snapshot and the heatmap
// succeed or fail independently.
type Result struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Metadata string    `json:"metadata"`

	Snapshot string `json:"snapshot,omitempty"`
	Heatmap  string `json:"heatmap,omitempty"`
	Overlay  string `json:"overlay,omitempty"`
	Chart    string `json:"chart,omitempty"`
	Points   string `json:"points,omitempty"`

	Moving  int `json:"moving"`
	Static  int `json:"static"`
	Skipped int `json:"skipped"`
	Dropped int `json:"dropped"`

	SnapshotErr   error  `json:"-"`
	HeatmapErr    error  `json:"-"`
	SnapshotError string `json:"snapshotError,omitempty"`
	HeatmapError  string `json:"heatmapError,omitempty"`
}

func (r *Result) setSnapshotErr(err error) {
	r.SnapshotErr = err
	r.SnapshotError = err.Error()
}

func (r *Result) setHeatmapErr(err error) {
	r.HeatmapErr = err
	r.HeatmapError = err.Error()
}

// Summary is a one line description for logs and the D-Bus reply.
func (r *Result) Summary() string {
	s := fmt.Sprintf("%s: %dx%d metadata=%s moving=%d static=%d", r.ID, r.Width, r.Height, r.Metadata, r.Moving, r.Static)
	if r.SnapshotErr != nil {
		s += fmt.Sprintf(" snapshot error: %v", r.SnapshotErr)
	}
	if r.HeatmapErr != nil {
		s += fmt.Sprintf(" heatmap error: %v", r.HeatmapErr)
	}
	return s
}
