package metadata

import (
	"encoding/json"
	"io"
	"strconv"
)

type outRecord struct {
	ObjectID   string  `json:"object_id"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Write serialises detections keyed by frame number in the layout Load
// reads.
func Write(w io.Writer, frames map[int64][]Detection) error {
	out := make(map[string][]outRecord, len(frames))
	for n, dets := range frames {
		records := make([]outRecord, 0, len(dets))
		for _, d := range dets {
			records = append(records, outRecord{
				ObjectID:   d.ObjectID,
				Label:      d.Label,
				Confidence: d.Confidence,
				Box:        d.Box,
			})
		}
		out[strconv.FormatInt(n, 10)] = records
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(out)
}
