package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/TheCacophonyProject/track-heatmap/metadata"
)

type candidate struct {
	// x1, y1, x2, y2 in source pixels.
	box   [4]float32
	class int
	score float32
}

// decode reads a 1x84x8400 YOLOv8 output. Each column holds the box
// centre and size in model input pixels followed by one score per class.
func decode(pred []float32, width, height int, threshold float32) ([]candidate, error) {
	if len(pred) != outputRows*numPredictions {
		return nil, fmt.Errorf("unexpected output size %d", len(pred))
	}
	sx := float32(width) / InputWidth
	sy := float32(height) / InputHeight

	var cands []candidate
	for i := 0; i < numPredictions; i++ {
		class, score := 0, float32(0)
		for c := 0; c < numClasses; c++ {
			if s := pred[(4+c)*numPredictions+i]; s > score {
				class, score = c, s
			}
		}
		if score < threshold {
			continue
		}

		cx := pred[i] * sx
		cy := pred[numPredictions+i] * sy
		w := pred[2*numPredictions+i] * sx
		h := pred[3*numPredictions+i] * sy
		cands = append(cands, candidate{
			box: [4]float32{
				clamp(cx-w/2, float32(width)),
				clamp(cy-h/2, float32(height)),
				clamp(cx+w/2, float32(width)),
				clamp(cy+h/2, float32(height)),
			},
			class: class,
			score: score,
		})
	}
	return cands, nil
}

func clamp(v, hi float32) float32 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// nms keeps the best scoring box of every group of same class boxes
// overlapping by more than threshold.
func nms(cands []candidate, threshold float32) []candidate {
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].score > sorted[j].score
	})

	kept := make([]candidate, 0, len(sorted))
	suppressed := make([]bool, len(sorted))
	for i, c := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, c)
		for j := i + 1; j < len(sorted); j++ {
			if !suppressed[j] && sorted[j].class == c.class && iou(c.box, sorted[j].box) > threshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

func iou(a, b [4]float32) float32 {
	x1 := float32(math.Max(float64(a[0]), float64(b[0])))
	y1 := float32(math.Max(float64(a[1]), float64(b[1])))
	x2 := float32(math.Min(float64(a[2]), float64(b[2])))
	y2 := float32(math.Min(float64(a[3]), float64(b[3])))
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := area(a) + area(b) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func area(b [4]float32) float32 {
	return (b[2] - b[0]) * (b[3] - b[1])
}

// ObjectID names a detection by its label and integer box, eg
// "person_10_20_50_90".
func ObjectID(label string, box metadata.Box) string {
	return fmt.Sprintf("%s_%d_%d_%d_%d", label, int(box[0]), int(box[1]), int(box[2]), int(box[3]))
}

func toDetections(cands []candidate) []metadata.Detection {
	dets := make([]metadata.Detection, 0, len(cands))
	for _, c := range cands {
		box := metadata.Box{
			math.Trunc(float64(c.box[0])),
			math.Trunc(float64(c.box[1])),
			math.Trunc(float64(c.box[2])),
			math.Trunc(float64(c.box[3])),
		}
		label := Labels[c.class]
		dets = append(dets, metadata.Detection{
			ObjectID:   ObjectID(label, box),
			Box:        box,
			Label:      label,
			Confidence: float64(c.score),
		})
	}
	return dets
}
