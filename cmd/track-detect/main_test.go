package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/track-heatmap/detect"
	"github.com/TheCacophonyProject/track-heatmap/metadata"
)

func TestWriteMetadataIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	box := metadata.Box{10, 20, 50, 90}
	frames := map[int64][]metadata.Detection{
		18: {{ObjectID: detect.ObjectID("person", box), Box: box, Label: "person", Confidence: 0.7}},
		0:  {},
		9:  {{ObjectID: detect.ObjectID("dog", box), Box: box, Label: "dog", Confidence: 0.9}},
	}
	require.NoError(t, writeMetadata(path, frames))

	store, err := metadata.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "9", "18"}, store.Keys())

	dets, err := store.Detections("18")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "person_10_20_50_90", dets[0].ObjectID)
	assert.Equal(t, box, dets[0].Box)
}

func TestWriteMetadataBadPath(t *testing.T) {
	err := writeMetadata(filepath.Join(t.TempDir(), "missing", "metadata.json"), nil)
	assert.Error(t, err)
}
