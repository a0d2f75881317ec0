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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/track-heatmap/render"
	"github.com/TheCacophonyProject/track-heatmap/snapshot"
	"github.com/TheCacophonyProject/track-heatmap/throttle"
	"github.com/TheCacophonyProject/track-heatmap/trajectory"
)

func TestAllDefaults(t *testing.T) {
	conf, err := ParseConfig([]byte(""))
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, Config{
		Metadata:     "/var/lib/track-heatmap/metadata.json",
		Video:        "/var/lib/track-heatmap/video.cptv",
		OutputDir:    "/var/spool/track-heatmap",
		MinDiskSpace: 50,
		HTTP: HTTPConfig{
			Address: "127.0.0.1:2041",
		},
		Snapshot: snapshot.Config{
			Frame: -1,
			Raw:   false,
		},
		Accumulator: trajectory.Options{
			Radius:    30,
			StaticCap: 3,
		},
		Render: render.Config{
			MovingColor:    "#ff0000",
			StaticColor:    "#0000ff",
			Alpha:          0.5,
			OverlayOpacity: 1,
			Chart:          true,
		},
		Throttler: throttle.ThrottlerConfig{
			ApplyThrottling: true,
			BucketSize:      5,
			MinRefill:       30 * time.Second,
		},
	}, *conf)
}

func TestAllProgramDefaultsMatchDefaultYamlFile(t *testing.T) {
	configDefaults, err := ParseConfig([]byte(""))
	require.NoError(t, err)

	var configYAML Config
	require.NoError(t, yaml.UnmarshalStrict(GetDefaultConfig(), &configYAML))

	assert.Equal(t, configDefaults, &configYAML)
}

func TestAllSet(t *testing.T) {
	// All config set at non-default values.
	config := []byte(`
metadata: "http://localhost:8000/metadata.json"
video: "/some/clip.mp4"
output-dir: "/some/where"
min-disk-space: 321
surface:
    width: 640
    height: 480
http:
    address: ":9000"
snapshot:
    frame: 12
    raw: true
accumulator:
    radius: 12.5
    static-cap: 5
render:
    moving-color: "#0f0"
    static-color: "#123456"
    alpha: 0.25
    overlay-opacity: 0.8
    chart: false
throttler:
    apply-throttling: false
    bucket-size: 2
    min-refill: 1m
`)

	conf, err := ParseConfig(config)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Metadata:     "http://localhost:8000/metadata.json",
		Video:        "/some/clip.mp4",
		OutputDir:    "/some/where",
		MinDiskSpace: 321,
		Surface: SurfaceConfig{
			Width:  640,
			Height: 480,
		},
		HTTP: HTTPConfig{
			Address: ":9000",
		},
		Snapshot: snapshot.Config{
			Frame: 12,
			Raw:   true,
		},
		Accumulator: trajectory.Options{
			Radius:    12.5,
			StaticCap: 5,
		},
		Render: render.Config{
			MovingColor:    "#0f0",
			StaticColor:    "#123456",
			Alpha:          0.25,
			OverlayOpacity: 0.8,
			Chart:          false,
		},
		Throttler: throttle.ThrottlerConfig{
			ApplyThrottling: false,
			BucketSize:      2,
			MinRefill:       time.Minute,
		},
	}, *conf)
}

func TestPipelineConfig(t *testing.T) {
	conf, err := ParseConfig([]byte("surface: {width: 10, height: 20}"))
	require.NoError(t, err)

	pc := conf.pipelineConfig(true)
	assert.Equal(t, conf.Metadata, pc.Metadata)
	assert.Equal(t, conf.Video, pc.Video)
	assert.Equal(t, 10, pc.Width)
	assert.Equal(t, 20, pc.Height)
	assert.True(t, pc.Verbose)
}

func TestValidationErrorsStopConfigParsing(t *testing.T) {
	for _, tc := range []struct {
		config string
		err    string
	}{
		{"accumulator: {radius: 0}", "radius should be greater than 0"},
		{"accumulator: {static-cap: -1}", "static-cap can't be negative"},
		{"render: {alpha: 2}", "alpha should be in the range (0, 1]"},
		{"throttler: {bucket-size: 0}", "bucket-size should be at least 1"},
		{"surface: {width: -1}", "surface size should be between 0 and 8192"},
		{"surface: {height: 8193}", "surface size should be between 0 and 8192"},
		{"output-dir: \"\"", "output-dir should be set"},
		{"metadata: \"\"", "metadata should be set"},
	} {
		conf, err := ParseConfig([]byte(tc.config))
		assert.Nil(t, conf, tc.config)
		assert.EqualError(t, err, tc.err, tc.config)
	}
}

func TestBadColorStopsConfigParsing(t *testing.T) {
	conf, err := ParseConfig([]byte(`render: {moving-color: "red"}`))
	assert.Nil(t, conf)
	assert.Error(t, err)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track-heatmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output-dir: /tmp/heat\n"), 0644))

	conf, err := ParseConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/heat", conf.OutputDir)

	_, err = ParseConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func GetDefaultConfig() []byte {
	dir := GetBaseDir()
	configFile := strings.Replace(dir, filepath.Join("cmd", "track-heatmap"), filepath.Join("_release", "track-heatmap.yaml"), 1)
	buf, err := os.ReadFile(configFile)
	if err != nil {
		panic(err)
	}
	return buf
}

func GetBaseDir() string {
	_, file, _, ok := runtime.Caller(0)

	if !ok {
		panic(fmt.Errorf("Could not find the base dir where sample files are"))
	}

	dir, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		panic(err)
	}

	return dir
}
