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
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/track-heatmap/pipeline"
	"github.com/TheCacophonyProject/track-heatmap/render"
	"github.com/TheCacophonyProject/track-heatmap/snapshot"
	"github.com/TheCacophonyProject/track-heatmap/throttle"
	"github.com/TheCacophonyProject/track-heatmap/trajectory"
)

type Config struct {
	Metadata     string
	Video        string
	OutputDir    string `yaml:"output-dir"`
	MinDiskSpace uint64 `yaml:"min-disk-space"`
	Surface      SurfaceConfig
	HTTP         HTTPConfig `yaml:"http"`
	Snapshot     snapshot.Config
	Accumulator  trajectory.Options
	Render       render.Config
	Throttler    throttle.ThrottlerConfig
}

// SurfaceConfig is the heatmap size used when the video can't be read.
type SurfaceConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type HTTPConfig struct {
	// Empty disables the HTTP trigger.
	Address string `yaml:"address"`
}

func (conf *Config) Validate() error {
	if conf.Metadata == "" {
		return errors.New("metadata should be set")
	}
	if conf.OutputDir == "" {
		return errors.New("output-dir should be set")
	}
	if conf.Surface.Width < 0 || conf.Surface.Height < 0 ||
		conf.Surface.Width > render.MaxSurfaceSize || conf.Surface.Height > render.MaxSurfaceSize {
		return fmt.Errorf("surface size should be between 0 and %d", render.MaxSurfaceSize)
	}

	if err := conf.Accumulator.Validate(); err != nil {
		return err
	}

	if err := conf.Render.Validate(); err != nil {
		return err
	}

	if err := conf.Throttler.Validate(); err != nil {
		return err
	}

	return nil
}

func (conf *Config) pipelineConfig(verbose bool) pipeline.Config {
	return pipeline.Config{
		Metadata:    conf.Metadata,
		Video:       conf.Video,
		Snapshot:    conf.Snapshot,
		Accumulator: conf.Accumulator,
		Render:      conf.Render,
		Width:       conf.Surface.Width,
		Height:      conf.Surface.Height,
		Verbose:     verbose,
	}
}

var defaultConfig = Config{
	Metadata:     "/var/lib/track-heatmap/metadata.json",
	Video:        "/var/lib/track-heatmap/video.cptv",
	OutputDir:    "/var/spool/track-heatmap",
	MinDiskSpace: 50,
	HTTP: HTTPConfig{
		Address: "127.0.0.1:2041",
	},
	Snapshot:    snapshot.DefaultConfig(),
	Accumulator: trajectory.DefaultOptions(),
	Render:      render.DefaultConfig(),
	Throttler:   throttle.DefaultThrottlerConfig(),
}

func ParseConfigFile(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}
