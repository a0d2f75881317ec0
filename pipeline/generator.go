// track-heatmap - accumulate heatmaps of moving and stationary objects
//  Copyright (C) 2021, The Cacophony Project
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

// Package pipeline runs a generate trigger: it captures a snapshot of the
// video and rebuilds the heatmap from all loaded metadata.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheCacophonyProject/track-heatmap/loglimiter"
	"github.com/TheCacophonyProject/track-heatmap/metadata"
	"github.com/TheCacophonyProject/track-heatmap/output"
	"github.com/TheCacophonyProject/track-heatmap/render"
	"github.com/TheCacophonyProject/track-heatmap/snapshot"
	"github.com/TheCacophonyProject/track-heatmap/trajectory"
	"github.com/TheCacophonyProject/track-heatmap/video"
)

const failureLogInterval = 5 * time.Minute

// Log limiter keys.
const (
	snapshotLog = "snapshot"
	heatmapLog  = "heatmap"
)

var errNoVideo = errors.New("no video configured")

type Config struct {
	Metadata    string
	Video       string
	Snapshot    snapshot.Config
	Accumulator trajectory.Options
	Render      render.Config
	// Surface size used when the video can't be opened. Zero fits the
	// surface to the points.
	Width  int
	Height int
	// Verbose logs statistics for every pass.
	Verbose bool
}

// Generator owns the loaded metadata and the heatmap surface. Triggers
// run one at a time.
type Generator struct {
	conf    Config
	out     *output.Writer
	palette render.Palette
	canvas  *render.Canvas
	logs    *loglimiter.LogLimiter

	openVideo    func(string) (video.Source, error)
	openMetadata func(context.Context, string) (*metadata.Store, error)
	now          func() time.Time

	mu      sync.Mutex
	store   *metadata.Store
	loadErr error

	genMu sync.Mutex
}

func New(conf Config, out *output.Writer) (*Generator, error) {
	if err := conf.Accumulator.Validate(); err != nil {
		return nil, err
	}
	if conf.Width < 0 || conf.Height < 0 || conf.Width > render.MaxSurfaceSize || conf.Height > render.MaxSurfaceSize {
		return nil, fmt.Errorf("surface size should be between 0 and %d", render.MaxSurfaceSize)
	}
	palette, err := conf.Render.Palette()
	if err != nil {
		return nil, err
	}
	return &Generator{
		conf:         conf,
		out:          out,
		palette:      palette,
		canvas:       render.NewCanvas(conf.Width, conf.Height),
		logs:         loglimiter.New(failureLogInterval),
		openVideo:    video.Open,
		openMetadata: metadata.Open,
		now:          time.Now,
	}, nil
}

// LoadMetadata reads the metadata source. On failure the generator keeps
// producing snapshots and an empty heatmap.
func (g *Generator) LoadMetadata(ctx context.Context) error {
	store, err := g.openMetadata(ctx, g.conf.Metadata)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.loadErr = err
		log.Printf("metadata unavailable: %v", err)
		return err
	}
	g.store = store
	g.loadErr = nil
	log.Printf("loaded metadata: %d frames, %d detections", store.Len(), store.Count())
	return nil
}

// StartLoading loads the metadata in the background. The returned
// channel receives the load result.
func (g *Generator) StartLoading(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- g.LoadMetadata(ctx)
		close(done)
	}()
	return done
}

func (g *Generator) metadata() (*metadata.Store, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.store != nil:
		return g.store, MetadataLoaded
	case g.loadErr != nil:
		return nil, MetadataUnavailable
	}
	return nil, MetadataLoading
}

// Generate captures a snapshot and rebuilds the heatmap. A failure of
// one doesn't stop the other and is reported in the Result. The only
// error returned is ctx's, in which case the heatmap is left unpainted.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	g.genMu.Lock()
	defer g.genMu.Unlock()

	res := &Result{ID: uuid.NewString(), Time: g.now()}

	snap, width, height := g.takeSnapshot(res)
	res.Width, res.Height = width, height

	store, state := g.metadata()
	res.Metadata = state
	if store == nil {
		if state == MetadataLoading {
			log.Printf("%s: %v, heatmap left empty", res.ID, metadata.ErrNoMetadataLoaded)
		}
		g.writeEmptyHeatmap(res)
		return res, nil
	}

	buf, stats, err := trajectory.Accumulate(store, g.conf.Accumulator)
	if err != nil {
		res.setHeatmapErr(err)
		g.logs.Printf(heatmapLog, "heatmap not updated: %v", err)
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Moving, res.Static = stats.Moving, stats.Static
	res.Skipped, res.Dropped = stats.Skipped, stats.Dropped
	if g.conf.Verbose {
		log.Printf("%s: %d frames, %d detections, %d moving, %d static, %d without id, %d over static cap",
			res.ID, stats.Frames, stats.Detections, stats.Moving, stats.Static, stats.Skipped, stats.Dropped)
	}

	if res.Width == 0 || res.Height == 0 {
		width, height, err := render.Extent(buf)
		if err != nil {
			res.setHeatmapErr(err)
			g.logs.Printf(heatmapLog, "heatmap not updated: %v", err)
			return res, nil
		}
		res.Width, res.Height = width, height
	}
	g.canvas.Resize(res.Width, res.Height)
	g.canvas.Redraw(buf, g.palette)

	if err := g.writeHeatmap(res, snap, buf); err != nil {
		res.setHeatmapErr(err)
		g.logs.Printf(heatmapLog, "writing heatmap failed: %v", err)
	}
	return res, nil
}

func (g *Generator) takeSnapshot(res *Result) (image.Image, int, int) {
	width, height := g.conf.Width, g.conf.Height
	if g.conf.Video == "" {
		res.setSnapshotErr(errNoVideo)
		return nil, width, height
	}

	src, err := g.openVideo(g.conf.Video)
	if err != nil {
		res.setSnapshotErr(err)
		g.logs.Printf(snapshotLog, "snapshot failed: %v", err)
		return nil, width, height
	}
	defer src.Close()
	width, height = src.Width(), src.Height()

	img, err := snapshot.Take(src, g.conf.Snapshot)
	if err != nil {
		res.setSnapshotErr(err)
		g.logs.Printf(snapshotLog, "snapshot failed: %v", err)
		return nil, width, height
	}
	path, err := g.out.WritePNG(output.SnapshotFile, img)
	if err != nil {
		res.setSnapshotErr(err)
		g.logs.Printf(snapshotLog, "writing snapshot failed: %v", err)
		return img, width, height
	}
	res.Snapshot = path
	return img, width, height
}

func (g *Generator) writeEmptyHeatmap(res *Result) {
	g.canvas.Resize(res.Width, res.Height)
	if res.Width == 0 || res.Height == 0 {
		// Nothing to draw on, so the previous heatmap is out of date.
		for _, name := range []string{output.HeatmapFile, output.OverlayFile} {
			if err := g.out.Remove(name); err != nil {
				res.setHeatmapErr(err)
				g.logs.Printf(heatmapLog, "removing %s failed: %v", name, err)
			}
		}
		return
	}
	path, err := g.out.WritePNG(output.HeatmapFile, g.canvas.Image())
	if err != nil {
		res.setHeatmapErr(err)
		g.logs.Printf(heatmapLog, "writing heatmap failed: %v", err)
		return
	}
	res.Heatmap = path
}

type pointsFile struct {
	ID     string            `json:"id"`
	Time   time.Time         `json:"time"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Points trajectory.Buffer `json:"points"`
}

func (g *Generator) writeHeatmap(res *Result, snap image.Image, buf trajectory.Buffer) error {
	var err error
	res.Points, err = g.out.WriteJSON(output.PointsFile, pointsFile{
		ID:     res.ID,
		Time:   res.Time,
		Width:  res.Width,
		Height: res.Height,
		Points: buf,
	})
	if err != nil {
		return err
	}

	if g.conf.Render.Chart {
		res.Chart, err = g.out.WriteWith(output.ChartFile, func(w io.Writer) error {
			return render.WriteChart(w, buf, res.Width, res.Height, g.palette)
		})
		if err != nil {
			return err
		}
	}

	if res.Width == 0 || res.Height == 0 {
		return nil
	}
	heat := g.canvas.Image()
	res.Heatmap, err = g.out.WritePNG(output.HeatmapFile, heat)
	if err != nil {
		return err
	}
	if snap != nil {
		res.Overlay, err = g.out.WritePNG(output.OverlayFile, render.Overlay(snap, heat, g.conf.Render.OverlayOpacity))
		if err != nil {
			return err
		}
	}
	return nil
}
