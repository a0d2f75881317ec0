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
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"

	"github.com/TheCacophonyProject/track-heatmap/events"
	"github.com/TheCacophonyProject/track-heatmap/heatmapclient"
	"github.com/TheCacophonyProject/track-heatmap/output"
	"github.com/TheCacophonyProject/track-heatmap/pipeline"
	"github.com/TheCacophonyProject/track-heatmap/throttle"
)

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Once       bool   `arg:"--once" help:"generate the snapshot and heatmap once then exit"`
	Verbose    bool   `arg:"-v,--verbose" help:"log statistics for every heatmap pass"`
	Trigger    bool   `arg:"--trigger" help:"ask the running service to generate then exit"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/track-heatmap.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()
	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	if args.Trigger {
		summary, err := heatmapclient.Generate()
		if err != nil {
			return err
		}
		log.Print(summary)
		return nil
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	out, err := output.NewWriter(conf.OutputDir, conf.MinDiskSpace)
	if err != nil {
		return err
	}
	log.Printf("output dir: %s", out.Dir())

	generator, err := pipeline.New(conf.pipelineConfig(args.Verbose), out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Print("loading metadata")
	loaded := generator.StartLoading(ctx)

	if args.Once {
		// A failed load is already logged and leaves the heatmap empty.
		<-loaded
		res, err := generator.Generate(ctx)
		if err != nil {
			return err
		}
		log.Print(res.Summary())
		return nil
	}

	reporter := events.NewReporter()
	var trigger throttle.Generator = generator
	if conf.Throttler.ApplyThrottling {
		trigger = throttle.NewThrottledGenerator(generator, &conf.Throttler, reporter)
	}
	trigger = &reportingGenerator{
		generator: trigger,
		reporter:  reporter,
	}

	log.Print("starting d-bus service")
	if err := startService(ctx, trigger); err != nil {
		return err
	}

	var srv *http.Server
	if conf.HTTP.Address != "" {
		srv = newHTTPServer(conf.HTTP.Address, trigger, out)
		go func() {
			log.Printf("starting http server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server stopped: %v", err)
			}
		}()
	}

	daemon.SdNotify(false, "READY=1")

	<-ctx.Done()
	log.Print("shutting down")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	return nil
}

// reportingGenerator records an event for every trigger that runs.
type reportingGenerator struct {
	generator throttle.Generator
	reporter  *events.Reporter
}

func (g *reportingGenerator) Generate(ctx context.Context) (*pipeline.Result, error) {
	res, err := g.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}
	log.Print(res.Summary())
	g.reporter.Generated(res)
	return res, nil
}

func logConfig(conf *Config) {
	log.Printf("metadata: %s", conf.Metadata)
	log.Printf("video: %s", conf.Video)
	log.Printf("accumulator: %+v", conf.Accumulator)
	log.Printf("render: %+v", conf.Render)
	if conf.Surface.Width > 0 && conf.Surface.Height > 0 {
		log.Printf("fallback surface: %dx%d", conf.Surface.Width, conf.Surface.Height)
	}
	if conf.Throttler.ApplyThrottling {
		log.Printf("throttling: %d triggers, one more every %s", conf.Throttler.BucketSize, conf.Throttler.MinRefill)
	}
	if conf.HTTP.Address != "" {
		log.Printf("http trigger: %s", conf.HTTP.Address)
	}
}
