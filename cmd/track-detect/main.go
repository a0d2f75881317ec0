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

// track-detect runs an object detector over one frame per second of a
// video and writes the detection metadata track-heatmap reads.
package main

import (
	"bufio"
	"fmt"
	"image"
	"log"
	"os"

	arg "github.com/alexflint/go-arg"

	"github.com/TheCacophonyProject/track-heatmap/detect"
	"github.com/TheCacophonyProject/track-heatmap/metadata"
	"github.com/TheCacophonyProject/track-heatmap/output"
	"github.com/TheCacophonyProject/track-heatmap/snapshot"
	"github.com/TheCacophonyProject/track-heatmap/video"
)

var version = "<not set>"

type Args struct {
	Video       string  `arg:"positional,required" help:"video to run detection on"`
	Model       string  `arg:"-m,--model" help:"path to the YOLOv8 ONNX model"`
	Output      string  `arg:"-o,--output" help:"metadata file to write"`
	OnnxLib     string  `arg:"--onnx-lib" help:"path to the ONNX Runtime shared library"`
	Conf        float32 `arg:"--conf" help:"minimum detection confidence"`
	IoU         float32 `arg:"--iou" help:"overlap above which boxes of the same class are merged"`
	AnnotateDir string  `arg:"--annotate-dir" help:"also write each sampled frame with its detections drawn"`
	Timestamps  bool    `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	args := Args{
		Model:  "yolov8s.onnx",
		Output: "metadata.json",
		Conf:   detect.DefaultConfThreshold,
		IoU:    detect.DefaultIoUThreshold,
	}
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
		log.SetFlags(0)
	}

	src, err := video.Open(args.Video)
	if err != nil {
		return err
	}
	defer src.Close()

	fps := int(src.FPS())
	if fps <= 0 {
		return fmt.Errorf("can't sample %s: unknown frame rate", args.Video)
	}
	duration := src.FrameCount() / fps
	log.Printf("%s: %dx%d, %d fps, %d seconds", args.Video, src.Width(), src.Height(), fps, duration)

	var annotated *output.Writer
	if args.AnnotateDir != "" {
		annotated, err = output.NewWriter(args.AnnotateDir, 0)
		if err != nil {
			return err
		}
	}

	if err := detect.InitEnvironment(args.OnnxLib); err != nil {
		return fmt.Errorf("error initializing ONNX runtime: %w", err)
	}
	defer detect.DestroyEnvironment()

	conf := detect.DefaultConfig()
	conf.ModelPath = args.Model
	conf.ConfThreshold = args.Conf
	conf.IoUThreshold = args.IoU
	detector, err := detect.New(conf)
	if err != nil {
		return err
	}
	defer detector.Destroy()

	frames := make(map[int64][]metadata.Detection, duration)
	for second := 0; second < duration; second++ {
		frameIndex := second * fps
		img, err := src.Frame(frameIndex)
		if err != nil {
			log.Printf("couldn't read the frame at second %d: %v", second, err)
			continue
		}
		if g16, ok := img.(*image.Gray16); ok {
			img = snapshot.Normalize(g16)
		}

		dets, err := detector.Detect(img)
		if err != nil {
			return err
		}
		frames[int64(frameIndex)] = dets
		log.Printf("second %d: %d objects", second, len(dets))

		if annotated != nil {
			name := fmt.Sprintf("frame_%d.png", second)
			if _, err := annotated.WritePNG(name, detect.Annotate(img, dets)); err != nil {
				return err
			}
		}
	}

	if err := writeMetadata(args.Output, frames); err != nil {
		return err
	}
	log.Printf("wrote %d frames to %s", len(frames), args.Output)
	return nil
}

func writeMetadata(path string, frames map[int64][]metadata.Detection) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := metadata.Write(w, frames); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
