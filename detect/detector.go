// Package detect finds objects in video frames with a YOLOv8 model run
// through ONNX Runtime.
package detect

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/TheCacophonyProject/track-heatmap/metadata"
)

const (
	InputWidth  = 640
	InputHeight = 640

	numClasses     = 80
	outputRows     = 4 + numClasses
	numPredictions = 8400

	DefaultConfThreshold = 0.5
	DefaultIoUThreshold  = 0.45
)

type Config struct {
	ModelPath     string
	ConfThreshold float32
	IoUThreshold  float32
}

func DefaultConfig() Config {
	return Config{
		ConfThreshold: DefaultConfThreshold,
		IoUThreshold:  DefaultIoUThreshold,
	}
}

func (conf *Config) Validate() error {
	if conf.ModelPath == "" {
		return errors.New("model path should be set")
	}
	if conf.ConfThreshold < 0 || conf.ConfThreshold > 1 {
		return errors.New("confidence threshold should be in the range [0, 1]")
	}
	if conf.IoUThreshold < 0 || conf.IoUThreshold > 1 {
		return errors.New("iou threshold should be in the range [0, 1]")
	}
	return nil
}

// InitEnvironment loads the ONNX Runtime shared library. It must be
// called once before New.
func InitEnvironment(libPath string) error {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	return ort.InitializeEnvironment()
}

func DestroyEnvironment() error {
	return ort.DestroyEnvironment()
}

type Detector struct {
	conf    Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func New(conf Config) (*Detector, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("error creating session options: %w", err)
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(runtime.NumCPU())

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, InputHeight, InputWidth))
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, outputRows, numPredictions))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		conf.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &Detector{
		conf:    conf,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

func (d *Detector) Destroy() {
	d.session.Destroy()
	d.input.Destroy()
	d.output.Destroy()
}

// Detect returns the objects found in img with boxes in img's pixel
// coordinates.
func (d *Detector) Detect(img image.Image) ([]metadata.Detection, error) {
	resized := imaging.Resize(img, InputWidth, InputHeight, imaging.Linear)
	prepareInput(resized, d.input.GetData())

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	b := img.Bounds()
	cands, err := decode(d.output.GetData(), b.Dx(), b.Dy(), d.conf.ConfThreshold)
	if err != nil {
		return nil, fmt.Errorf("process predictions: %w", err)
	}
	return toDetections(nms(cands, d.conf.IoUThreshold)), nil
}

// prepareInput writes pic as planar RGB scaled to [0, 1].
func prepareInput(pic *image.NRGBA, dst []float32) {
	channelSize := InputWidth * InputHeight
	for y := 0; y < InputHeight; y++ {
		offset := y * InputWidth
		for x := 0; x < InputWidth; x++ {
			i := offset + x
			p := pic.PixOffset(x, y)
			dst[i] = float32(pic.Pix[p]) / 255.0
			dst[channelSize+i] = float32(pic.Pix[p+1]) / 255.0
			dst[channelSize*2+i] = float32(pic.Pix[p+2]) / 255.0
		}
	}
}
