//go:build opencv

package video

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// capture reads any container OpenCV can decode.
type capture struct {
	vc     *gocv.VideoCapture
	width  int
	height int
	fps    float64
	count  int
}

func openCapture(path string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("could not open video %s", path)
	}
	return &capture{
		vc:     vc,
		width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
		fps:    vc.Get(gocv.VideoCaptureFPS),
		count:  int(vc.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

func (c *capture) Width() int { return c.width }
func (c *capture) Height() int { return c.height }
func (c *capture) FPS() float64 { return c.fps }
func (c *capture) FrameCount() int { return c.count }

func (c *capture) Frame(pos int) (image.Image, error) {
	pos, err := resolve(pos, c.count)
	if err != nil {
		return nil, err
	}
	c.vc.Set(gocv.VideoCapturePosFrames, float64(pos))

	mat := gocv.NewMat()
	defer mat.Close()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		return nil, fmt.Errorf("could not read frame %d", pos)
	}
	return mat.ToImage()
}

func (c *capture) Close() error {
	return c.vc.Close()
}
