package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/TheCacophonyProject/track-heatmap/trajectory"
)

type Config struct {
	MovingColor    string  `yaml:"moving-color"`
	StaticColor    string  `yaml:"static-color"`
	Alpha          float64 `yaml:"alpha"`
	OverlayOpacity float64 `yaml:"overlay-opacity"`
	Chart          bool    `yaml:"chart"`
}

func DefaultConfig() Config {
	return Config{
		MovingColor:    "#ff0000",
		StaticColor:    "#0000ff",
		Alpha:          0.5,
		OverlayOpacity: 1,
		Chart:          true,
	}
}

func (c *Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return errors.New("alpha should be in the range (0, 1]")
	}
	if c.OverlayOpacity < 0 || c.OverlayOpacity > 1 {
		return errors.New("overlay-opacity should be in the range [0, 1]")
	}
	_, err := c.Palette()
	return err
}

// Palette holds the centre color of each class of point.
type Palette struct {
	Moving color.NRGBA
	Static color.NRGBA
}

func (p Palette) Color(c trajectory.Class) color.NRGBA {
	if c == trajectory.Static {
		return p.Static
	}
	return p.Moving
}

func DefaultPalette() Palette {
	conf := DefaultConfig()
	p, _ := conf.Palette()
	return p
}

// Palette builds the brush colors, applying the configured alpha.
func (c *Config) Palette() (Palette, error) {
	moving, err := ParseHexColor(c.MovingColor)
	if err != nil {
		return Palette{}, fmt.Errorf("moving-color: %v", err)
	}
	static, err := ParseHexColor(c.StaticColor)
	if err != nil {
		return Palette{}, fmt.Errorf("static-color: %v", err)
	}
	a := uint8(c.Alpha*255 + 0.5)
	moving.A = a
	static.A = a
	return Palette{Moving: moving, Static: static}, nil
}

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
