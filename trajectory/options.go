package trajectory

import "errors"

const (
	DefaultRadius    = 30
	DefaultStaticCap = 3
)

// Options controls the weight of each point and how many static points an
// object may contribute.
type Options struct {
	Radius    float64 `yaml:"radius"`
	StaticCap int     `yaml:"static-cap"`
}

func DefaultOptions() Options {
	return Options{
		Radius:    DefaultRadius,
		StaticCap: DefaultStaticCap,
	}
}

func (o *Options) Validate() error {
	if o.Radius <= 0 {
		return errors.New("radius should be greater than 0")
	}
	if o.StaticCap < 0 {
		return errors.New("static-cap can't be negative")
	}
	return nil
}
