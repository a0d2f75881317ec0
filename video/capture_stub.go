//go:build !opencv

package video

import "fmt"

func openCapture(path string) (Source, error) {
	return nil, fmt.Errorf("%w: %s (build with -tags opencv)", ErrUnsupported, path)
}
