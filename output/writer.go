// Package output writes heatmap artifacts so that readers never see a
// partially written file.
package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/sys/unix"
)

const tempExt = ".temp"

// Artifact names.
const (
	SnapshotFile = "snapshot.png"
	HeatmapFile  = "heatmap.png"
	OverlayFile  = "overlay.png"
	ChartFile    = "heatmap.html"
	PointsFile   = "points.json"
)

var ErrNotEnoughSpace = errors.New("not enough free disk space")

// Writer writes artifacts into a single directory.
type Writer struct {
	dir          string
	minDiskSpace uint64
}

// NewWriter creates dir if needed and removes temp files left by an
// earlier run. minDiskSpace is in megabytes.
func NewWriter(dir string, minDiskSpace uint64) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := deleteTempFiles(dir); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, minDiskSpace: minDiskSpace}, nil
}

func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// CheckCanWrite fails if free space has dropped below the configured
// minimum.
func (w *Writer) CheckCanWrite() error {
	if w.minDiskSpace == 0 {
		return nil
	}
	enoughSpace, err := checkDiskSpace(w.minDiskSpace, w.dir)
	if err != nil {
		return fmt.Errorf("problem with checking disk space: %v", err)
	} else if !enoughSpace {
		return ErrNotEnoughSpace
	}
	return nil
}

// WriteWith streams an artifact through write. The file is created
// under a temporary name and only renamed into place once complete.
func (w *Writer) WriteWith(name string, write func(io.Writer) error) (string, error) {
	if err := w.CheckCanWrite(); err != nil {
		return "", err
	}

	tempName := w.Path(name + tempExt)
	f, err := os.Create(tempName)
	if err != nil {
		return "", err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		os.Remove(tempName)
		return "", err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tempName)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempName)
		return "", err
	}
	return renameTempFile(tempName)
}

func (w *Writer) WritePNG(name string, img image.Image) (string, error) {
	return w.WriteWith(name, func(out io.Writer) error {
		return png.Encode(out, img)
	})
}

func (w *Writer) WriteJSON(name string, v interface{}) (string, error) {
	return w.WriteWith(name, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// Remove deletes an artifact. Missing files are ignored.
func (w *Writer) Remove(name string) error {
	if err := os.Remove(w.Path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func renameTempFile(tempName string) (string, error) {
	finalName := artifactFinalName(tempName)
	if err := os.Rename(tempName, finalName); err != nil {
		os.Remove(tempName)
		return "", err
	}
	return finalName, nil
}

var reTempName = regexp.MustCompile(`(.+)\.temp$`)

func artifactFinalName(filename string) string {
	return reTempName.ReplaceAllString(filename, `$1`)
}

func deleteTempFiles(directory string) error {
	matches, _ := filepath.Glob(filepath.Join(directory, "*"+tempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}

func checkDiskSpace(mb uint64, dir string) (bool, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(dir, &fs); err != nil {
		return false, err
	}
	return fs.Bavail*uint64(fs.Bsize)/1024/1024 >= mb, nil
}
