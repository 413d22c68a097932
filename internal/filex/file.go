// Package filex reads local files the CLI attaches to records.
package filex

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize caps medication photos.
const MaxImageSize = 5 << 20

var ErrNotAnImage = errors.New("file is not an image")

// Image is a file read from disk, ready for upload.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadImage loads path and sniffs its content type. Files larger than
// MaxImageSize or not starting with an image signature are rejected.
func ReadImage(path string) (*Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxImageSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, ErrNotAnImage
	}

	return &Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// EnsureDir creates dir (and parents) if missing and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}
