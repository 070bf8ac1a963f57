// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/example/dayof/internal/core/errors"
	"github.com/example/dayof/internal/ports/secondary"
)

// DefaultMaxPhotoBytes caps a single photo.
const DefaultMaxPhotoBytes = 10 << 20

// PhotoSelector implements secondary.PhotoSelector by reading image files
// named on the command line.
type PhotoSelector struct {
	maxBytes int64
}

// NewPhotoSelector creates a selector. A non-positive maxBytes uses
// DefaultMaxPhotoBytes.
func NewPhotoSelector(maxBytes int64) *PhotoSelector {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}
	return &PhotoSelector{maxBytes: maxBytes}
}

var _ secondary.PhotoSelector = (*PhotoSelector)(nil)

// Select reads every path in order. Blank paths are skipped; any unreadable
// file or non-image content fails the whole selection.
func (s *PhotoSelector) Select(paths []string) ([]secondary.Photo, error) {
	photos := make([]secondary.Photo, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		photo, err := s.read(p)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func (s *PhotoSelector) read(path string) (secondary.Photo, error) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return secondary.Photo{}, apperrors.Validation("Photo not found: %s", path)
		}
		return secondary.Photo{}, apperrors.Validation("Cannot read photo %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return secondary.Photo{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return secondary.Photo{}, apperrors.Validation("%s is a directory, not a photo", path)
	}
	if info.Size() > s.maxBytes {
		return secondary.Photo{}, apperrors.Validation("%s is larger than %s", name, sizeLabel(s.maxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return secondary.Photo{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > s.maxBytes {
		return secondary.Photo{}, apperrors.Validation("%s is larger than %s", name, sizeLabel(s.maxBytes))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return secondary.Photo{}, apperrors.Validation("%s is not an image", name)
	}

	return secondary.Photo{Name: name, ContentType: contentType, Data: data}, nil
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
