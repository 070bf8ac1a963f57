package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/example/dayof/internal/core/errors"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestPhotoSelector_Select(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "arrival.png", pngHeader)
	b := writeFile(t, dir, "setup.png", pngHeader)

	photos, err := NewPhotoSelector(0).Select([]string{a, "  ", b})

	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "arrival.png", photos[0].Name)
	assert.Equal(t, "image/png", photos[0].ContentType)
	assert.Equal(t, pngHeader, photos[1].Data)
}

func TestPhotoSelector_Rejects(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "notes.txt", []byte("not a photo"))
	big := writeFile(t, dir, "big.png", append(pngHeader, make([]byte, 64)...))

	tests := []struct {
		name    string
		sel     *PhotoSelector
		path    string
		wantMsg string
	}{
		{"missing", NewPhotoSelector(0), filepath.Join(dir, "nope.png"), "Photo not found: " + filepath.Join(dir, "nope.png")},
		{"directory", NewPhotoSelector(0), dir, dir + " is a directory, not a photo"},
		{"not an image", NewPhotoSelector(0), text, "notes.txt is not an image"},
		{"too large", NewPhotoSelector(32), big, "big.png is larger than 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sel.Select([]string{tt.path})

			var validation *apperrors.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.wantMsg, validation.Message)
		})
	}
}

func TestPhotoSelector_Empty(t *testing.T) {
	photos, err := NewPhotoSelector(0).Select(nil)

	require.NoError(t, err)
	assert.Empty(t, photos)
}
