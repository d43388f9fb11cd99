package gallery

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"gallerykit/internal/models"
)

func testConfig(t *testing.T) models.GalleryConfig {
	t.Helper()
	return models.GalleryConfig{
		StoragePath:       t.TempDir(),
		BaseURL:           "/files",
		Extension:         "jpg",
		TimeHashParam:     "_",
		PreviewWidth:      50,
		PreviewHeight:     50,
		OriginalMaxWidth:  200,
		OriginalMaxHeight: 150,
		Quality:           90,
	}
}

// writeSourceImage encodes a flat JPEG of the given size and returns its
// path.
func writeSourceImage(t *testing.T, width, height int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.jpg")
	img := imaging.New(width, height, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("writing source image: %v", err)
	}
	return path
}
