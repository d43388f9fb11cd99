package gallery

import (
	"errors"
	"image"
	"os"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func TestEnsureUnsupportedVersion(t *testing.T) {
	cfg := testConfig(t)
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	_, err := g.Ensure("42", "7", "nope")
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("Ensure() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestEnsureMissingOriginalIsSoft(t *testing.T) {
	cfg := testConfig(t)
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	_, err := g.Ensure("42", "7", VersionPreview)
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("Ensure() error = %v, want ErrSourceUnreadable", err)
	}
}

func TestGenerateOriginalDownscales(t *testing.T) {
	cfg := testConfig(t) // bounds 200x150
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	src := writeSourceImage(t, 400, 300)
	path, err := g.Generate("42", "7", VersionOriginal, src)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("opening generated original: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 200 || h != 150 {
		t.Errorf("original size = %dx%d, want 200x150", w, h)
	}
}

func TestGenerateOriginalNoUpscale(t *testing.T) {
	cfg := testConfig(t)
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	src := writeSourceImage(t, 80, 60)
	path, err := g.Generate("42", "7", VersionOriginal, src)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("opening generated original: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 80 || h != 60 {
		t.Errorf("original size = %dx%d, want 80x60 (no upscaling)", w, h)
	}
}

func TestEnsurePreviewFromOriginal(t *testing.T) {
	cfg := testConfig(t)
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	src := writeSourceImage(t, 400, 300)
	if _, err := g.Generate("42", "7", VersionOriginal, src); err != nil {
		t.Fatalf("Generate(original) failed: %v", err)
	}

	path, err := g.Ensure("42", "7", VersionPreview)
	if err != nil {
		t.Fatalf("Ensure(preview) failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("opening preview: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 50 || h != 50 {
		t.Errorf("preview size = %dx%d, want 50x50", w, h)
	}
}

func TestEnsureIsLazyAndIdempotent(t *testing.T) {
	cfg := testConfig(t)
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	src := writeSourceImage(t, 400, 300)
	if _, err := g.Generate("42", "7", VersionOriginal, src); err != nil {
		t.Fatalf("Generate(original) failed: %v", err)
	}

	path, err := g.Ensure("42", "7", VersionPreview)
	if err != nil {
		t.Fatalf("first Ensure(preview) failed: %v", err)
	}

	// Stamp the file with a sentinel mtime; a second Ensure must be a pure
	// read and leave it untouched.
	sentinel := time.Now().Add(-24 * time.Hour)
	if err := os.Chtimes(path, sentinel, sentinel); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	again, err := g.Ensure("42", "7", VersionPreview)
	if err != nil {
		t.Fatalf("second Ensure(preview) failed: %v", err)
	}
	if again != path {
		t.Errorf("second Ensure path = %q, want %q", again, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(sentinel) {
		t.Error("second Ensure regenerated the file, want cache hit")
	}
}

func TestVersionOverride(t *testing.T) {
	cfg := testConfig(t)
	overrides := map[string]Transform{
		"small": func(img image.Image) image.Image {
			return imaging.Resize(img, 20, 0, imaging.Lanczos)
		},
	}
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), overrides)

	src := writeSourceImage(t, 400, 300)
	if _, err := g.Generate("42", "7", VersionOriginal, src); err != nil {
		t.Fatalf("Generate(original) failed: %v", err)
	}

	path, err := g.Ensure("42", "7", "small")
	if err != nil {
		t.Fatalf("Ensure(small) failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("opening small version: %v", err)
	}
	if w := img.Bounds().Dx(); w != 20 {
		t.Errorf("small width = %d, want 20", w)
	}
}

func TestPlaceholderOriginalSynthesized(t *testing.T) {
	cfg := testConfig(t)
	g := NewVersionGenerator(cfg, NewPathResolver(cfg), nil)

	if err := g.ensurePlaceholderOriginal(); err != nil {
		t.Fatalf("ensurePlaceholderOriginal() failed: %v", err)
	}

	path := g.paths.FilePath("", DefaultImageID, VersionOriginal)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("placeholder original missing: %v", err)
	}

	if _, err := imaging.Open(path); err != nil {
		t.Errorf("placeholder original not decodable: %v", err)
	}

	// Derived placeholder versions come from the normal lazy path.
	if _, err := g.Ensure("", DefaultImageID, VersionPreview); err != nil {
		t.Errorf("Ensure(default preview) failed: %v", err)
	}
}
