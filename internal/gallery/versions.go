// internal/gallery/versions.go
package gallery

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"gallerykit/internal/models"
)

// Transform produces a derived rendition from a decoded original. It must
// not be nil; the input image is shared between versions and must not be
// modified in place (imaging operations always return a copy).
type Transform func(image.Image) image.Image

// VersionGenerator materializes named versions on disk. Existence of the
// target file is the cache signal: a version is generated at most once
// until its file is deleted.
type VersionGenerator struct {
	paths    *PathResolver
	versions map[string]Transform
	quality  int
}

// NewVersionGenerator builds the version set from the built-in original and
// preview transforms plus any overrides. An override under a built-in name
// replaces it.
func NewVersionGenerator(cfg models.GalleryConfig, paths *PathResolver, overrides map[string]Transform) *VersionGenerator {
	versions := map[string]Transform{
		VersionOriginal: fitWithin(cfg.OriginalMaxWidth, cfg.OriginalMaxHeight),
		VersionPreview: func(img image.Image) image.Image {
			return imaging.Thumbnail(img, cfg.PreviewWidth, cfg.PreviewHeight, imaging.Lanczos)
		},
	}
	for name, fn := range overrides {
		versions[name] = fn
	}

	return &VersionGenerator{
		paths:    paths,
		versions: versions,
		quality:  cfg.Quality,
	}
}

// fitWithin downscales to fit the bounding box, preserving aspect ratio.
// An image already within bounds passes through untouched; there is no
// upscaling.
func fitWithin(maxWidth, maxHeight int) Transform {
	return func(img image.Image) image.Image {
		b := img.Bounds()
		if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
			return img
		}
		return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}
}

// Names returns the configured version names.
func (g *VersionGenerator) Names() []string {
	names := make([]string, 0, len(g.versions))
	for name := range g.versions {
		names = append(names, name)
	}
	return names
}

// Ensure returns the path of the requested version, generating it from the
// stored original on a cache miss.
func (g *VersionGenerator) Ensure(ownerID, imageID, version string) (string, error) {
	const op = "gallery.Ensure"

	if _, ok := g.versions[version]; !ok {
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnsupportedVersion, version)
	}

	target := g.paths.FilePath(ownerID, imageID, version)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	return g.Generate(ownerID, imageID, version, g.paths.FilePath(ownerID, imageID, VersionOriginal))
}

// Generate produces one version from the given source file, creating any
// missing directories. An unreadable source yields ErrSourceUnreadable so
// callers can fall back to the placeholder instead of failing the request.
func (g *VersionGenerator) Generate(ownerID, imageID, version, sourcePath string) (string, error) {
	const op = "gallery.Generate"

	fn, ok := g.versions[version]
	if !ok {
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnsupportedVersion, version)
	}

	src, err := imaging.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrSourceUnreadable, err)
	}

	// Pre-create the preview directory too: it is almost always the next
	// version requested for a fresh image.
	g.createFolder(g.paths.FilePath(ownerID, imageID, version))
	g.createFolder(g.paths.FilePath(ownerID, imageID, VersionPreview))

	target := g.paths.FilePath(ownerID, imageID, version)
	if err := imaging.Save(fn(src), target, imaging.JPEGQuality(g.quality)); err != nil {
		return "", fmt.Errorf("%s: %v", op, err)
	}

	return target, nil
}

// createFolder makes the parent directory of filePath. A lost create race
// is retried once and otherwise ignored; the next write surfaces any real
// problem.
func (g *VersionGenerator) createFolder(filePath string) {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); err == nil {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		os.MkdirAll(dir, 0755)
	}
}
