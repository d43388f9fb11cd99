// internal/gallery/paths.go
package gallery

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gallerykit/internal/models"
)

const (
	DirOriginals = "originals"
	DirThumbs    = "thumbnails"

	// DefaultImageID is the reserved image id of the placeholder shown when
	// no real image is available.
	DefaultImageID = "default"

	VersionOriginal = "original"
	VersionPreview  = "preview"
)

// PathResolver derives filesystem paths and public URLs from
// (ownerID, imageID, version) keys. It is pure apart from the mtime lookup
// used for the URL cache-busting suffix.
type PathResolver struct {
	cfg models.GalleryConfig
}

func NewPathResolver(cfg models.GalleryConfig) *PathResolver {
	return &PathResolver{cfg: cfg}
}

// VersionSubdir maps a version name onto one of the two physical subtrees.
// Every version except the original lives under thumbnails.
func (r *PathResolver) VersionSubdir(version string) string {
	if version == VersionOriginal {
		return DirOriginals
	}
	return DirThumbs
}

// RelativeFilePath builds the path below the version subtree. The default
// placeholder image has no owner segment; originals are flat files named by
// image id, while derived versions nest one directory deeper.
func (r *PathResolver) RelativeFilePath(ownerID, imageID, version string) string {
	var parts []string

	if imageID != DefaultImageID {
		parts = append(parts, ownerID)
	}

	if version != VersionOriginal {
		parts = append(parts, imageID, fmt.Sprintf("%s.%s", version, r.cfg.Extension))
	} else {
		parts = append(parts, fmt.Sprintf("%s.%s", imageID, r.cfg.Extension))
	}

	return filepath.Join(parts...)
}

// FilePath is the absolute location of a version file on disk.
func (r *PathResolver) FilePath(ownerID, imageID, version string) string {
	return filepath.Join(r.cfg.StoragePath, r.VersionSubdir(version), r.RelativeFilePath(ownerID, imageID, version))
}

// OwnerDir is an owner's directory under one of the two subtrees.
func (r *PathResolver) OwnerDir(subdir, ownerID string) string {
	return filepath.Join(r.cfg.StoragePath, subdir, ownerID)
}

// FileURL returns the public URL of an existing version file, or "" if the
// file is missing. When a cache-bust parameter is configured, a checksum of
// the file's mtime is appended so stale CDN copies fall out on change.
func (r *PathResolver) FileURL(ownerID, imageID, version string) string {
	info, err := os.Stat(r.FilePath(ownerID, imageID, version))
	if err != nil {
		return ""
	}

	suffix := ""
	if r.cfg.TimeHashParam != "" {
		sum := crc32.ChecksumIEEE([]byte(strconv.FormatInt(info.ModTime().Unix(), 10)))
		suffix = fmt.Sprintf("?%s=%d", r.cfg.TimeHashParam, sum)
	}

	url := strings.Join([]string{
		r.cfg.BaseURL,
		r.VersionSubdir(version),
		filepath.ToSlash(r.RelativeFilePath(ownerID, imageID, version)) + suffix,
	}, "/")

	if r.cfg.Host != "" {
		return r.cfg.Host + url
	}
	return url
}
