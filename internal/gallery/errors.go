// internal/gallery/errors.go
package gallery

import "errors"

var (
	// ErrUnsupportedKey is returned when the owner's primary key is not a
	// scalar value (composite keys are not supported).
	ErrUnsupportedKey = errors.New("gallery: composite owner key not supported")

	// ErrUnsupportedVersion is returned for a version name outside the
	// configured version set.
	ErrUnsupportedVersion = errors.New("gallery: unsupported image version")

	// ErrSourceUnreadable signals that the original file is missing or not
	// decodable. Callers fall back to the default placeholder image.
	ErrSourceUnreadable = errors.New("gallery: original image unreadable")

	// ErrNoData is returned when a reorder or metadata update is invoked
	// with an empty input set.
	ErrNoData = errors.New("gallery: no data to save")

	// ErrDirectoryExists is returned by the owner directory rename when the
	// destination already exists.
	ErrDirectoryExists = errors.New("gallery: destination directory already exists")
)
