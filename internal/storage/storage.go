// internal/storage/storage.go
package storage

import (
	"context"

	"gallerykit/internal/models"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// GalleryStore is the persistence contract for gallery image rows. All
// reads and writes are scoped to one (ownerType, ownerID) pair; there is
// no cross-owner listing.
type GalleryStore interface {
	// List returns the owner's images ordered by rank.
	List(ctx context.Context, ownerType, ownerID string, sort SortDirection) ([]models.Image, error)

	// ListByIDs returns the subset of the owner's images whose ids are in
	// the given set, ordered by rank ascending.
	ListByIDs(ctx context.Context, ownerType, ownerID string, ids []int64, sort SortDirection) ([]models.Image, error)

	// Insert stores a new row and then sets rank := id (two statements,
	// because the id is assigned by the store). The assigned id and rank
	// are written back into img.
	Insert(ctx context.Context, img *models.Image) error

	// UpdateFields applies a partial metadata update. An empty field set
	// issues no statement.
	UpdateFields(ctx context.Context, id int64, fields models.ImageFields) error

	UpdateRank(ctx context.Context, id, rank int64) error

	Delete(ctx context.Context, id int64) error
}
