// internal/models/models.go
package models

// Image is one row of the gallery_image table: identity and ordering
// metadata for a single gallery image. The binary assets themselves live
// on disk under the configured storage path.
type Image struct {
	ID          int64  `db:"id" json:"id"`
	OwnerType   string `db:"owner_type" json:"-"`
	OwnerID     string `db:"owner_id" json:"-"`
	Rank        int64  `db:"rank" json:"rank"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// ImageFields is a partial update of the mutable metadata columns.
// A nil pointer means "leave the column as is".
type ImageFields struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Empty reports whether the update carries no columns at all.
func (f ImageFields) Empty() bool {
	return f.Name == nil && f.Description == nil
}
