// internal/gallery/engine.go
package gallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"gallerykit/internal/models"
	"gallerykit/internal/storage"
)

// Owner identifies the entity a gallery is attached to: a type
// discriminator plus a scalar key. Composite keys are rejected by the
// engine with ErrUnsupportedKey.
type Owner interface {
	GalleryType() string
	GalleryKey() interface{}
}

// UploadProvider is an optional Owner capability: temp-file paths of
// freshly submitted uploads, consumed by OnCreated and OnUpdated.
type UploadProvider interface {
	PendingUploads() []string
}

// ArrangeEntry is one image's desired rank in a reorder request. A zero
// rank means "keep the image's own id as its rank". Entry order matters:
// the sorted rank values are reassigned back in input order.
type ArrangeEntry struct {
	ID   int64 `json:"id"`
	Rank int64 `json:"rank"`
}

// Engine owns the full gallery lifecycle for a single owner: row
// bookkeeping through the store, version files through the generator, and
// the listing cache. An Engine is request-scoped and not safe for
// concurrent use.
//
// The owning application must call the lifecycle methods at the matching
// points of the owner entity's life: OnLoaded after read, OnCreated after
// insert, OnUpdated after every update, OnBeforeDelete before delete.
type Engine struct {
	store    storage.GalleryStore
	owner    Owner
	paths    *PathResolver
	versions *VersionGenerator

	// Listing snapshot for this engine instance; nil until the first
	// listing, updated only by mutations routed through this instance.
	images []models.Image

	// Owner key as of the last OnLoaded; a differing key on OnUpdated
	// triggers the storage directory rename.
	loadedKey string
}

// NewEngine wires an engine for one owner. Version overrides extend or
// replace the built-in original/preview transforms.
func NewEngine(cfg models.GalleryConfig, store storage.GalleryStore, owner Owner, overrides map[string]Transform) *Engine {
	cfg.ApplyDefaults()
	paths := NewPathResolver(cfg)
	return &Engine{
		store:    store,
		owner:    owner,
		paths:    paths,
		versions: NewVersionGenerator(cfg, paths, overrides),
	}
}

// Paths exposes the engine's resolver, mainly for callers that need raw
// file locations (e.g. static serving setup).
func (e *Engine) Paths() *PathResolver {
	return e.paths
}

// ownerKey coerces the owner's key into its string form, rejecting
// anything that is not a scalar.
func (e *Engine) ownerKey() (string, error) {
	const op = "gallery.ownerKey"

	switch k := e.owner.GalleryKey().(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	case int32:
		return strconv.FormatInt(int64(k), 10), nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case uint:
		return strconv.FormatUint(uint64(k), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(k), 10), nil
	case uint64:
		return strconv.FormatUint(k, 10), nil
	case fmt.Stringer:
		return k.String(), nil
	default:
		return "", fmt.Errorf("%s: %w (got %T)", op, ErrUnsupportedKey, k)
	}
}

func imageKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Images returns the owner's images ordered by rank. The first call loads
// from the store; later calls serve the cached snapshot.
func (e *Engine) Images(ctx context.Context, dir storage.SortDirection) ([]models.Image, error) {
	const op = "gallery.Images"

	if e.images != nil {
		return e.images, nil
	}

	key, err := e.ownerKey()
	if err != nil {
		return nil, err
	}

	images, err := e.store.List(ctx, e.owner.GalleryType(), key, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	if images == nil {
		images = []models.Image{}
	}
	e.images = images

	return e.images, nil
}

// AddImage inserts a row (rank = id), generates the original version from
// the given source file, and appends to the listing cache if populated.
// A source that cannot be decoded still leaves a valid row; its URLs fall
// back to the placeholder until the image is replaced.
func (e *Engine) AddImage(ctx context.Context, sourceFile string, fields models.ImageFields) (*models.Image, error) {
	const op = "gallery.AddImage"

	key, err := e.ownerKey()
	if err != nil {
		return nil, err
	}

	img := &models.Image{
		OwnerType: e.owner.GalleryType(),
		OwnerID:   key,
	}
	if fields.Name != nil {
		img.Name = *fields.Name
	}
	if fields.Description != nil {
		img.Description = *fields.Description
	}

	if err := e.store.Insert(ctx, img); err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	if err := e.ReplaceImage(img.ID, sourceFile); err != nil && !errors.Is(err, ErrSourceUnreadable) {
		return nil, err
	}

	if e.images != nil {
		e.images = append(e.images, *img)
	}

	return img, nil
}

// ReplaceImage discards every derived file of the image and regenerates
// the original from the new source. Other versions reappear lazily from
// the new original on next access.
func (e *Engine) ReplaceImage(imageID int64, sourceFile string) error {
	key, err := e.ownerKey()
	if err != nil {
		return err
	}

	e.deleteVersionFiles(key, imageID)

	_, err = e.versions.Generate(key, imageKey(imageID), VersionOriginal, sourceFile)
	return err
}

// DeleteImage removes all version files, the per-image directory, and the
// database row.
func (e *Engine) DeleteImage(ctx context.Context, imageID int64) error {
	const op = "gallery.DeleteImage"

	key, err := e.ownerKey()
	if err != nil {
		return err
	}

	e.deleteVersionFiles(key, imageID)

	// Owner directory under originals goes away with the last image;
	// non-empty is fine.
	os.Remove(filepath.Dir(e.paths.FilePath(key, imageKey(imageID), VersionOriginal)))

	if err := e.store.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}
	return nil
}

// DeleteAllImages batch-deletes by id and drops the removed entries from
// the listing cache.
func (e *Engine) DeleteAllImages(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := e.DeleteImage(ctx, id); err != nil {
			return err
		}
	}

	if e.images != nil {
		removed := make(map[int64]bool, len(ids))
		for _, id := range ids {
			removed[id] = true
		}
		kept := e.images[:0]
		for _, img := range e.images {
			if !removed[img.ID] {
				kept = append(kept, img)
			}
		}
		e.images = kept
	}

	return nil
}

// DeleteAllForOwner removes every image of the owner and the owner's now
// empty directories. Call it before deleting the owner entity.
func (e *Engine) DeleteAllForOwner(ctx context.Context) error {
	key, err := e.ownerKey()
	if err != nil {
		return err
	}

	images, err := e.Images(ctx, storage.SortAsc)
	if err != nil {
		return err
	}

	for _, img := range images {
		if err := e.DeleteImage(ctx, img.ID); err != nil {
			return err
		}
	}

	os.Remove(e.paths.OwnerDir(DirOriginals, key))
	os.Remove(e.paths.OwnerDir(DirThumbs, key))

	e.images = []models.Image{}
	return nil
}

// deleteVersionFiles unlinks every version file of an image and removes
// its thumbnail directory. Missing files count as already deleted.
func (e *Engine) deleteVersionFiles(ownerID string, imageID int64) {
	id := imageKey(imageID)
	thumbDir := filepath.Dir(e.paths.FilePath(ownerID, id, VersionPreview))

	for _, version := range e.versions.Names() {
		path := e.paths.FilePath(ownerID, id, version)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{"path": path, "error": err}).Debug("gallery version file not removed")
		}
	}

	os.Remove(thumbDir)
}

// Arrange normalizes the requested ranks and persists them. Rank values
// (own id where unset) are collected, sorted in the requested direction,
// and reassigned to the ids in the order the entries were given. That
// input-order reassignment is deliberate: it decides the final ordering
// whenever the request is not already sorted by id.
func (e *Engine) Arrange(ctx context.Context, order []ArrangeEntry, dir storage.SortDirection) ([]ArrangeEntry, error) {
	const op = "gallery.Arrange"

	if len(order) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoData)
	}

	ranks := make([]int64, len(order))
	for i, entry := range order {
		if entry.Rank == 0 {
			order[i].Rank = entry.ID
		}
		ranks[i] = order[i].Rank
	}

	if dir == storage.SortDesc {
		sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })
	} else {
		sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
	}

	for i, entry := range order {
		if err := e.store.UpdateRank(ctx, entry.ID, ranks[i]); err != nil {
			return nil, fmt.Errorf("%s: %v", op, err)
		}
		order[i].Rank = ranks[i]
	}

	// Ranks changed underneath the snapshot; reload on next listing.
	e.images = nil

	return order, nil
}

// UpdateImagesData applies name/description changes to the owner's images
// matching the given ids and returns the affected records in store order.
// Ids outside the owner's gallery are ignored.
func (e *Engine) UpdateImagesData(ctx context.Context, data map[int64]models.ImageFields) ([]models.Image, error) {
	const op = "gallery.UpdateImagesData"

	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoData)
	}

	var targets []models.Image
	if e.images != nil {
		for _, img := range e.images {
			if _, ok := data[img.ID]; ok {
				targets = append(targets, img)
			}
		}
	} else {
		key, err := e.ownerKey()
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(data))
		for id := range data {
			ids = append(ids, id)
		}
		targets, err = e.store.ListByIDs(ctx, e.owner.GalleryType(), key, ids, storage.SortAsc)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", op, err)
		}
	}

	for i := range targets {
		fields := data[targets[i].ID]
		if err := e.store.UpdateFields(ctx, targets[i].ID, fields); err != nil {
			return nil, fmt.Errorf("%s: %v", op, err)
		}
		if fields.Name != nil {
			targets[i].Name = *fields.Name
		}
		if fields.Description != nil {
			targets[i].Description = *fields.Description
		}
	}

	if e.images != nil {
		updated := make(map[int64]models.Image, len(targets))
		for _, img := range targets {
			updated[img.ID] = img
		}
		for i := range e.images {
			if img, ok := updated[e.images[i].ID]; ok {
				e.images[i] = img
			}
		}
	}

	return targets, nil
}

// ImageURL resolves the public URL of one version of an image, generating
// the file on first access. A nil record, an unreadable original, or any
// other failure falls back to the placeholder URL; this never returns an
// error.
func (e *Engine) ImageURL(img *models.Image, version string) string {
	if img == nil {
		return e.DefaultImageURL(version)
	}

	key, err := e.ownerKey()
	if err != nil {
		return e.DefaultImageURL(version)
	}

	if _, err := e.versions.Ensure(key, imageKey(img.ID), version); err != nil {
		return e.DefaultImageURL(version)
	}

	return e.paths.FileURL(key, imageKey(img.ID), version)
}

// DefaultImageURL resolves the placeholder's URL for a version, creating
// the placeholder original first if this storage root has never served
// one. Returns "" only if even the placeholder cannot be produced.
func (e *Engine) DefaultImageURL(version string) string {
	if err := e.versions.ensurePlaceholderOriginal(); err != nil {
		logrus.WithField("error", err).Warn("placeholder original unavailable")
	}

	if _, err := e.versions.Ensure("", DefaultImageID, version); err != nil {
		return ""
	}

	return e.paths.FileURL("", DefaultImageID, version)
}

// OnLoaded snapshots the owner's key so a later OnUpdated can detect a key
// change. Call it right after the owner entity is read.
func (e *Engine) OnLoaded() error {
	key, err := e.ownerKey()
	if err != nil {
		return err
	}
	e.loadedKey = key
	return nil
}

// OnCreated runs pending-upload intake for a freshly inserted owner.
func (e *Engine) OnCreated(ctx context.Context) error {
	return e.handleUploads(ctx)
}

// OnUpdated renames the owner's storage directories when the key changed
// since OnLoaded, then runs pending-upload intake.
func (e *Engine) OnUpdated(ctx context.Context) error {
	key, err := e.ownerKey()
	if err != nil {
		return err
	}

	if e.loadedKey != "" && e.loadedKey != key {
		if err := e.renameOwnerDirs(e.loadedKey, key); err != nil {
			return err
		}
		e.loadedKey = key
	}

	return e.handleUploads(ctx)
}

// OnBeforeDelete cascades the owner deletion to the gallery.
func (e *Engine) OnBeforeDelete(ctx context.Context) error {
	return e.DeleteAllForOwner(ctx)
}

// renameOwnerDirs moves both subtrees of an owner to the new key. A
// missing source means nothing to move; an existing destination is a
// conflict and aborts with ErrDirectoryExists before anything is renamed.
func (e *Engine) renameOwnerDirs(oldKey, newKey string) error {
	const op = "gallery.renameOwnerDirs"

	for _, subdir := range []string{DirOriginals, DirThumbs} {
		if _, err := os.Stat(e.paths.OwnerDir(subdir, oldKey)); err != nil {
			continue
		}
		if _, err := os.Stat(e.paths.OwnerDir(subdir, newKey)); err == nil {
			return fmt.Errorf("%s: %w: %s", op, ErrDirectoryExists, e.paths.OwnerDir(subdir, newKey))
		}
	}

	for _, subdir := range []string{DirOriginals, DirThumbs} {
		src := e.paths.OwnerDir(subdir, oldKey)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, e.paths.OwnerDir(subdir, newKey)); err != nil {
			return fmt.Errorf("%s: %v", op, err)
		}
	}

	return nil
}

func (e *Engine) handleUploads(ctx context.Context) error {
	up, ok := e.owner.(UploadProvider)
	if !ok {
		return nil
	}

	for _, path := range up.PendingUploads() {
		if _, err := e.AddImage(ctx, path, models.ImageFields{}); err != nil {
			return err
		}
	}
	return nil
}
