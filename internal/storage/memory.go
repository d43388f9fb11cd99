// internal/storage/memory.go
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"gallerykit/internal/models"
)

// MemoryStore keeps gallery rows in a map. It backs tests and the
// no-database development mode; semantics mirror the Postgres store,
// including the insert-then-rank two-step.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]models.Image
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int64]models.Image)}
}

func (s *MemoryStore) List(ctx context.Context, ownerType, ownerID string, dir SortDirection) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ownerType, ownerID, nil, dir), nil
}

func (s *MemoryStore) ListByIDs(ctx context.Context, ownerType, ownerID string, ids []int64, dir SortDirection) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make(map[int64]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	return s.collect(ownerType, ownerID, selected, dir), nil
}

func (s *MemoryStore) Insert(ctx context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	img.ID = s.nextID
	img.Rank = img.ID
	s.rows[img.ID] = *img

	logrus.WithFields(logrus.Fields{
		"image_id":   img.ID,
		"owner_type": img.OwnerType,
		"owner_id":   img.OwnerID,
	}).Debug("gallery image row inserted")

	return nil
}

func (s *MemoryStore) UpdateFields(ctx context.Context, id int64, fields models.ImageFields) error {
	if fields.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil
	}
	if fields.Name != nil {
		row.Name = *fields.Name
	}
	if fields.Description != nil {
		row.Description = *fields.Description
	}
	s.rows[id] = row
	return nil
}

func (s *MemoryStore) UpdateRank(ctx context.Context, id, rank int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.rows[id]; ok {
		row.Rank = rank
		s.rows[id] = row
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, id)
	return nil
}

// collect assumes the read lock is held.
func (s *MemoryStore) collect(ownerType, ownerID string, selected map[int64]bool, dir SortDirection) []models.Image {
	var images []models.Image
	for _, row := range s.rows {
		if row.OwnerType != ownerType || row.OwnerID != ownerID {
			continue
		}
		if selected != nil && !selected[row.ID] {
			continue
		}
		images = append(images, row)
	}

	sort.Slice(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if a.Rank == b.Rank {
			if dir == SortDesc {
				return a.ID > b.ID
			}
			return a.ID < b.ID
		}
		if dir == SortDesc {
			return a.Rank > b.Rank
		}
		return a.Rank < b.Rank
	})

	return images
}
