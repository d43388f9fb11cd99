// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"gallerykit/internal/models"
)

type Storage struct {
	pool *pgxpool.Pool
	db   *sql.DB // For migrations
}

func NewStorage(dsn string) (*Storage, error) {
	const op = "storage.NewStorage"

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := runMigrations(db); err != nil {
		db.Close()
		pool.Close()
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	return &Storage{pool: pool, db: db}, nil
}

func (s *Storage) Close() {
	s.db.Close()
	s.pool.Close()
}

func (s *Storage) List(ctx context.Context, ownerType, ownerID string, sort SortDirection) ([]models.Image, error) {
	const op = "storage.List"

	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(owner_type, ''), owner_id, rank, COALESCE(name, ''), COALESCE(description, '')
		 FROM gallery_image WHERE owner_type = $1 AND owner_id = $2
		 ORDER BY rank `+orderBy(sort),
		ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	defer rows.Close()

	return scanImages(rows, op)
}

func (s *Storage) ListByIDs(ctx context.Context, ownerType, ownerID string, ids []int64, sort SortDirection) ([]models.Image, error) {
	const op = "storage.ListByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(owner_type, ''), owner_id, rank, COALESCE(name, ''), COALESCE(description, '')
		 FROM gallery_image WHERE owner_type = $1 AND owner_id = $2 AND id = ANY($3)
		 ORDER BY rank `+orderBy(sort),
		ownerType, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	defer rows.Close()

	return scanImages(rows, op)
}

func (s *Storage) Insert(ctx context.Context, img *models.Image) error {
	const op = "storage.Insert"

	err := s.pool.QueryRow(ctx,
		`INSERT INTO gallery_image (owner_type, owner_id, rank, name, description)
		 VALUES ($1, $2, 0, $3, $4) RETURNING id`,
		img.OwnerType, img.OwnerID, img.Name, img.Description).Scan(&img.ID)
	if err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}

	// Rank defaults to the row's own id; it only becomes distinct from the
	// id after an explicit reorder.
	if err := s.UpdateRank(ctx, img.ID, img.ID); err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}
	img.Rank = img.ID

	return nil
}

func (s *Storage) UpdateFields(ctx context.Context, id int64, fields models.ImageFields) error {
	const op = "storage.UpdateFields"

	if fields.Empty() {
		return nil
	}

	set := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	args = append(args, id)
	if fields.Name != nil {
		args = append(args, *fields.Name)
		set = append(set, fmt.Sprintf("name = $%d", len(args)))
	}
	if fields.Description != nil {
		args = append(args, *fields.Description)
		set = append(set, fmt.Sprintf("description = $%d", len(args)))
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE gallery_image SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}
	return nil
}

func (s *Storage) UpdateRank(ctx context.Context, id, rank int64) error {
	const op = "storage.UpdateRank"

	_, err := s.pool.Exec(ctx, `UPDATE gallery_image SET rank = $2 WHERE id = $1`, id, rank)
	if err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	const op = "storage.Delete"

	_, err := s.pool.Exec(ctx, `DELETE FROM gallery_image WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}
	return nil
}

func orderBy(sort SortDirection) string {
	if sort == SortDesc {
		return "DESC"
	}
	return "ASC"
}

func scanImages(rows pgx.Rows, op string) ([]models.Image, error) {
	var images []models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.OwnerType, &img.OwnerID, &img.Rank, &img.Name, &img.Description); err != nil {
			return nil, fmt.Errorf("%s: %v", op, err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	return images, nil
}
