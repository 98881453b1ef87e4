package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zazaborisovi/laptomania/internal/domain"
)

const laptopColumns = `id, brand, model, processor, ram, storage, graphics,
	display, os, price, stock, description, is_available, created_at, updated_at`

type LaptopRepository struct {
	pool *pgxpool.Pool
}

func NewLaptopRepository(pool *pgxpool.Pool) *LaptopRepository {
	return &LaptopRepository{pool: pool}
}

func (r *LaptopRepository) Create(ctx context.Context, laptop *domain.Laptop) (*domain.Laptop, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO laptops (
			brand, model, processor, ram, storage, graphics,
			display, os, price, stock, description, is_available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + laptopColumns

	row := tx.QueryRow(ctx, query,
		laptop.Brand,
		laptop.Model,
		laptop.Processor,
		laptop.RAM,
		laptop.Storage,
		laptop.Graphics,
		laptop.Display,
		laptop.OS,
		laptop.Price,
		laptop.Stock,
		laptop.Description,
		laptop.IsAvailable,
	)
	created, err := scanLaptop(row)
	if err != nil {
		return nil, err
	}

	if err := replaceImages(ctx, tx, created.ID, laptop.Images); err != nil {
		return nil, err
	}
	created.Images = laptop.Images

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

func (r *LaptopRepository) List(ctx context.Context) ([]*domain.Laptop, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+laptopColumns+` FROM laptops ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list laptops: %w", err)
	}
	defer rows.Close()

	var laptops []*domain.Laptop
	byID := make(map[string]*domain.Laptop)
	for rows.Next() {
		l, err := scanLaptop(rows)
		if err != nil {
			return nil, err
		}
		laptops = append(laptops, l)
		byID[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list laptops: %w", err)
	}

	imgRows, err := r.pool.Query(ctx,
		`SELECT laptop_id, public_id, url FROM laptop_images ORDER BY laptop_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list laptop images: %w", err)
	}
	defer imgRows.Close()

	for imgRows.Next() {
		var laptopID string
		var img domain.LaptopImage
		if err := imgRows.Scan(&laptopID, &img.PublicID, &img.URL); err != nil {
			return nil, fmt.Errorf("scan laptop image: %w", err)
		}
		if l, ok := byID[laptopID]; ok {
			l.Images = append(l.Images, img)
		}
	}
	return laptops, imgRows.Err()
}

func (r *LaptopRepository) FindByID(ctx context.Context, id string) (*domain.Laptop, error) {
	laptop, err := scanLaptop(r.pool.QueryRow(ctx,
		`SELECT `+laptopColumns+` FROM laptops WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	images, err := r.loadImages(ctx, id)
	if err != nil {
		return nil, err
	}
	laptop.Images = images
	return laptop, nil
}

func (r *LaptopRepository) Update(ctx context.Context, laptop *domain.Laptop) (*domain.Laptop, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE laptops
		SET    brand = $2, model = $3, processor = $4, ram = $5,
		       storage = $6, graphics = $7, display = $8, os = $9,
		       price = $10, stock = $11, description = $12,
		       is_available = $13, updated_at = NOW()
		WHERE  id = $1
		RETURNING ` + laptopColumns

	row := tx.QueryRow(ctx, query,
		laptop.ID,
		laptop.Brand,
		laptop.Model,
		laptop.Processor,
		laptop.RAM,
		laptop.Storage,
		laptop.Graphics,
		laptop.Display,
		laptop.OS,
		laptop.Price,
		laptop.Stock,
		laptop.Description,
		laptop.IsAvailable,
	)
	updated, err := scanLaptop(row)
	if err != nil {
		return nil, err
	}

	if err := replaceImages(ctx, tx, updated.ID, laptop.Images); err != nil {
		return nil, err
	}
	updated.Images = laptop.Images

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

func (r *LaptopRepository) Delete(ctx context.Context, id string) (*domain.Laptop, error) {
	images, err := r.loadImages(ctx, id)
	if err != nil {
		return nil, err
	}

	// laptop_images rows go with the laptop via ON DELETE CASCADE.
	laptop, err := scanLaptop(r.pool.QueryRow(ctx,
		`DELETE FROM laptops WHERE id = $1 RETURNING `+laptopColumns, id))
	if err != nil {
		return nil, err
	}
	laptop.Images = images
	return laptop, nil
}

func (r *LaptopRepository) loadImages(ctx context.Context, laptopID string) ([]domain.LaptopImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT public_id, url FROM laptop_images WHERE laptop_id = $1 ORDER BY position`, laptopID)
	if err != nil {
		return nil, fmt.Errorf("load laptop images: %w", err)
	}
	defer rows.Close()

	var images []domain.LaptopImage
	for rows.Next() {
		var img domain.LaptopImage
		if err := rows.Scan(&img.PublicID, &img.URL); err != nil {
			return nil, fmt.Errorf("scan laptop image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func replaceImages(ctx context.Context, tx pgx.Tx, laptopID string, images []domain.LaptopImage) error {
	if _, err := tx.Exec(ctx, `DELETE FROM laptop_images WHERE laptop_id = $1`, laptopID); err != nil {
		return fmt.Errorf("delete laptop images: %w", err)
	}
	for i, img := range images {
		_, err := tx.Exec(ctx,
			`INSERT INTO laptop_images (laptop_id, public_id, url, position) VALUES ($1, $2, $3, $4)`,
			laptopID, img.PublicID, img.URL, i)
		if err != nil {
			return fmt.Errorf("insert laptop image: %w", err)
		}
	}
	return nil
}

func scanLaptop(row pgx.Row) (*domain.Laptop, error) {
	var l domain.Laptop
	err := row.Scan(
		&l.ID,
		&l.Brand,
		&l.Model,
		&l.Processor,
		&l.RAM,
		&l.Storage,
		&l.Graphics,
		&l.Display,
		&l.OS,
		&l.Price,
		&l.Stock,
		&l.Description,
		&l.IsAvailable,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLaptopNotFound
		}
		return nil, fmt.Errorf("scan laptop: %w", err)
	}
	return &l, nil
}
