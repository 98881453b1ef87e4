package repository

import (
	"context"

	"github.com/zazaborisovi/laptomania/internal/domain"
)

type LaptopRepository interface {
	Create(ctx context.Context, laptop *domain.Laptop) (*domain.Laptop, error)
	List(ctx context.Context) ([]*domain.Laptop, error)
	FindByID(ctx context.Context, id string) (*domain.Laptop, error)
	Update(ctx context.Context, laptop *domain.Laptop) (*domain.Laptop, error)
	// Delete removes the row and returns it so the caller can clean up
	// the externally-stored images.
	Delete(ctx context.Context, id string) (*domain.Laptop, error)
}

// LaptopCache fronts List with a shared cache. A miss returns ok=false;
// cache failures are soft (callers fall through to the repository).
type LaptopCache interface {
	Get(ctx context.Context) (laptops []*domain.Laptop, ok bool)
	Set(ctx context.Context, laptops []*domain.Laptop)
	Invalidate(ctx context.Context)
}
