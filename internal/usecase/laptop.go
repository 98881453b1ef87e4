package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/imagestore"
	"github.com/zazaborisovi/laptomania/internal/metrics"
	"github.com/zazaborisovi/laptomania/internal/repository"
	"golang.org/x/sync/errgroup"
)

type LaptopUsecase struct {
	laptops repository.LaptopRepository
	cache   repository.LaptopCache
	images  imagestore.Store
	logger  *slog.Logger
}

func NewLaptopUsecase(laptops repository.LaptopRepository, cache repository.LaptopCache, images imagestore.Store, logger *slog.Logger) *LaptopUsecase {
	return &LaptopUsecase{
		laptops: laptops,
		cache:   cache,
		images:  images,
		logger:  logger.With("component", "laptop_usecase"),
	}
}

// ImageUpload is one multipart file, already read off the wire.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type CreateLaptopInput struct {
	Brand       string
	Model       string
	Processor   string
	RAM         string
	Storage     string
	Graphics    string
	Display     string
	OS          string
	Price       float64
	Stock       int
	Description string
	IsAvailable *bool
}

func (u *LaptopUsecase) Create(ctx context.Context, input CreateLaptopInput, files []ImageUpload) (*domain.Laptop, error) {
	images, err := u.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	if input.Graphics == "" {
		input.Graphics = "Integrated"
	}
	if input.OS == "" {
		input.OS = "Windows 11"
	}
	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	laptop, err := u.laptops.Create(ctx, &domain.Laptop{
		Brand:       input.Brand,
		Model:       input.Model,
		Processor:   input.Processor,
		RAM:         input.RAM,
		Storage:     input.Storage,
		Graphics:    input.Graphics,
		Display:     input.Display,
		OS:          input.OS,
		Price:       input.Price,
		Stock:       input.Stock,
		Images:      images,
		Description: input.Description,
		IsAvailable: available,
	})
	if err != nil {
		u.destroyAll(ctx, images)
		return nil, fmt.Errorf("create laptop: %w", err)
	}

	u.cache.Invalidate(ctx)
	return laptop, nil
}

func (u *LaptopUsecase) List(ctx context.Context) ([]*domain.Laptop, error) {
	if laptops, ok := u.cache.Get(ctx); ok {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return laptops, nil
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	laptops, err := u.laptops.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list laptops: %w", err)
	}
	u.cache.Set(ctx, laptops)
	return laptops, nil
}

func (u *LaptopUsecase) GetByID(ctx context.Context, id string) (*domain.Laptop, error) {
	return u.laptops.FindByID(ctx, id)
}

// UpdateLaptopInput patches only the fields that are set.
type UpdateLaptopInput struct {
	Brand       *string
	Model       *string
	Processor   *string
	RAM         *string
	Storage     *string
	Graphics    *string
	Display     *string
	OS          *string
	Price       *float64
	Stock       *int
	Description *string
	IsAvailable *bool
}

func (u *LaptopUsecase) Update(ctx context.Context, id string, input UpdateLaptopInput, files []ImageUpload) (*domain.Laptop, error) {
	laptop, err := u.laptops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&laptop.Brand, input.Brand)
	applyString(&laptop.Model, input.Model)
	applyString(&laptop.Processor, input.Processor)
	applyString(&laptop.RAM, input.RAM)
	applyString(&laptop.Storage, input.Storage)
	applyString(&laptop.Graphics, input.Graphics)
	applyString(&laptop.Display, input.Display)
	applyString(&laptop.OS, input.OS)
	applyString(&laptop.Description, input.Description)
	if input.Price != nil {
		laptop.Price = *input.Price
	}
	if input.Stock != nil {
		laptop.Stock = *input.Stock
	}
	if input.IsAvailable != nil {
		laptop.IsAvailable = *input.IsAvailable
	}

	oldImages := laptop.Images
	if len(files) > 0 {
		images, err := u.uploadAll(ctx, files)
		if err != nil {
			return nil, err
		}
		laptop.Images = images
	}

	updated, err := u.laptops.Update(ctx, laptop)
	if err != nil {
		if len(files) > 0 {
			u.destroyAll(ctx, laptop.Images)
		}
		return nil, fmt.Errorf("update laptop: %w", err)
	}

	// New images are live; the replaced ones can go.
	if len(files) > 0 {
		u.destroyAll(ctx, oldImages)
	}

	u.cache.Invalidate(ctx)
	return updated, nil
}

func (u *LaptopUsecase) Delete(ctx context.Context, id string) error {
	laptop, err := u.laptops.Delete(ctx, id)
	if err != nil {
		return err
	}

	u.destroyAll(ctx, laptop.Images)
	u.cache.Invalidate(ctx)
	return nil
}

// uploadAll pushes every file to the image store in parallel. One
// failure fails the batch: anything already uploaded is destroyed and
// no catalog write proceeds with a partial image set.
func (u *LaptopUsecase) uploadAll(ctx context.Context, files []ImageUpload) ([]domain.LaptopImage, error) {
	images := make([]domain.LaptopImage, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			img, err := u.images.Upload(gctx, f.Filename, bytes.NewReader(f.Data))
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var uploaded []domain.LaptopImage
		for _, img := range images {
			if img.PublicID != "" {
				uploaded = append(uploaded, img)
			}
		}
		u.destroyAll(ctx, uploaded)
		metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
		u.logger.ErrorContext(ctx, "image batch upload", "error", err)
		return nil, domain.ErrUploadFailed
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Add(float64(len(files)))
	return images, nil
}

func (u *LaptopUsecase) destroyAll(ctx context.Context, images []domain.LaptopImage) {
	for _, img := range images {
		if err := u.images.Destroy(ctx, img.PublicID); err != nil {
			u.logger.WarnContext(ctx, "destroy image", "public_id", img.PublicID, "error", err)
		}
	}
}
