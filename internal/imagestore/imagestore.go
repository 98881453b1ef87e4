package imagestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/zazaborisovi/laptomania/internal/domain"
)

// folder groups all product images on the external store.
const folder = "laptops"

type Store interface {
	Upload(ctx context.Context, filename string, r io.Reader) (domain.LaptopImage, error)
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryStore hosts images on Cloudinary — used in staging/production.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, filename string, r io.Reader) (domain.LaptopImage, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		PublicID:     filename,
		ResourceType: "image",
	})
	if err != nil {
		return domain.LaptopImage{}, fmt.Errorf("upload %q: %w", filename, err)
	}
	return domain.LaptopImage{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy %q: %w", publicID, err)
	}
	return nil
}

// LogStore fakes uploads and logs them — used in ENV=local so dev does
// not need Cloudinary credentials.
type LogStore struct {
	logger *slog.Logger
}

func (s *LogStore) Upload(ctx context.Context, filename string, r io.Reader) (domain.LaptopImage, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return domain.LaptopImage{}, fmt.Errorf("read %q: %w", filename, err)
	}
	s.logger.InfoContext(ctx, "image upload (local dev)", "filename", filename, "bytes", n)
	publicID := folder + "/" + filename
	return domain.LaptopImage{
		PublicID: publicID,
		URL:      "http://localhost/" + publicID,
	}, nil
}

func (s *LogStore) Destroy(ctx context.Context, publicID string) error {
	s.logger.InfoContext(ctx, "image destroy (local dev)", "public_id", publicID)
	return nil
}

// NewStore returns a LogStore for ENV=local, CloudinaryStore otherwise.
func NewStore(env, cloudinaryURL string, logger *slog.Logger) (Store, error) {
	if env == "local" {
		return &LogStore{logger: logger.With("component", "imagestore")}, nil
	}
	return NewCloudinaryStore(cloudinaryURL)
}
