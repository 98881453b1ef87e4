package domain

import (
	"errors"
	"time"
)

var (
	ErrLaptopNotFound = errors.New("laptop not found")
	ErrUploadFailed   = errors.New("image upload failed")
)

// LaptopImage is one externally-hosted product image. PublicID is the
// image store's handle, used later for deletion.
type LaptopImage struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type Laptop struct {
	ID        string
	Brand     string
	Model     string
	Processor string
	RAM       string // e.g. "16GB"
	Storage   string // e.g. "512GB SSD"
	Graphics  string
	Display   string
	OS        string

	Price float64 // >= 0
	Stock int     // >= 0

	Images      []LaptopImage // ordered
	Description string
	IsAvailable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
