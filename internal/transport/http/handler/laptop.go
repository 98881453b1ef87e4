package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/usecase"
)

// maxImages caps how many product images one multipart request may carry.
const maxImages = 4

type laptopUsecaser interface {
	Create(ctx context.Context, input usecase.CreateLaptopInput, files []usecase.ImageUpload) (*domain.Laptop, error)
	List(ctx context.Context) ([]*domain.Laptop, error)
	GetByID(ctx context.Context, id string) (*domain.Laptop, error)
	Update(ctx context.Context, id string, input usecase.UpdateLaptopInput, files []usecase.ImageUpload) (*domain.Laptop, error)
	Delete(ctx context.Context, id string) error
}

type LaptopHandler struct {
	laptops laptopUsecaser
	logger  *slog.Logger
}

func NewLaptopHandler(laptops laptopUsecaser, logger *slog.Logger) *LaptopHandler {
	return &LaptopHandler{laptops: laptops, logger: logger.With("component", "laptop_handler")}
}

type laptopResponse struct {
	ID          string               `json:"id"`
	Brand       string               `json:"brand"`
	Model       string               `json:"model"`
	Processor   string               `json:"processor"`
	RAM         string               `json:"ram"`
	Storage     string               `json:"storage"`
	Graphics    string               `json:"graphics"`
	Display     string               `json:"display"`
	OS          string               `json:"os"`
	Price       float64              `json:"price"`
	Stock       int                  `json:"stock"`
	Images      []domain.LaptopImage `json:"images"`
	Description string               `json:"description"`
	IsAvailable bool                 `json:"is_available"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func newLaptopResponse(l *domain.Laptop) laptopResponse {
	images := l.Images
	if images == nil {
		images = []domain.LaptopImage{}
	}
	return laptopResponse{
		ID:          l.ID,
		Brand:       l.Brand,
		Model:       l.Model,
		Processor:   l.Processor,
		RAM:         l.RAM,
		Storage:     l.Storage,
		Graphics:    l.Graphics,
		Display:     l.Display,
		OS:          l.OS,
		Price:       l.Price,
		Stock:       l.Stock,
		Images:      images,
		Description: l.Description,
		IsAvailable: l.IsAvailable,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// GET /laptops
func (h *LaptopHandler) List(c *gin.Context) {
	laptops, err := h.laptops.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list laptops", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]laptopResponse, 0, len(laptops))
	for _, l := range laptops {
		out = append(out, newLaptopResponse(l))
	}
	c.JSON(http.StatusOK, out)
}

// GET /laptops/:id
func (h *LaptopHandler) GetByID(c *gin.Context) {
	laptop, err := h.laptops.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrLaptopNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errLaptopNotFound})
			return
		}
		h.logger.Error("get laptop", "laptop_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, newLaptopResponse(laptop))
}

type createLaptopRequest struct {
	Brand       string  `form:"brand"     binding:"required"`
	Model       string  `form:"model"     binding:"required"`
	Processor   string  `form:"processor" binding:"required"`
	RAM         string  `form:"ram"       binding:"required"`
	Storage     string  `form:"storage"   binding:"required"`
	Graphics    string  `form:"graphics"`
	Display     string  `form:"display"`
	OS          string  `form:"os"`
	Price       float64 `form:"price" binding:"required,gte=0"`
	Stock       int     `form:"stock" binding:"gte=0"`
	Description string  `form:"description"`
	IsAvailable *bool   `form:"is_available"`
}

// POST /laptops (multipart, up to 4 images)
func (h *LaptopHandler) Create(c *gin.Context) {
	var req createLaptopRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, ok := h.readImages(c)
	if !ok {
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errImagesRequired})
		return
	}

	laptop, err := h.laptops.Create(c.Request.Context(), usecase.CreateLaptopInput{
		Brand:       req.Brand,
		Model:       req.Model,
		Processor:   req.Processor,
		RAM:         req.RAM,
		Storage:     req.Storage,
		Graphics:    req.Graphics,
		Display:     req.Display,
		OS:          req.OS,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		IsAvailable: req.IsAvailable,
	}, files)
	if err != nil {
		if errors.Is(err, domain.ErrUploadFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": errUploadFailed})
			return
		}
		h.logger.Error("create laptop", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, newLaptopResponse(laptop))
}

type updateLaptopRequest struct {
	Brand       *string  `form:"brand"`
	Model       *string  `form:"model"`
	Processor   *string  `form:"processor"`
	RAM         *string  `form:"ram"`
	Storage     *string  `form:"storage"`
	Graphics    *string  `form:"graphics"`
	Display     *string  `form:"display"`
	OS          *string  `form:"os"`
	Price       *float64 `form:"price" binding:"omitempty,gte=0"`
	Stock       *int     `form:"stock" binding:"omitempty,gte=0"`
	Description *string  `form:"description"`
	IsAvailable *bool    `form:"is_available"`
}

// PATCH /laptops/:id (multipart; images, when present, replace the old set)
func (h *LaptopHandler) Update(c *gin.Context) {
	var req updateLaptopRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, ok := h.readImages(c)
	if !ok {
		return
	}

	laptop, err := h.laptops.Update(c.Request.Context(), c.Param("id"), usecase.UpdateLaptopInput{
		Brand:       req.Brand,
		Model:       req.Model,
		Processor:   req.Processor,
		RAM:         req.RAM,
		Storage:     req.Storage,
		Graphics:    req.Graphics,
		Display:     req.Display,
		OS:          req.OS,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		IsAvailable: req.IsAvailable,
	}, files)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLaptopNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errLaptopNotFound})
		case errors.Is(err, domain.ErrUploadFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": errUploadFailed})
		default:
			h.logger.Error("update laptop", "laptop_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, newLaptopResponse(laptop))
}

// DELETE /laptops/:id
func (h *LaptopHandler) Delete(c *gin.Context) {
	if err := h.laptops.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrLaptopNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errLaptopNotFound})
			return
		}
		h.logger.Error("delete laptop", "laptop_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}

// readImages drains the "images" multipart files into memory. It writes
// the error response itself and reports ok=false on failure.
func (h *LaptopHandler) readImages(c *gin.Context) ([]usecase.ImageUpload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	headers := form.File["images"]
	if len(headers) > maxImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many images"})
		return nil, false
	}

	files := make([]usecase.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		files = append(files, usecase.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return files, true
}
