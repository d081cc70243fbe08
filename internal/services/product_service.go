// internal/services/product_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/apperrors"
	"github.com/openshelf/shop-backend/internal/models"
	"github.com/openshelf/shop-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name              string     `json:"name" validate:"required,min=2,max=200"`
	Slug              string     `json:"slug,omitempty" validate:"omitempty,max=220"`
	SKU               string     `json:"sku" validate:"required,max=100"`
	Description       string     `json:"description,omitempty"`
	Price             float64    `json:"price" validate:"required,gt=0"`
	ComparePrice      *float64   `json:"compare_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity     int        `json:"stock_quantity" validate:"min=0"`
	LowStockThreshold *int       `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	IsFeatured        bool       `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description       *string    `json:"description,omitempty"`
	Price             *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	ComparePrice      *float64   `json:"compare_price,omitempty" validate:"omitempty,gt=0"`
	LowStockThreshold *int       `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
	IsFeatured        *bool      `json:"is_featured,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	IsFeatured *bool
	IsActive   *bool
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	var existing models.Product
	if err := s.db.Where("sku = ? OR slug = ?", req.SKU, slug).First(&existing).Error; err == nil {
		if existing.SKU == req.SKU {
			return nil, apperrors.Conflictf("product with this SKU already exists")
		}
		return nil, apperrors.Conflictf("product with this slug already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	if req.CategoryID != nil {
		var count int64
		s.db.Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&count)
		if count == 0 {
			return nil, apperrors.Validationf("category not found")
		}
	}

	product := &models.Product{
		Name:          req.Name,
		Slug:          slug,
		SKU:           req.SKU,
		Description:   req.Description,
		Price:         req.Price,
		ComparePrice:  req.ComparePrice,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		IsActive:      true,
		IsFeatured:    req.IsFeatured,
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	} else {
		product.LowStockThreshold = 10
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create product", err)
	}

	return product, nil
}

// GetProduct returns a product. Inactive products are hidden unless the
// caller is an admin.
func (s *ProductService) GetProduct(id uuid.UUID, includeInactive bool) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	if !product.IsActive && !includeInactive {
		return nil, apperrors.NotFoundf("product not found")
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	product, err := s.GetProduct(id, true)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.CategoryID != nil {
		var count int64
		s.db.Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&count)
		if count == 0 {
			return nil, apperrors.Validationf("category not found")
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update product", err)
		}
	}

	return s.GetProduct(id, true)
}

// DeleteProduct soft-deletes via is_active so order items keep a valid
// product reference.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	result := s.db.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("product not found")
	}
	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category")

	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	} else {
		query = query.Where("is_active = ?", true)
	}

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if params.MinPrice != nil {
		query = query.Where("price >= ?", *params.MinPrice)
	}

	if params.MaxPrice != nil {
		query = query.Where("price <= ?", *params.MaxPrice)
	}

	if params.InStock != nil {
		if *params.InStock {
			query = query.Where("stock_quantity > 0")
		} else {
			query = query.Where("stock_quantity = 0")
		}
	}

	if params.IsFeatured != nil {
		query = query.Where("is_featured = ?", *params.IsFeatured)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "failed to count products", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "stock_quantity"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "failed to fetch products", err)
	}

	return products, total, nil
}

func (s *ProductService) GetFeaturedProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Preload("Category").
		Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch featured products", err)
	}

	return products, nil
}

func (s *ProductService) GetLowStockProducts(limit int) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
		Order("stock_quantity ASC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch low stock products", err)
	}

	return products, nil
}

// AdjustStock applies a signed delta behind a conditional update so the
// counter can never go negative, no matter how many writers race. Exactly
// one of two concurrent claims on the last unit wins; the loser sees the
// failed guard.
func (s *ProductService) AdjustStock(id uuid.UUID, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, apperrors.Validationf("stock delta must be non-zero")
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to adjust stock", result.Error)
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing product from a rejected decrement.
		var count int64
		s.db.Model(&models.Product{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return nil, apperrors.NotFoundf("product not found")
		}
		return nil, apperrors.Validationf("stock adjustment would result in negative stock")
	}

	return s.GetProduct(id, true)
}

// AddImages appends uploaded image URLs to the product.
func (s *ProductService) AddImages(id uuid.UUID, urls []string) (*models.Product, error) {
	product, err := s.GetProduct(id, true)
	if err != nil {
		return nil, err
	}

	product.Images = append(product.Images, urls...)
	if err := s.db.Model(product).Update("images", product.Images).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update product images", err)
	}

	return product, nil
}
