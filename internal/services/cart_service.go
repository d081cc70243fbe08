// internal/services/cart_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/apperrors"
	"github.com/openshelf/shop-backend/internal/models"
	"github.com/openshelf/shop-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ProductSKU  string    `json:"product_sku"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Subtotal    float64   `json:"subtotal"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	TotalItems  int                `json:"total_items"`
	TotalAmount float64            `json:"total_amount"`
	IsEmpty     bool               `json:"is_empty"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItem puts a product into the user's cart, accumulating quantity when a
// line for the product already exists. Stock is checked, not reserved.
func (s *CartService) AddItem(userID uuid.UUID, req *AddToCartRequest) (*CartResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	var product models.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product not found or inactive")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	var existing models.CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	switch {
	case err == nil:
		newQuantity := existing.Quantity + req.Quantity
		if !product.CanOrder(newQuantity) {
			return nil, apperrors.Validationf(
				"insufficient stock for %s: requested %d, available %d",
				product.Name, newQuantity, product.StockQuantity,
			)
		}
		existing.Quantity = newQuantity
		existing.UnitPrice = product.Price
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update cart item", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !product.CanOrder(req.Quantity) {
			return nil, apperrors.Validationf(
				"insufficient stock for %s: requested %d, available %d",
				product.Name, req.Quantity, product.StockQuantity,
			)
		}
		item := &models.CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		}
		if err := s.db.Create(item).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to add cart item", err)
		}
	default:
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	return s.GetCart(userID)
}

func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*CartResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	item, err := s.getOwnedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.Where("id = ? AND is_active = ?", item.ProductID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product not found or inactive")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	if !product.CanOrder(req.Quantity) {
		return nil, apperrors.Validationf(
			"insufficient stock for %s: requested %d, available %d",
			product.Name, req.Quantity, product.StockQuantity,
		)
	}

	item.Quantity = req.Quantity
	item.UnitPrice = product.Price
	if err := s.db.Save(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update cart item", err)
	}

	return s.GetCart(userID)
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) (*CartResponse, error) {
	item, err := s.getOwnedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to remove cart item", err)
	}

	return s.GetCart(userID)
}

// GetCart is a pure read; it never mutates stock or prices.
func (s *CartService) GetCart(userID uuid.UUID) (*CartResponse, error) {
	var items []models.CartItem
	if err := s.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to fetch cart", err)
	}

	response := &CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, item := range items {
		line := CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSKU = item.Product.SKU
		}
		response.Items = append(response.Items, line)
		response.TotalItems += item.Quantity
		response.TotalAmount += line.Subtotal
	}
	response.IsEmpty = len(response.Items) == 0

	return response, nil
}

func (s *CartService) ClearCart(userID uuid.UUID) (*CartResponse, error) {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to clear cart", err)
	}
	return s.GetCart(userID)
}

// getOwnedItem loads a cart item and enforces ownership. A row belonging to
// another user is reported as forbidden, not as missing, per the error
// taxonomy.
func (s *CartService) getOwnedItem(userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("cart item not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}

	if item.UserID != userID {
		return nil, apperrors.Forbiddenf("cart item belongs to another user")
	}

	return &item, nil
}
