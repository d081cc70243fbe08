// internal/services/order_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/apperrors"
	"github.com/openshelf/shop-backend/internal/models"
	"github.com/openshelf/shop-backend/internal/utils"
)

type OrderService struct {
	db            *gorm.DB
	payments      *PaymentService
	notifications *NotificationService
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=10"`
	Notes           string `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func NewOrderService(db *gorm.DB, payments *PaymentService, notifications *NotificationService) *OrderService {
	return &OrderService{
		db:            db,
		payments:      payments,
		notifications: notifications,
	}
}

// CreateOrder converts the user's cart into an order. Stock decrements, the
// order row, its item snapshots, and the cart clear happen in one
// transaction; a failed stock guard on any line rolls back everything.
func (s *OrderService) CreateOrder(userID uuid.UUID, req *CheckoutRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "validation failed", err)
	}

	orderNumber, err := utils.GenerateOrderNumber()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to generate order number", err)
	}

	var order *models.Order

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("created_at ASC").Find(&cartItems).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to load cart", err)
		}

		if len(cartItems) == 0 {
			return apperrors.Validationf("cart is empty")
		}

		order = &models.Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: req.ShippingAddress,
			Notes:           req.Notes,
		}

		for _, cartItem := range cartItems {
			// Re-read inside the transaction so the snapshot price is the
			// one in effect at order time, not at add-to-cart time.
			var product models.Product
			if err := tx.First(&product, "id = ?", cartItem.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Conflictf("product in cart no longer exists")
				}
				return apperrors.Wrap(apperrors.KindInternal, "database error", err)
			}

			if !product.IsActive {
				return apperrors.Conflictf("product %s is no longer available", product.Name)
			}

			// Stock guard: the decrement succeeds only when enough stock
			// remains, so two orders racing for the last unit cannot both
			// win.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", product.ID, cartItem.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity))
			if result.Error != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to decrement stock", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.Conflictf(
					"insufficient stock for %s: requested %d, available %d",
					product.Name, cartItem.Quantity, product.StockQuantity,
				)
			}

			lineTotal := float64(cartItem.Quantity) * product.Price
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				ProductSKU:  product.SKU,
				Quantity:    cartItem.Quantity,
				UnitPrice:   product.Price,
				TotalPrice:  lineTotal,
			})
			order.Subtotal += lineTotal
		}

		order.TotalAmount = order.Subtotal

		if err := tx.Create(order).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to create order", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to clear cart", err)
		}

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	if s.notifications != nil {
		go s.notifications.SendOrderConfirmation(userID, order)
	}

	return s.loadOrder(order.ID)
}

// PayOrder moves a pending order to paid through the payment service.
func (s *OrderService) PayOrder(callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.getAuthorizedOrder(callerID, isAdmin, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, apperrors.Validationf("order cannot be paid in status %s", order.Status)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, apperrors.Validationf("payment has already been processed")
	}

	if err := s.db.Model(order).Update("payment_status", models.PaymentStatusProcessing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update payment status", err)
	}

	ref, chargeErr := s.payments.Charge(order.TotalAmount, order.OrderNumber)
	if chargeErr != nil {
		s.db.Model(order).Update("payment_status", models.PaymentStatusFailed)
		return nil, apperrors.Wrap(apperrors.KindValidation, "payment failed", chargeErr)
	}

	updates := map[string]interface{}{
		"status":         models.OrderStatusPaid,
		"payment_status": models.PaymentStatusCompleted,
		"payment_ref":    ref,
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update order", err)
	}

	return s.loadOrder(orderID)
}

// CancelOrder cancels a pending or paid order. Owners may cancel only while
// pending; paid orders need an administrator, since refunding is a separate
// concern. Stock is restored only from pending, where the decrement is the
// sole effect to reverse.
func (s *OrderService) CancelOrder(callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, error) {
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("order not found")
			}
			return apperrors.Wrap(apperrors.KindInternal, "database error", err)
		}

		if !isAdmin && order.UserID != callerID {
			return apperrors.Forbiddenf("order belongs to another user")
		}

		if !order.CanBeCancelled() {
			return apperrors.Validationf("order cannot be cancelled in status %s", order.Status)
		}

		if !isAdmin && order.Status != models.OrderStatusPending {
			return apperrors.Forbiddenf("paid orders can only be cancelled by an administrator")
		}

		if order.Status == models.OrderStatusPending {
			for _, item := range order.Items {
				result := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity))
				if result.Error != nil {
					return apperrors.Wrap(apperrors.KindInternal, "failed to restore stock", result.Error)
				}
			}
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to cancel order", err)
		}

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		go s.notifications.SendOrderCancellation(order.UserID, order)
	}

	return order, nil
}

// UpdateStatus applies an admin status transition following the forward-only
// state machine.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, newStatus models.OrderStatus) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, apperrors.Validationf("invalid status transition from %s to %s", order.Status, newStatus)
	}

	if newStatus == models.OrderStatusCancelled {
		return s.CancelOrder(order.UserID, true, orderID)
	}

	updates := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case models.OrderStatusPaid:
		// Manual marking, e.g. an offline payment confirmed by staff.
		updates["payment_status"] = models.PaymentStatusCompleted
	case models.OrderStatusShipped:
		now := time.Now()
		updates["shipped_at"] = &now
	}

	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update order status", err)
	}

	return s.loadOrder(orderID)
}

func (s *OrderService) GetOrder(callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, error) {
	return s.getAuthorizedOrder(callerID, isAdmin, orderID)
}

func (s *OrderService) GetUserOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	return s.listOrders(s.db.Model(&models.Order{}).Where("user_id = ?", userID), params)
}

func (s *OrderService) GetAllOrders(params utils.PaginationParams) ([]models.Order, int64, error) {
	return s.listOrders(s.db.Model(&models.Order{}), params)
}

func (s *OrderService) listOrders(query *gorm.DB, params utils.PaginationParams) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "failed to count orders", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "total_amount"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, "failed to fetch orders", err)
	}

	return orders, total, nil
}

func (s *OrderService) getAuthorizedOrder(callerID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != callerID {
		return nil, apperrors.Forbiddenf("order belongs to another user")
	}

	return order, nil
}

func (s *OrderService) loadOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("order not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "database error", err)
	}
	return &order, nil
}
