// internal/services/order_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/apperrors"
	"github.com/openshelf/shop-backend/internal/models"
	"github.com/openshelf/shop-backend/internal/utils"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	cart    *CartService
	user    *models.User
	admin   *models.User
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	cfg := testConfig()
	suite.service = NewOrderService(suite.db, NewPaymentService(cfg), nil)
	suite.cart = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "buyer@example.com", models.UserRoleCustomer)
	suite.admin = createTestUser(suite.T(), suite.db, "staff@example.com", models.UserRoleAdmin)
}

func (suite *OrderServiceTestSuite) checkout() *CheckoutRequest {
	return &CheckoutRequest{ShippingAddress: "12 Harbour Street, Pineville"}
}

func (suite *OrderServiceTestSuite) addToCart(productID uuid.UUID, qty int) {
	_, err := suite.cart.AddItem(suite.user.ID, &AddToCartRequest{ProductID: productID, Quantity: qty})
	suite.Require().NoError(err)
}

func (suite *OrderServiceTestSuite) stockOf(productID uuid.UUID) int {
	var product models.Product
	suite.Require().NoError(suite.db.First(&product, "id = ?", productID).Error)
	return product.StockQuantity
}

func (suite *OrderServiceTestSuite) TestCreateOrder() {
	mug := createTestProduct(suite.T(), suite.db, "Ceramic Mug", "MUG-001", 12.5, 20)
	poster := createTestProduct(suite.T(), suite.db, "Poster", "POST-001", 8.0, 10)
	suite.addToCart(mug.ID, 2)
	suite.addToCart(poster.ID, 3)

	order, err := suite.service.CreateOrder(suite.user.ID, suite.checkout())

	suite.NoError(err)
	suite.True(strings.HasPrefix(order.OrderNumber, "ORD-"))
	suite.Equal(models.OrderStatusPending, order.Status)
	suite.Equal(models.PaymentStatusPending, order.PaymentStatus)
	suite.Len(order.Items, 2)

	// Total equals the sum of line totals
	var sum float64
	for _, item := range order.Items {
		sum += item.TotalPrice
	}
	suite.Equal(sum, order.TotalAmount)
	suite.Equal(2*12.5+3*8.0, order.TotalAmount)

	// Stock decremented per line
	suite.Equal(18, suite.stockOf(mug.ID))
	suite.Equal(7, suite.stockOf(poster.ID))

	// Cart emptied in the same transaction
	cart, err := suite.cart.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.True(cart.IsEmpty)
}

func (suite *OrderServiceTestSuite) TestCreateOrderSnapshotsPriceAtCheckout() {
	lamp := createTestProduct(suite.T(), suite.db, "Desk Lamp", "LAMP-001", 30.0, 5)
	suite.addToCart(lamp.ID, 1)

	// Price changes between carting and checkout
	suite.NoError(suite.db.Model(lamp).Update("price", 24.0).Error)

	order, err := suite.service.CreateOrder(suite.user.ID, suite.checkout())

	suite.NoError(err)
	suite.Equal(24.0, order.Items[0].UnitPrice)
	suite.Equal(24.0, order.TotalAmount)
}

func (suite *OrderServiceTestSuite) TestCreateOrderEmptyCart() {
	_, err := suite.service.CreateOrder(suite.user.ID, suite.checkout())

	suite.Error(err)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCreateOrderInsufficientStockRollsBack() {
	chair := createTestProduct(suite.T(), suite.db, "Folding Chair", "CHAIR-001", 40.0, 5)
	suite.addToCart(chair.ID, 5)

	// Someone else claims stock after the item was carted
	suite.NoError(suite.db.Model(chair).Update("stock_quantity", 2).Error)

	_, err := suite.service.CreateOrder(suite.user.ID, suite.checkout())

	suite.Error(err)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))

	// Nothing committed: no order, stock untouched, cart intact
	var orderCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.Zero(orderCount)
	suite.Equal(2, suite.stockOf(chair.ID))

	cart, err := suite.cart.GetCart(suite.user.ID)
	suite.NoError(err)
	suite.False(cart.IsEmpty)
}

func (suite *OrderServiceTestSuite) TestCreateOrderInactiveProduct() {
	rug := createTestProduct(suite.T(), suite.db, "Area Rug", "RUG-001", 90.0, 4)
	suite.addToCart(rug.ID, 1)
	suite.NoError(suite.db.Model(rug).Update("is_active", false).Error)

	_, err := suite.service.CreateOrder(suite.user.ID, suite.checkout())

	suite.Error(err)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestLastUnitGoesToOneBuyer() {
	vase := createTestProduct(suite.T(), suite.db, "Glass Vase", "VASE-001", 55.0, 1)

	other := createTestUser(suite.T(), suite.db, "rival@example.com", models.UserRoleCustomer)
	_, err := suite.cart.AddItem(other.ID, &AddToCartRequest{ProductID: vase.ID, Quantity: 1})
	suite.NoError(err)
	suite.addToCart(vase.ID, 1)

	_, err = suite.service.CreateOrder(other.ID, suite.checkout())
	suite.NoError(err)

	// Second claim on the same unit loses at the stock guard
	_, err = suite.service.CreateOrder(suite.user.ID, suite.checkout())
	suite.Error(err)
	suite.Equal(apperrors.KindConflict, apperrors.KindOf(err))

	suite.Equal(0, suite.stockOf(vase.ID))
}

func (suite *OrderServiceTestSuite) placeOrder() *models.Order {
	product := createTestProduct(suite.T(), suite.db, "Tea Kettle", "KET-001", 35.0, 10)
	suite.addToCart(product.ID, 2)
	order, err := suite.service.CreateOrder(suite.user.ID, suite.checkout())
	suite.Require().NoError(err)
	return order
}

func (suite *OrderServiceTestSuite) TestPayOrder() {
	order := suite.placeOrder()

	paid, err := suite.service.PayOrder(suite.user.ID, false, order.ID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusPaid, paid.Status)
	suite.Equal(models.PaymentStatusCompleted, paid.PaymentStatus)
	suite.NotEmpty(paid.PaymentRef)
}

func (suite *OrderServiceTestSuite) TestPayOrderTwice() {
	order := suite.placeOrder()

	_, err := suite.service.PayOrder(suite.user.ID, false, order.ID)
	suite.NoError(err)

	_, err = suite.service.PayOrder(suite.user.ID, false, order.ID)
	suite.Error(err)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCancelPendingRestoresStock() {
	order := suite.placeOrder()
	productID := order.Items[0].ProductID
	suite.Equal(8, suite.stockOf(productID))

	cancelled, err := suite.service.CancelOrder(suite.user.ID, false, order.ID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)
	suite.Equal(10, suite.stockOf(productID))
}

func (suite *OrderServiceTestSuite) TestOwnerCannotCancelPaidOrder() {
	order := suite.placeOrder()
	_, err := suite.service.PayOrder(suite.user.ID, false, order.ID)
	suite.NoError(err)

	_, err = suite.service.CancelOrder(suite.user.ID, false, order.ID)

	suite.Error(err)
	suite.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	// Order and stock unchanged
	stored, err := suite.service.GetOrder(suite.user.ID, false, order.ID)
	suite.NoError(err)
	suite.Equal(models.OrderStatusPaid, stored.Status)
	suite.Equal(8, suite.stockOf(order.Items[0].ProductID))
}

func (suite *OrderServiceTestSuite) TestAdminCancelsPaidOrderWithoutRestock() {
	order := suite.placeOrder()
	_, err := suite.service.PayOrder(suite.user.ID, false, order.ID)
	suite.NoError(err)

	cancelled, err := suite.service.CancelOrder(suite.admin.ID, true, order.ID)

	suite.NoError(err)
	suite.Equal(models.OrderStatusCancelled, cancelled.Status)
	// Paid cancellations leave stock alone; restocking is a manual decision
	suite.Equal(8, suite.stockOf(order.Items[0].ProductID))
}

func (suite *OrderServiceTestSuite) TestCancelShippedOrderRejected() {
	order := suite.placeOrder()
	_, err := suite.service.PayOrder(suite.user.ID, false, order.ID)
	suite.NoError(err)
	_, err = suite.service.UpdateStatus(order.ID, models.OrderStatusShipped)
	suite.NoError(err)

	_, err = suite.service.CancelOrder(suite.admin.ID, true, order.ID)

	suite.Error(err)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestCancelOrderOfAnotherUser() {
	order := suite.placeOrder()
	stranger := createTestUser(suite.T(), suite.db, "stranger@example.com", models.UserRoleCustomer)

	_, err := suite.service.CancelOrder(stranger.ID, false, order.ID)

	suite.Error(err)
	suite.Equal(apperrors.KindForbidden, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestUpdateStatusShippedSetsTimestamp() {
	order := suite.placeOrder()
	_, err := suite.service.PayOrder(suite.user.ID, false, order.ID)
	suite.NoError(err)

	shipped, err := suite.service.UpdateStatus(order.ID, models.OrderStatusShipped)

	suite.NoError(err)
	suite.Equal(models.OrderStatusShipped, shipped.Status)
	suite.NotNil(shipped.ShippedAt)
}

func (suite *OrderServiceTestSuite) TestUpdateStatusSkippingPaymentRejected() {
	order := suite.placeOrder()

	_, err := suite.service.UpdateStatus(order.ID, models.OrderStatusShipped)

	suite.Error(err)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *OrderServiceTestSuite) TestGetOrderOfAnotherUser() {
	order := suite.placeOrder()
	stranger := createTestUser(suite.T(), suite.db, "peeker@example.com", models.UserRoleCustomer)

	_, err := suite.service.GetOrder(stranger.ID, false, order.ID)
	suite.Error(err)
	suite.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	// Admins see every order
	found, err := suite.service.GetOrder(suite.admin.ID, true, order.ID)
	suite.NoError(err)
	suite.Equal(order.ID, found.ID)
}

func (suite *OrderServiceTestSuite) TestGetUserOrdersScopedToOwner() {
	suite.placeOrder()

	other := createTestUser(suite.T(), suite.db, "someone@example.com", models.UserRoleCustomer)
	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}

	mine, total, err := suite.service.GetUserOrders(suite.user.ID, params)
	suite.NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(mine, 1)

	theirs, total, err := suite.service.GetUserOrders(other.ID, params)
	suite.NoError(err)
	suite.Zero(total)
	suite.Empty(theirs)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
