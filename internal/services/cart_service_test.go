// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/apperrors"
	"github.com/openshelf/shop-backend/internal/models"
)

type CartServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CartService
	user    *models.User
	product *models.Product
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewCartService(suite.db)
	suite.user = createTestUser(suite.T(), suite.db, "shopper@example.com", models.UserRoleCustomer)
	suite.product = createTestProduct(suite.T(), suite.db, "Wireless Mouse", "WM-001", 29.5, 10)
}

func (suite *CartServiceTestSuite) TestAddItem() {
	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{
		ProductID: suite.product.ID,
		Quantity:  2,
	})

	suite.NoError(err)
	suite.Len(cart.Items, 1)
	suite.Equal(2, cart.TotalItems)
	suite.Equal(59.0, cart.TotalAmount)
	suite.False(cart.IsEmpty)
}

func (suite *CartServiceTestSuite) TestAddItemAccumulatesQuantity() {
	_, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 2})
	suite.NoError(err)

	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 3})

	suite.NoError(err)
	suite.Len(cart.Items, 1, "same product stays on one line")
	suite.Equal(5, cart.Items[0].Quantity)
}

func (suite *CartServiceTestSuite) TestAddItemBeyondStock() {
	_, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 8})
	suite.NoError(err)

	// 8 + 3 exceeds the 10 in stock
	_, err = suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 3})

	suite.Error(err)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *CartServiceTestSuite) TestAddItemInactiveProduct() {
	suite.NoError(suite.db.Model(suite.product).Update("is_active", false).Error)

	_, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 1})

	suite.Error(err)
	suite.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (suite *CartServiceTestSuite) TestAddItemUnknownProduct() {
	_, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: uuid.New(), Quantity: 1})

	suite.Error(err)
	suite.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}

func (suite *CartServiceTestSuite) TestUpdateItem() {
	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 2})
	suite.NoError(err)

	updated, err := suite.service.UpdateItem(suite.user.ID, cart.Items[0].ID, &UpdateCartItemRequest{Quantity: 7})

	suite.NoError(err)
	suite.Equal(7, updated.Items[0].Quantity)
}

func (suite *CartServiceTestSuite) TestUpdateItemBeyondStock() {
	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 2})
	suite.NoError(err)

	_, err = suite.service.UpdateItem(suite.user.ID, cart.Items[0].ID, &UpdateCartItemRequest{Quantity: 11})

	suite.Error(err)
	suite.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (suite *CartServiceTestSuite) TestUpdateItemOfAnotherUser() {
	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 1})
	suite.NoError(err)

	intruder := createTestUser(suite.T(), suite.db, "intruder@example.com", models.UserRoleCustomer)
	_, err = suite.service.UpdateItem(intruder.ID, cart.Items[0].ID, &UpdateCartItemRequest{Quantity: 2})

	suite.Error(err)
	suite.Equal(apperrors.KindForbidden, apperrors.KindOf(err))
}

func (suite *CartServiceTestSuite) TestRemoveItem() {
	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 1})
	suite.NoError(err)

	emptied, err := suite.service.RemoveItem(suite.user.ID, cart.Items[0].ID)

	suite.NoError(err)
	suite.True(emptied.IsEmpty)
}

func (suite *CartServiceTestSuite) TestRemoveItemOfAnotherUser() {
	cart, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 1})
	suite.NoError(err)

	intruder := createTestUser(suite.T(), suite.db, "sneaky@example.com", models.UserRoleCustomer)
	_, err = suite.service.RemoveItem(intruder.ID, cart.Items[0].ID)

	suite.Error(err)
	suite.Equal(apperrors.KindForbidden, apperrors.KindOf(err))
}

func (suite *CartServiceTestSuite) TestGetCartDoesNotMutateStock() {
	_, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 3})
	suite.NoError(err)

	_, err = suite.service.GetCart(suite.user.ID)
	suite.NoError(err)

	var stored models.Product
	suite.NoError(suite.db.First(&stored, "id = ?", suite.product.ID).Error)
	suite.Equal(10, stored.StockQuantity, "carting reserves nothing")
}

func (suite *CartServiceTestSuite) TestClearCart() {
	_, err := suite.service.AddItem(suite.user.ID, &AddToCartRequest{ProductID: suite.product.ID, Quantity: 2})
	suite.NoError(err)

	cart, err := suite.service.ClearCart(suite.user.ID)

	suite.NoError(err)
	suite.True(cart.IsEmpty)
	suite.Zero(cart.TotalAmount)
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
