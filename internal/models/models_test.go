// internal/models/models_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrderCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanBeCancelled())
	assert.True(t, (&Order{Status: OrderStatusPaid}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusShipped}).CanBeCancelled())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).CanBeCancelled())
}

func TestUserPassword(t *testing.T) {
	user := &User{}
	assert.NoError(t, user.SetPassword("Sup3rSecret"))
	assert.NotEqual(t, "Sup3rSecret", user.PasswordHash)
	assert.NoError(t, user.CheckPassword("Sup3rSecret"))
	assert.Error(t, user.CheckPassword("wrong"))
}

func TestProductStockHelpers(t *testing.T) {
	product := &Product{
		StockQuantity:     3,
		LowStockThreshold: 5,
		IsActive:          true,
	}

	assert.True(t, product.IsInStock())
	assert.True(t, product.IsLowStock())
	assert.True(t, product.CanOrder(3))
	assert.False(t, product.CanOrder(4))

	product.IsActive = false
	assert.False(t, product.CanOrder(1), "inactive products cannot be ordered")
}

func TestProductIsOnSale(t *testing.T) {
	compare := 50.0
	assert.True(t, (&Product{Price: 40.0, ComparePrice: &compare}).IsOnSale())
	assert.False(t, (&Product{Price: 60.0, ComparePrice: &compare}).IsOnSale())
	assert.False(t, (&Product{Price: 40.0}).IsOnSale())
}
