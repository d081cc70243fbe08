// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/openshelf/shop-backend/internal/config"
	"github.com/openshelf/shop-backend/internal/utils"
)

// PaymentService charges orders through Stripe when a secret key is
// configured and falls back to a simulated gateway otherwise, so the order
// workflow is exercisable in development without credentials.
type PaymentService struct {
	cfg *config.Config
}

func NewPaymentService(cfg *config.Config) *PaymentService {
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
	}

	return &PaymentService{cfg: cfg}
}

// Charge collects the given amount and returns a payment reference.
func (s *PaymentService) Charge(amount float64, orderNumber string) (string, error) {
	if s.cfg.Payment.StripeSecretKey == "" {
		return s.simulateCharge(orderNumber)
	}

	amountInCents := int64(amount * 100)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.cfg.Payment.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_number", orderNumber)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_number": orderNumber,
		"intent_id":    intent.ID,
		"status":       intent.Status,
	}).Info("Payment intent created")

	return intent.ID, nil
}

func (s *PaymentService) simulateCharge(orderNumber string) (string, error) {
	suffix, err := utils.GenerateRandomString(12)
	if err != nil {
		return "", err
	}

	ref := "SIM-" + suffix
	logrus.WithFields(logrus.Fields{
		"order_number": orderNumber,
		"payment_ref":  ref,
	}).Info("Simulated payment processed")

	return ref, nil
}
