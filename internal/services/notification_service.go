// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/openshelf/shop-backend/internal/config"
	"github.com/openshelf/shop-backend/internal/models"
)

// NotificationService sends transactional emails. Without SMTP settings it
// logs the message instead of sending, which keeps development and test
// environments self-contained.
type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:  db,
		cfg: cfg,
	}
}

const orderConfirmationTemplate = `Hi {{.FirstName}},

Thanks for your order {{.OrderNumber}}.

Items: {{.ItemsCount}}
Total: {{printf "%.2f" .Total}}

We'll let you know when it ships.
`

const orderCancellationTemplate = `Hi {{.FirstName}},

Your order {{.OrderNumber}} has been cancelled.

If you didn't request this, please contact support.
`

func (s *NotificationService) SendOrderConfirmation(userID uuid.UUID, order *models.Order) {
	s.sendOrderEmail(userID, order, "Order confirmation "+order.OrderNumber, orderConfirmationTemplate)
}

func (s *NotificationService) SendOrderCancellation(userID uuid.UUID, order *models.Order) {
	s.sendOrderEmail(userID, order, "Order cancelled "+order.OrderNumber, orderCancellationTemplate)
}

func (s *NotificationService) sendOrderEmail(userID uuid.UUID, order *models.Order, subject, tmpl string) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		logrus.WithError(err).Warn("Notification recipient not found")
		return
	}

	data := map[string]interface{}{
		"FirstName":   user.FirstName,
		"OrderNumber": order.OrderNumber,
		"ItemsCount":  order.ItemsCount(),
		"Total":       order.TotalAmount,
	}

	body, err := renderTemplate(tmpl, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render notification template")
		return
	}

	if err := s.sendEmail(user.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("Failed to send notification email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.cfg.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	addr := s.cfg.Email.SMTPHost + ":" + s.cfg.Email.SMTPPort
	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.Email.FromName, s.cfg.Email.FromEmail, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg))
}

func renderTemplate(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
