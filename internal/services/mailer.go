package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/example/orderdesk/internal/models"
)

// MailerService sends order confirmation emails. It is best-effort by
// contract: callers log failures and never fail the order because of one.
type MailerService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewMailerService creates a MailerService.
func NewMailerService(host, port, user, password, from string) *MailerService {
	return &MailerService{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

// SendOrderConfirmation emails the customer a summary of their order.
func (s *MailerService) SendOrderConfirmation(order *models.Order) error {
	if s.host == "" {
		log.Println("[Mailer] SMTP host not configured")
		return nil
	}
	if order.Customer == nil || order.Customer.Email == "" {
		return fmt.Errorf("order %s has no customer email", order.ReferenceNumber)
	}

	var lines strings.Builder
	for i, item := range order.Items {
		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}
		lines.WriteString(fmt.Sprintf("%d. %s  %d x %s = %s\n",
			i+1, name, item.Quantity,
			item.UnitPrice.StringFixed(2),
			item.TotalPrice.StringFixed(2),
		))
	}

	body := fmt.Sprintf(`Hello %s,

Thank you for your order %s.

Items:
%s
Subtotal: %s
Discount: %s
Total:    %s
`,
		order.Customer.FullName(),
		order.ReferenceNumber,
		lines.String(),
		order.Subtotal.StringFixed(2),
		order.DiscountAmount.StringFixed(2),
		order.Total.StringFixed(2),
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Order Confirmation - %s\r\n\r\n%s",
		s.from, order.Customer.Email, order.ReferenceNumber, body)

	addr := s.host + ":" + s.port
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{order.Customer.Email}, []byte(msg)); err != nil {
		log.Printf("[Mailer] send failed for %s: %v", order.ReferenceNumber, err)
		return err
	}

	return nil
}
