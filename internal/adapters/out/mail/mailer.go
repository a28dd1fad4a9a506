// Package mail sends customer notifications over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"souvlaki/internal/core/domain/model/order"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers rendered messages. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds the SMTP settings and the sender identity.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	ShopName string
}

// Mailer implements ports.Mailer. Messages are rendered synchronously and delivered in
// the background so a slow SMTP server never delays an operator's request.
type Mailer struct {
	sender    Sender
	from      string
	shopName  string
	templates *template.Template
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewMailer creates a mailer delivering through an SMTP dialer.
func NewMailer(cfg Config, logger *slog.Logger) (*Mailer, error) {
	return NewMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, logger)
}

func NewMailerWithSender(sender Sender, cfg Config, logger *slog.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &Mailer{
		sender:    sender,
		from:      cfg.From,
		shopName:  cfg.ShopName,
		templates: tmpl,
		logger:    logger.With("component", "mailer"),
	}, nil
}

type itemData struct {
	Name     string
	Quantity int
	Subtotal string
}

type orderData struct {
	OrderID      string
	DeliveryTime string
	Total        string
	Items        []itemData
	ShopName     string
}

func (m *Mailer) SendOrderAccepted(ctx context.Context, o *order.Order) error {
	return m.send(ctx, o, "order_accepted.html", fmt.Sprintf("Order #%s accepted", o.ID()))
}

func (m *Mailer) SendOrderRejected(ctx context.Context, o *order.Order) error {
	return m.send(ctx, o, "order_rejected.html", fmt.Sprintf("Order #%s could not be accepted", o.ID()))
}

// Wait blocks until every queued message was handed to the SMTP server or failed.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func (m *Mailer) send(ctx context.Context, o *order.Order, templateName, subject string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName, m.data(o)); err != nil {
		return fmt.Errorf("failed to render %s: %w", templateName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", o.CustomerEmail())
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	orderID := o.ID().Int64()
	logger := m.logger.With("order_id", orderID, "template", templateName)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.sender.DialAndSend(msg); err != nil {
			logger.Error("failed to send email", "error", err)
			return
		}
		logger.Info("email sent")
	}()

	logger.DebugContext(ctx, "email queued")
	return nil
}

func (m *Mailer) data(o *order.Order) orderData {
	data := orderData{
		OrderID:  o.ID().String(),
		Total:    o.Total().String(),
		ShopName: m.shopName,
	}
	if estimate, ok := o.DeliveryEstimate(); ok {
		data.DeliveryTime = estimate.String()
	}
	for _, item := range o.Items() {
		data.Items = append(data.Items, itemData{
			Name:     item.Name(),
			Quantity: item.Quantity(),
			Subtotal: item.Subtotal().String(),
		})
	}
	return data
}
