// Package mailer delivers rendered invoices to customers over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"

	"sportshop-be/internal/config"
	"sportshop-be/internal/logger"
	"sportshop-be/internal/order"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	invoiceSubject = "Invoice"
	invoiceBody    = "Thank you for your order. Please find your invoice attached."
)

type smtpMailer struct {
	client *mail.Client
	sender string
}

// NewSMTPMailer builds the process-wide mail relay client. It is
// created once at startup and shared by every request; the relay
// handshake happens per send, not per construction.
func NewSMTPMailer(cfg *config.Config) (order.Dispatcher, error) {
	if cfg.SMTPSender == "" {
		logger.L().Warn("SMTP sender is empty")
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &smtpMailer{
		client: client,
		sender: cfg.SMTPSender,
	}, nil
}

// SendInvoice attaches the finished artifact and blocks until the
// relay accepts or rejects the message. Relay errors are returned
// as-is; retrying is the caller's decision and is deliberately not
// done here.
func (m *smtpMailer) SendInvoice(ctx context.Context, o *order.Order, pdf []byte) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_code", o.Code),
		zap.String("recipient", o.Customer.Email),
		zap.Int("attachment_bytes", len(pdf)),
	)

	msg, err := buildInvoiceMessage(m.sender, o, pdf)
	if err != nil {
		log.Error("failed to build invoice message", zap.Error(err))
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error("mail relay rejected invoice", zap.Error(err))
		return err
	}

	log.Info("invoice mail accepted by relay")
	return nil
}

func buildInvoiceMessage(sender string, o *order.Order, pdf []byte) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(o.Customer.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(invoiceSubject)
	msg.SetBodyString(mail.TypeTextPlain, invoiceBody)

	name := fmt.Sprintf("invoice-%s.pdf", o.Code)
	if err := msg.AttachReader(name, bytes.NewReader(pdf)); err != nil {
		return nil, fmt.Errorf("failed to attach invoice: %w", err)
	}

	return msg, nil
}
