package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, to, userName, doctorName, slotDate, slotTime string) error
	SendCancellation(ctx context.Context, to, userName, doctorName, slotDate, slotTime string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to, userName, doctorName, slotDate, slotTime string) error {
	subject := "Appointment Confirmed"
	content := fmt.Sprintf(
		"Dear %s,\n\nYour appointment with %s on %s at %s is confirmed.\n\nThank you for booking with us.",
		userName, doctorName, slotDate, slotTime,
	)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *smtpService) SendCancellation(ctx context.Context, to, userName, doctorName, slotDate, slotTime string) error {
	subject := "Appointment Cancelled"
	content := fmt.Sprintf(
		"Dear %s,\n\nYour appointment with %s on %s at %s has been cancelled. The slot is available again for rebooking.",
		userName, doctorName, slotDate, slotTime,
	)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// NoopService is used when SMTP is not configured; sends are logged by
// the caller and dropped here.
type NoopService struct{}

func (NoopService) SendBookingConfirmation(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopService) SendCancellation(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopService) SendCustom(context.Context, string, string, string) error { return nil }
