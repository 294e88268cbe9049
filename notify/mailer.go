// Package notify sends booking emails through go-mail using the transport
// and templates stored in settings.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"kartbook/models"
	"kartbook/timeslot"

	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("email transport is not configured")

// Sender delivers prepared messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Dialer returns a Sender for the given transport settings.
type Dialer func(models.EmailSettings) (Sender, error)

type SettingsSource interface {
	Current(ctx context.Context) (*models.Settings, error)
}

// Mailer implements booking.Notifier and settings.TestMailer.
type Mailer struct {
	Settings SettingsSource
	Dial     Dialer
}

func NewMailer(settings SettingsSource) *Mailer {
	return &Mailer{Settings: settings, Dial: DialSMTP}
}

// SendBookingConfirmation mails the customer, then the admin recipients.
// Only the customer message decides the result.
func (m *Mailer) SendBookingConfirmation(ctx context.Context, b *models.Booking) error {
	s, sender, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	msg, err := m.templated(s, models.TemplateBookingConfirmation, b, b.CustomerEmail)
	if err != nil {
		return err
	}
	if err := sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}

	if len(s.AdminNotificationEmails) == 0 {
		return nil
	}
	admin, err := m.templated(s, models.TemplateAdminNotification, b, s.AdminNotificationEmails...)
	if err != nil {
		log.Printf("[Notify] admin notification for %s: %v", b.ID, err)
		return nil
	}
	if err := sender.DialAndSendWithContext(ctx, admin); err != nil {
		log.Printf("[Notify] admin notification for %s: %v", b.ID, err)
	}
	return nil
}

func (m *Mailer) SendBookingCancellation(ctx context.Context, b *models.Booking) error {
	s, sender, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	msg, err := m.templated(s, models.TemplateBookingCancellation, b, b.CustomerEmail)
	if err != nil {
		return err
	}
	if err := sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send cancellation: %w", err)
	}
	return nil
}

// SendTest checks the configured transport end to end.
func (m *Mailer) SendTest(ctx context.Context, to string) error {
	s, sender, err := m.prepare(ctx)
	if err != nil {
		return err
	}
	msg, err := newMsg(s, "Test email from "+s.BusinessName,
		"<p>This is a test email from "+html.EscapeString(s.BusinessName)+". Your email settings are working.</p>", to)
	if err != nil {
		return err
	}
	return sender.DialAndSendWithContext(ctx, msg)
}

func (m *Mailer) prepare(ctx context.Context) (*models.Settings, Sender, error) {
	s, err := m.Settings.Current(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	dial := m.Dial
	if dial == nil {
		dial = DialSMTP
	}
	sender, err := dial(s.EmailSettings)
	if err != nil {
		return nil, nil, err
	}
	return s, sender, nil
}

func (m *Mailer) templated(s *models.Settings, kind string, b *models.Booking, to ...string) (*mail.Msg, error) {
	tmpl, ok := s.Template(kind)
	if !ok {
		return nil, fmt.Errorf("email template %q not found", kind)
	}
	subject, body := Render(tmpl, b, s)
	return newMsg(s, subject, body, to...)
}

func newMsg(s *models.Settings, subject, body string, to ...string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.BusinessName, s.BusinessEmail); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

// Render fills the {{placeholders}} of tmpl for b. Customer-supplied values
// are HTML-escaped in the body.
func Render(tmpl models.EmailTemplate, b *models.Booking, s *models.Settings) (subject, body string) {
	slots := make([]string, 0, len(b.SelectedTimeslots))
	for _, k := range b.SelectedTimeslots {
		slots = append(slots, timeslot.Format(k))
	}
	values := func(escape func(string) string) *strings.Replacer {
		return strings.NewReplacer(
			"{{customerName}}", escape(b.CustomerName),
			"{{customerEmail}}", escape(b.CustomerEmail),
			"{{customerPhone}}", escape(b.CustomerPhone),
			"{{date}}", b.Date,
			"{{startTime}}", b.StartTime,
			"{{endTime}}", b.EndTime,
			"{{timeslots}}", strings.Join(slots, ", "),
			"{{totalPrice}}", b.TotalPrice.StringFixed(),
			"{{businessName}}", escape(s.BusinessName),
			"{{bookingId}}", b.ID,
		)
	}
	plain := func(v string) string { return v }
	return values(plain).Replace(tmpl.Subject), values(html.EscapeString).Replace(tmpl.Body)
}
