package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"kartbook/memstore"
	"kartbook/models"
	"kartbook/settings"
	"kartbook/timeslot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type captureSender struct {
	sent []*mail.Msg
	fail error
}

func (c *captureSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	if c.fail != nil {
		return c.fail
	}
	c.sent = append(c.sent, msgs...)
	return nil
}

func newTestMailer(t *testing.T, sender *captureSender) *Mailer {
	t.Helper()
	s := settings.Defaults()
	s.AdminNotificationEmails = []string{"desk@example.com"}
	s.EmailTemplates = []models.EmailTemplate{
		{Type: models.TemplateBookingConfirmation, Subject: "Booked {{date}}", Body: "<p>Hi {{customerName}}, {{timeslots}} for {{totalPrice}}</p>"},
		{Type: models.TemplateBookingCancellation, Subject: "Cancelled {{date}}", Body: "<p>Bye {{customerName}}</p>"},
		{Type: models.TemplateAdminNotification, Subject: "New booking {{bookingId}}", Body: "<p>{{customerName}}</p>"},
	}
	return &Mailer{
		Settings: memstore.NewSettings(s),
		Dial:     func(models.EmailSettings) (Sender, error) { return sender, nil },
	}
}

func testBooking(t *testing.T) *models.Booking {
	a, err := timeslot.Parse("09:00-09:30")
	require.NoError(t, err)
	b, err := timeslot.Parse("09:30-10:00")
	require.NoError(t, err)
	return &models.Booking{
		ID:                "b-1",
		CustomerName:      "Mari <Tamm>",
		CustomerEmail:     "mari@example.com",
		Date:              "2025-06-02",
		StartTime:         "09:00",
		EndTime:           "10:00",
		SelectedTimeslots: []timeslot.Key{a, b},
		TotalPrice:        models.NewMoney(50),
	}
}

func subject(m *mail.Msg) string {
	if v := m.GetGenHeader(mail.HeaderSubject); len(v) > 0 {
		return v[0]
	}
	return ""
}

func TestRender(t *testing.T) {
	s := settings.Defaults()
	tmpl := models.EmailTemplate{Subject: "{{customerName}} on {{date}}", Body: "{{customerName}}|{{timeslots}}|{{totalPrice}}|{{businessName}}"}
	subj, body := Render(tmpl, testBooking(t), s)
	assert.Equal(t, "Mari <Tamm> on 2025-06-02", subj)
	assert.Equal(t, "Mari &lt;Tamm&gt;|09:00-09:30, 09:30-10:00|50.00|Kart Booking System", body)
}

func TestSendBookingConfirmation(t *testing.T) {
	sender := &captureSender{}
	m := newTestMailer(t, sender)

	require.NoError(t, m.SendBookingConfirmation(context.Background(), testBooking(t)))
	require.Len(t, sender.sent, 2)

	customer := sender.sent[0]
	assert.Equal(t, "Booked 2025-06-02", subject(customer))
	rcpts, err := customer.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"mari@example.com"}, rcpts)

	var buf bytes.Buffer
	_, err = customer.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Mari &lt;Tamm&gt;")

	admin := sender.sent[1]
	assert.Equal(t, "New booking b-1", subject(admin))
	rcpts, _ = admin.GetRecipients()
	assert.Equal(t, []string{"desk@example.com"}, rcpts)
}

func TestSendBookingConfirmationFails(t *testing.T) {
	sender := &captureSender{fail: errors.New("dial tcp: refused")}
	err := newTestMailer(t, sender).SendBookingConfirmation(context.Background(), testBooking(t))
	assert.ErrorContains(t, err, "refused")
}

func TestMissingTemplate(t *testing.T) {
	sender := &captureSender{}
	m := newTestMailer(t, sender)
	s, _ := m.Settings.Current(context.Background())
	s.EmailTemplates = nil
	m.Settings = memstore.NewSettings(s)

	assert.Error(t, m.SendBookingCancellation(context.Background(), testBooking(t)))
	assert.Empty(t, sender.sent)
}

func TestSendTest(t *testing.T) {
	sender := &captureSender{}
	require.NoError(t, newTestMailer(t, sender).SendTest(context.Background(), "ops@example.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Test email from Kart Booking System", subject(sender.sent[0]))
}

func TestDialSMTP(t *testing.T) {
	_, err := DialSMTP(models.EmailSettings{Provider: "smtp"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = DialSMTP(models.EmailSettings{Provider: "carrier-pigeon", Host: "x", Password: "y"})
	assert.Error(t, err)

	c, err := DialSMTP(models.EmailSettings{Provider: "sendgrid", APIKey: "SG.key"})
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = DialSMTP(models.EmailSettings{Provider: "smtp", Host: "mail.example.com", Port: 465, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
