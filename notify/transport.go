package notify

import (
	"fmt"
	"strings"

	"kartbook/models"

	"github.com/wneessen/go-mail"
)

const (
	sendgridHost = "smtp.sendgrid.net"
	mailgunHost  = "smtp.mailgun.org"
)

// DialSMTP builds a go-mail client for the configured provider. SendGrid
// authenticates with the fixed user "apikey" and the API key as password.
func DialSMTP(es models.EmailSettings) (Sender, error) {
	host, user, pass := es.Host, es.Username, es.Password
	switch strings.ToLower(es.Provider) {
	case "", "smtp":
	case "sendgrid":
		host, user, pass = sendgridHost, "apikey", es.APIKey
	case "mailgun":
		host = mailgunHost
		if pass == "" {
			pass = es.APIKey
		}
	default:
		return nil, fmt.Errorf("unknown email provider %q", es.Provider)
	}
	if host == "" || pass == "" {
		return nil, ErrNotConfigured
	}
	port := es.Port
	if port == 0 {
		port = 587
	}

	// The port policy options reset the port, so WithPort comes after them.
	policy := mail.WithTLSPortPolicy(mail.TLSMandatory)
	if port == 465 {
		policy = mail.WithSSLPort(false)
	}
	opts := []mail.Option{
		policy,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
	}
	c, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}
