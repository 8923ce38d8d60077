package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"jobportal/internal/config"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// ErrInvalidAddress marks a from or recipient address that cannot be parsed.
var ErrInvalidAddress = errors.New("invalid mail address")

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an authenticated SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender returns nil when mail is not configured.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	if !cfg.Enabled() {
		return nil
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("%w: from %q: %v", ErrInvalidAddress, s.from, err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrInvalidAddress, msg.To, err)
	}

	if err := s.send(s.addr, s.auth, from.Address, []string{to.Address}, buildMIME(from.String(), to.String(), msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to.Address, err)
	}
	return nil
}

func buildMIME(from, to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mimeHeader(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

func mimeHeader(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// ApplicationSubmitted carries the fields of the confirmation email.
type ApplicationSubmitted struct {
	UserName    string
	JobTitle    string
	CompanyName string
}

var applicationSubmittedTmpl = template.Must(template.New("application_submitted").Parse(`<h2>Hi {{.UserName}},</h2>
<p>Thank you for applying for the position of <strong>{{.JobTitle}}</strong> at <strong>{{.CompanyName}}</strong>.</p>
<p>We have received your application and will review it shortly.</p>
<p>Best regards,<br>{{.CompanyName}} HR Team</p>
`))

// RenderApplicationSubmitted builds the confirmation email for an applicant.
func RenderApplicationSubmitted(to string, data ApplicationSubmitted) (Message, error) {
	var buf bytes.Buffer
	if err := applicationSubmittedTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render application email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Application Submitted Successfully",
		HTML:    buf.String(),
	}, nil
}
