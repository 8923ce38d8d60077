package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/config"
)

func TestRenderApplicationSubmitted_EscapesInput(t *testing.T) {
	msg, err := RenderApplicationSubmitted("sam@example.com", ApplicationSubmitted{
		UserName:    "Sam <script>",
		JobTitle:    "Backend Engineer",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "Application Submitted Successfully", msg.Subject)
	assert.Contains(t, msg.HTML, "<strong>Backend Engineer</strong>")
	assert.Contains(t, msg.HTML, "Acme HR Team")
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestNewSMTPSender_DisabledWithoutHost(t *testing.T) {
	assert.Nil(t, NewSMTPSender(config.MailConfig{}))
}

func TestSMTPSender_Send(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example", Port: 587, Username: "u", Password: "p", From: "JobConnect <jobs@example.com>"})
	require.NotNil(t, s)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	err := s.Send(context.Background(), Message{To: "sam@example.com", Subject: "Hi\r\nBcc: x@example.com", HTML: "<p>hello</p>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example:587", gotAddr)
	assert.Equal(t, "jobs@example.com", gotFrom)
	assert.Equal(t, []string{"sam@example.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(body, "<p>hello</p>"))
	assert.NotContains(t, body, "\r\nBcc:")
}

func TestSMTPSender_RejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "smtp.example", Port: 25, From: "jobs@example.com"})
	err := s.Send(context.Background(), Message{To: "not-an-address"})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	s = NewSMTPSender(config.MailConfig{Host: "smtp.example", Port: 25, From: "jobs at example"})
	err = s.Send(context.Background(), Message{To: "sam@example.com"})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
