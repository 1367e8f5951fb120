package email

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmails struct {
	resend.EmailsSvc
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestRender_AllTemplatesWithPreviewData(t *testing.T) {
	for name, data := range PreviewData {
		html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, html, data["UserName"])
	}
}

func TestRender_EscapesHTML(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"UserName": "<script>"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestSendWelcomeEmail(t *testing.T) {
	logger := zerolog.Nop()
	fake := &fakeEmails{}
	c := &Client{emails: fake, from: "Users API <noreply@example.com>", logger: &logger}

	require.NoError(t, c.SendWelcomeEmail(context.Background(), "alice@example.com", "Alice"))

	require.Len(t, fake.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, fake.sent[0].To)
	assert.Equal(t, "Users API <noreply@example.com>", fake.sent[0].From)
	assert.Contains(t, fake.sent[0].Html, "Welcome, Alice!")
}

func TestSendEmail_ProviderError(t *testing.T) {
	logger := zerolog.Nop()
	c := &Client{emails: &fakeEmails{err: errors.New("boom")}, logger: &logger}

	err := c.SendWelcomeEmail(context.Background(), "a@x.io", "A")
	assert.ErrorContains(t, err, "failed to send email")
}

func TestNewClient_WithoutAPIKeySkipsDelivery(t *testing.T) {
	logger := zerolog.Nop()
	c := NewClient(&config.Config{}, &logger)
	assert.NoError(t, c.SendWelcomeEmail(context.Background(), "a@x.io", "A"))
}
