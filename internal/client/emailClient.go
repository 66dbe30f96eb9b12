package client

import (
	"context"
	"fmt"

	"shpfusion-api/internal/config"

	"github.com/resend/resend-go/v2"
)

type EmailClient interface {
	Send(ctx context.Context, email *Email) error
}

type Email struct {
	To          string
	Subject     string
	HTML        string
	Attachments []EmailAttachment
}

type EmailAttachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

type resendClientImpl struct {
	client    *resend.Client
	fromEmail string
}

func NewEmailClient(resendCfg *config.Resend) EmailClient {
	return &resendClientImpl{
		client:    resend.NewClient(resendCfg.APIKey),
		fromEmail: resendCfg.FromEmail,
	}
}

func (c *resendClientImpl) Send(ctx context.Context, email *Email) error {
	params := &resend.SendEmailRequest{
		From:    c.fromEmail,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	}

	for _, a := range email.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	if _, err := c.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send to %s: %w", email.To, err)
	}
	return nil
}
