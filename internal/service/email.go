package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	"time"

	"shpfusion-api/internal/client"
	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/money"

	"go.uber.org/zap"
)

type EmailService interface {
	// SendOrderConfirmation sends the customer receipt and the admin
	// notification. Failures are logged, never propagated: the paid
	// transition has already happened. Reports whether the reference file
	// was attached to the admin mail.
	SendOrderConfirmation(ctx context.Context, order *model.Order) bool
	SendVerificationEmail(ctx context.Context, user *model.User, token string) error
	SendResetEmail(ctx context.Context, user *model.User, token string) error
	SendContactMessage(ctx context.Context, req *dto.ContactRequest) error
	SendSubscribeWelcome(ctx context.Context, email string) error
}

type emailServiceImpl struct {
	emailClient client.EmailClient
	adminEmail  string
	baseURL     string
	log         *zap.Logger
}

func NewEmailService(emailClient client.EmailClient, adminEmail, baseURL string, log *zap.Logger) EmailService {
	return &emailServiceImpl{
		emailClient: emailClient,
		adminEmail:  adminEmail,
		baseURL:     baseURL,
		log:         log,
	}
}

var userConfirmationTmpl = template.Must(template.New("userConfirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 10px;">
  <h2 style="color: #22c55e; text-align: center;">Payment Successful!</h2>
  <p>Dear <strong>{{.UserName}}</strong>,</p>
  <p>Thank you for your purchase! Your payment for <strong>{{.ProductTitle}}</strong> has been successfully processed.</p>
  <div style="background: #f8f9fa; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #333; margin-top: 0;">Order Summary:</h3>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 8px;"><strong>Product:</strong></td><td style="padding: 8px;">{{.ProductTitle}}</td></tr>
      <tr><td style="padding: 8px;"><strong>Amount Paid:</strong></td><td style="padding: 8px;">${{.Price}}</td></tr>
      <tr><td style="padding: 8px;"><strong>Order ID:</strong></td><td style="padding: 8px;">{{.OrderID}}</td></tr>
    </table>
  </div>
  <div style="background: #e3f2fd; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #1565c0; margin-top: 0;">Your Requirements:</h3>
    <p style="white-space: pre-wrap;">{{.Requirement}}</p>
    {{if .Additional}}<p><strong>Additional Notes:</strong><br>{{.Additional}}</p>{{end}}
  </div>
  <p>We will review your requirements and contact you within <strong>24 hours</strong>.</p>
</div>`))

var adminNotificationTmpl = template.Must(template.New("adminNotification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #d63384;">NEW PAID ORDER</h2>
  <div style="background: #fff3cd; padding: 15px; border-radius: 8px; margin: 15px 0;">
    <h3 style="color: #856404; margin-top: 0;">Customer Information</h3>
    <p><strong>Name:</strong> {{.UserName}}</p>
    <p><strong>Email:</strong> {{.UserEmail}}</p>
    <p><strong>Order ID:</strong> {{.OrderID}}</p>
    <p><strong>Paid At:</strong> {{.PaidAt}}</p>
  </div>
  <div style="background: #d1ecf1; padding: 15px; border-radius: 8px; margin: 15px 0;">
    <h3 style="color: #0c5460; margin-top: 0;">Order Details</h3>
    <p><strong>Product:</strong> {{.ProductTitle}}</p>
    <p><strong>Price:</strong> ${{.Price}}</p>
    <p><strong>Requirement:</strong></p>
    <div style="background: white; padding: 10px; border-radius: 5px; white-space: pre-wrap;">{{.Requirement}}</div>
    {{if .Additional}}<p><strong>Additional Notes:</strong></p>
    <div style="background: white; padding: 10px; border-radius: 5px;">{{.Additional}}</div>{{end}}
  </div>
  {{if .FileAttached}}
  <p><strong>Reference file attached.</strong></p>
  {{else}}
  <p>No reference file was attached by the customer.</p>
  {{end}}
</div>`))

var accountEmailTmpl = template.Must(template.New("accountEmail").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Hi {{.UserName}},</h2>
  <p>{{.Intro}}</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">{{.Action}}</a>
  </div>
  <p style="font-size: 13px; color: #666;">Or paste this link in your browser:<br>{{.Link}}</p>
  <p style="font-size: 13px; color: #666;">If this wasn't you, please ignore this message.</p>
</div>`))

type orderEmailData struct {
	UserName     string
	UserEmail    string
	ProductTitle string
	Price        string
	OrderID      string
	Requirement  string
	Additional   string
	PaidAt       string
	FileAttached bool
}

func (s *emailServiceImpl) SendOrderConfirmation(ctx context.Context, order *model.Order) bool {
	var attachments []client.EmailAttachment
	if mimeType, content, ok := parseDataURI(order.ReferenceFile); ok {
		if len(content) > MaxUploadSize {
			s.log.Warn("reference file too large for email attachment, skipping",
				zap.String("order_id", order.ID), zap.Int("size", len(content)))
		} else {
			attachments = append(attachments, client.EmailAttachment{
				Filename:    fmt.Sprintf("reference-%s.%s", order.ID, extensionForMime(mimeType)),
				Content:     content,
				ContentType: mimeType,
			})
		}
	}

	data := orderEmailData{
		UserName:     order.UserName,
		UserEmail:    order.UserEmail,
		ProductTitle: order.ProductTitle,
		Price:        money.Format(money.AmountFromString(order.ProductPrice)),
		OrderID:      order.ID,
		Requirement:  order.Requirement,
		Additional:   order.Additional,
		PaidAt:       time.Now().Format(time.RFC1123),
		FileAttached: len(attachments) > 0,
	}

	if html, err := render(userConfirmationTmpl, data); err != nil {
		s.log.Error("render user confirmation", zap.Error(err))
	} else if err := s.emailClient.Send(ctx, &client.Email{
		To:      order.UserEmail,
		Subject: "Order Confirmed - " + order.ProductTitle,
		HTML:    html,
	}); err != nil {
		s.log.Error("send user confirmation", zap.String("order_id", order.ID), zap.Error(err))
	}

	if html, err := render(adminNotificationTmpl, data); err != nil {
		s.log.Error("render admin notification", zap.Error(err))
	} else if err := s.emailClient.Send(ctx, &client.Email{
		To:          s.adminEmail,
		Subject:     fmt.Sprintf("New Order: %s - %s - $%s", order.UserName, order.ProductTitle, data.Price),
		HTML:        html,
		Attachments: attachments,
	}); err != nil {
		s.log.Error("send admin notification", zap.String("order_id", order.ID), zap.Error(err))
	}

	return len(attachments) > 0
}

type accountEmailData struct {
	UserName string
	Intro    string
	Link     string
	Action   string
}

func (s *emailServiceImpl) SendVerificationEmail(ctx context.Context, user *model.User, token string) error {
	html, err := render(accountEmailTmpl, accountEmailData{
		UserName: user.Username,
		Intro:    "Welcome to ShpFusion! Please verify your email address to activate your account.",
		Link:     fmt.Sprintf("%s/verifyemail?token=%s", s.baseURL, token),
		Action:   "Verify Your Email",
	})
	if err != nil {
		return err
	}

	return s.emailClient.Send(ctx, &client.Email{
		To:      user.Email,
		Subject: "Verify your email",
		HTML:    html,
	})
}

func (s *emailServiceImpl) SendResetEmail(ctx context.Context, user *model.User, token string) error {
	html, err := render(accountEmailTmpl, accountEmailData{
		UserName: user.Username,
		Intro:    "We received a request to reset your password.",
		Link:     fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token),
		Action:   "Reset Your Password",
	})
	if err != nil {
		return err
	}

	return s.emailClient.Send(ctx, &client.Email{
		To:      user.Email,
		Subject: "Reset your password",
		HTML:    html,
	})
}

func (s *emailServiceImpl) SendContactMessage(ctx context.Context, req *dto.ContactRequest) error {
	serviceList := "No service selected"
	if len(req.Services) > 0 {
		serviceList = strings.Join(req.Services, ", ")
	}

	html := fmt.Sprintf(`
<h2>New Contact Message</h2>
<p><strong>Name:</strong> %s %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>
<p><strong>Services Selected:</strong> %s</p>`,
		template.HTMLEscapeString(req.FirstName),
		template.HTMLEscapeString(req.LastName),
		template.HTMLEscapeString(req.Email),
		template.HTMLEscapeString(req.Message),
		template.HTMLEscapeString(serviceList))

	return s.emailClient.Send(ctx, &client.Email{
		To:      s.adminEmail,
		Subject: "New Contact Form Submission",
		HTML:    html,
	})
}

func (s *emailServiceImpl) SendSubscribeWelcome(ctx context.Context, email string) error {
	return s.emailClient.Send(ctx, &client.Email{
		To:      email,
		Subject: "Subscription Successful",
		HTML:    "<h2>Thanks for subscribing!</h2>",
	})
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// parseDataURI splits a "data:<mime>;base64,<payload>" string into its mime
// type and decoded content.
func parseDataURI(uri string) (mimeType string, content []byte, ok bool) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, false
	}

	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, false
	}

	mimeType = rest[:sep]
	decoded, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, false
	}

	return mimeType, decoded, true
}

func extensionForMime(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "pdf"):
		return "pdf"
	case strings.Contains(mimeType, "png"):
		return "png"
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return "jpg"
	case strings.Contains(mimeType, "gif"):
		return "gif"
	case strings.Contains(mimeType, "zip"):
		return "zip"
	case strings.Contains(mimeType, "text"):
		return "txt"
	default:
		return "bin"
	}
}
