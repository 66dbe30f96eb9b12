package client

import (
	"encoding/json"
	"fmt"
	"time"

	"shpfusion-api/internal/config"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeClient interface {
	CreateCheckoutSession(req *StripeCheckoutRequest) (*StripeCheckoutResponse, error)
	// ParseWebhook verifies the signature and extracts the checkout session
	// payload for completed and expired sessions. Events of other types come
	// back with both flags false.
	ParseWebhook(payload []byte, signature string) (*StripeWebhookEvent, error)
}

type stripeClientImpl struct {
	webhookSecret string
}

type StripeCheckoutRequest struct {
	OrderID       string
	ProductTitle  string
	UserName      string
	CustomerEmail string
	// integer cents
	UnitAmount int64
	SuccessURL string
	CancelURL  string
}

type StripeCheckoutResponse struct {
	SessionID   string
	CheckoutURL string
}

type StripeWebhookEvent struct {
	EventID         string
	EventType       string
	Completed       bool
	Expired         bool
	SessionID       string
	OrderID         string
	PaymentIntentID string
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	stripe.Key = stripeCfg.SecretKey
	return &stripeClientImpl{webhookSecret: stripeCfg.WebhookSecret}
}

func (c *stripeClientImpl) CreateCheckoutSession(req *StripeCheckoutRequest) (*StripeCheckoutResponse, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductTitle),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		ExpiresAt:     stripe.Int64(time.Now().Add(30 * time.Minute).Unix()),
	}
	params.AddMetadata("orderId", req.OrderID)
	params.AddMetadata("userName", req.UserName)
	params.AddMetadata("productTitle", req.ProductTitle)
	params.AddMetadata("paymentMethod", "stripe")

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}

	return &StripeCheckoutResponse{
		SessionID:   s.ID,
		CheckoutURL: s.URL,
	}, nil
}

func (c *stripeClientImpl) ParseWebhook(payload []byte, signature string) (*StripeWebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify stripe webhook signature: %w", err)
	}

	parsed := &StripeWebhookEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	if event.Type != "checkout.session.completed" && event.Type != "checkout.session.expired" {
		return parsed, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session payload: %w", err)
	}

	parsed.Completed = event.Type == "checkout.session.completed"
	parsed.Expired = event.Type == "checkout.session.expired"
	parsed.SessionID = cs.ID
	parsed.OrderID = cs.Metadata["orderId"]
	if cs.PaymentIntent != nil {
		parsed.PaymentIntentID = cs.PaymentIntent.ID
	}

	return parsed, nil
}
