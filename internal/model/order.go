package model

import "time"

const (
	// OrderStatusPaymentPending is the canonical initial state: the order is
	// saved and the customer still has to pick a payment method.
	OrderStatusPaymentPending = "payment_pending"
	// OrderStatusPending means a Stripe Checkout Session has been issued.
	OrderStatusPending = "pending"
	// OrderStatusPaypalPending means a PayPal order awaits approval/capture.
	OrderStatusPaypalPending = "paypal_pending"
	OrderStatusPaid          = "paid"
	OrderStatusFailed        = "failed"
	OrderStatusCancelled     = "cancelled"
)

const (
	PaymentMethodStripe = "stripe"
	PaymentMethodPaypal = "paypal"
)

type Order struct {
	ID string `gorm:"primaryKey;size:64;not null"`

	// product snapshot at the time of the request
	ProductID    string `gorm:"size:64;index;not null"`
	ProductTitle string `gorm:"size:255;not null"`
	// stored as text: legacy records carry numeric strings, see money package
	ProductPrice string `gorm:"size:32;not null"`

	UserName    string `gorm:"size:255;not null"`
	UserEmail   string `gorm:"size:255;index;not null"`
	Requirement string `gorm:"type:text;not null"`
	Additional  string `gorm:"type:text"`

	// optional customer upload as a base64 data-URI
	ReferenceFile string `gorm:"type:longtext"`

	Status string `gorm:"size:32;index;not null"`

	StripeSessionID       string `gorm:"size:128;index"`
	StripePaymentIntentID string `gorm:"size:128"`
	PaypalOrderID         string `gorm:"size:64;index"`
	PaymentMethod         string `gorm:"size:16"`
	PaymentID             string `gorm:"size:128"`
	PaymentError          string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

// WebhookEvent records provider event ids that have already been processed so
// redelivered webhooks are acknowledged without side effects.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
