package service

import (
	"context"
	"errors"
	"fmt"

	"shpfusion-api/internal/client"
	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/money"
	"shpfusion-api/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrWebhookSignature marks an unverifiable webhook delivery; the handler
// answers 400 so the provider retries with a valid signature.
var ErrWebhookSignature = errors.New("webhook signature verification failed")

type PaymentService interface {
	CreateStripeSession(ctx context.Context, orderID string) (*dto.StripePaymentResponse, error)
	CreatePaypalOrder(ctx context.Context, orderID string) (*dto.PaypalPaymentResponse, error)
	// HandleStripeWebhook verifies and processes one webhook delivery.
	// Redelivered events and already-paid orders are acknowledged without
	// side effects.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	// CapturePaypal captures the approved PayPal order and returns the
	// page the customer should be redirected to.
	CapturePaypal(ctx context.Context, orderID string) (redirectURL string)
}

type paymentServiceImpl struct {
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	stripeClient     client.StripeClient
	paypalClient     client.PaypalClient
	emailService     EmailService
	baseURL          string
	brandName        string
	log              *zap.Logger
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	stripeClient client.StripeClient,
	paypalClient client.PaypalClient,
	emailService EmailService,
	baseURL string,
	log *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		stripeClient:     stripeClient,
		paypalClient:     paypalClient,
		emailService:     emailService,
		baseURL:          baseURL,
		brandName:        "ShpFusion",
		log:              log,
	}
}

// loadPayableOrder applies the guards shared by both providers: the order
// must exist, must not be paid yet, and must carry a positive price even if
// a legacy record stored it as a non-numeric string.
func (s *paymentServiceImpl) loadPayableOrder(ctx context.Context, orderID string) (*model.Order, float64, error) {
	if orderID == "" {
		return nil, 0, invalid("Order ID is required")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrOrderNotFound
		}
		return nil, 0, fmt.Errorf("find order %s: %w", orderID, err)
	}

	if order.Status == model.OrderStatusPaid {
		return nil, 0, ErrOrderAlreadyPaid
	}

	price := money.AmountFromString(order.ProductPrice)
	if price <= 0 {
		return nil, 0, invalid("Invalid product price")
	}

	return order, price, nil
}

func (s *paymentServiceImpl) CreateStripeSession(ctx context.Context, orderID string) (*dto.StripePaymentResponse, error) {
	order, price, err := s.loadPayableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	session, err := s.stripeClient.CreateCheckoutSession(&client.StripeCheckoutRequest{
		OrderID:       order.ID,
		ProductTitle:  order.ProductTitle,
		UserName:      order.UserName,
		CustomerEmail: order.UserEmail,
		UnitAmount:    money.Cents(price),
		SuccessURL:    fmt.Sprintf("%s/success?session_id={CHECKOUT_SESSION_ID}&order_id=%s&payment_method=stripe", s.baseURL, order.ID),
		CancelURL:     fmt.Sprintf("%s/payment-select?orderId=%s", s.baseURL, order.ID),
	})
	if err != nil {
		s.log.Error("stripe session creation failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, ErrProviderUnavailable
	}

	if err := s.orderRepo.SetStripeSession(ctx, order.ID, session.SessionID); err != nil {
		return nil, fmt.Errorf("store stripe session id: %w", err)
	}

	return &dto.StripePaymentResponse{
		Success:     true,
		CheckoutURL: session.CheckoutURL,
		OrderID:     order.ID,
		SessionID:   session.SessionID,
	}, nil
}

func (s *paymentServiceImpl) CreatePaypalOrder(ctx context.Context, orderID string) (*dto.PaypalPaymentResponse, error) {
	order, price, err := s.loadPayableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp, err := s.paypalClient.CreateOrder(ctx, &client.PaypalCreateOrderRequest{
		OrderID:     order.ID,
		Description: order.ProductTitle,
		Amount:      money.Format(price),
		BrandName:   s.brandName,
		ReturnURL:   fmt.Sprintf("%s/api/paypal-capture?orderId=%s", s.baseURL, order.ID),
		CancelURL:   fmt.Sprintf("%s/payment-select?orderId=%s", s.baseURL, order.ID),
	})
	if err != nil {
		s.log.Error("paypal order creation failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, ErrProviderUnavailable
	}

	if err := s.orderRepo.SetPaypalOrder(ctx, order.ID, resp.PaypalOrderID); err != nil {
		return nil, fmt.Errorf("store paypal order id: %w", err)
	}

	return &dto.PaypalPaymentResponse{
		Success:       true,
		ApproveURL:    resp.ApproveURL,
		OrderID:       order.ID,
		PaypalOrderID: resp.PaypalOrderID,
	}, nil
}

func (s *paymentServiceImpl) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.stripeClient.ParseWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWebhookSignature, err)
	}

	if !event.Completed && !event.Expired {
		return nil
	}

	// event-id dedupe catches redeliveries before touching the order
	processed, err := s.webhookEventRepo.Exists(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		s.log.Info("duplicate webhook event ignored", zap.String("event_id", event.EventID))
		return nil
	}

	if event.OrderID == "" {
		return invalid("Missing order metadata")
	}

	order, err := s.orderRepo.FindByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("find order %s: %w", event.OrderID, err)
	}

	if event.Expired {
		if err := s.orderRepo.MarkCancelled(ctx, order.ID); err != nil {
			return fmt.Errorf("mark order cancelled: %w", err)
		}
		s.log.Info("order cancelled, stripe session expired", zap.String("order_id", order.ID))
		if err := s.webhookEventRepo.MarkProcessed(ctx, event.EventID, event.EventType); err != nil {
			s.log.Error("mark webhook event processed", zap.String("event_id", event.EventID), zap.Error(err))
		}
		return nil
	}

	transitioned, err := s.orderRepo.MarkPaid(ctx, order.ID, repository.PaidUpdate{
		PaymentMethod:         model.PaymentMethodStripe,
		StripePaymentIntentID: event.PaymentIntentID,
	})
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if transitioned {
		s.log.Info("order paid via stripe webhook",
			zap.String("order_id", order.ID), zap.String("event_id", event.EventID))
		s.emailService.SendOrderConfirmation(ctx, order)
	} else {
		s.log.Info("duplicate webhook for paid order ignored", zap.String("order_id", order.ID))
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.log.Error("mark webhook event processed", zap.String("event_id", event.EventID), zap.Error(err))
	}

	return nil
}

func (s *paymentServiceImpl) CapturePaypal(ctx context.Context, orderID string) string {
	failureURL := fmt.Sprintf("%s/payment-failed?orderId=%s", s.baseURL, orderID)
	if orderID == "" {
		return s.baseURL + "/payment-failed"
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil || order.PaypalOrderID == "" {
		s.log.Error("paypal capture: order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		return failureURL
	}

	if order.Status == model.OrderStatusPaid {
		// the redirect may be replayed; don't capture twice
		return fmt.Sprintf("%s/success?order_id=%s&payment_method=paypal", s.baseURL, orderID)
	}

	capture, err := s.paypalClient.CaptureOrder(ctx, order.PaypalOrderID)
	if err != nil {
		s.log.Error("paypal capture request failed", zap.String("order_id", orderID), zap.Error(err))
		return failureURL
	}

	if capture.Status != "COMPLETED" {
		message := capture.Message
		if message == "" {
			message = "Capture failed"
		}
		if err := s.orderRepo.MarkFailed(ctx, orderID, message); err != nil {
			s.log.Error("mark order failed", zap.String("order_id", orderID), zap.Error(err))
		}
		return failureURL
	}

	transitioned, err := s.orderRepo.MarkPaid(ctx, orderID, repository.PaidUpdate{
		PaymentMethod: model.PaymentMethodPaypal,
		PaymentID:     capture.CaptureID,
	})
	if err != nil {
		s.log.Error("mark order paid", zap.String("order_id", orderID), zap.Error(err))
		return failureURL
	}

	if transitioned {
		s.log.Info("order paid via paypal capture",
			zap.String("order_id", orderID), zap.String("capture_id", capture.CaptureID))
		s.emailService.SendOrderConfirmation(ctx, order)
	}

	return fmt.Sprintf("%s/success?order_id=%s&payment_method=paypal", s.baseURL, orderID)
}
