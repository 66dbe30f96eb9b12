package service

import (
	"context"
	"errors"
	"testing"

	"shpfusion-api/internal/client"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentTestEnv struct {
	orderRepo    *MockOrderRepository
	webhookRepo  *MockWebhookEventRepository
	stripeClient *MockStripeClient
	paypalClient *MockPaypalClient
	emailService *MockEmailService
	service      PaymentService
}

func newPaymentTestEnv() *paymentTestEnv {
	env := &paymentTestEnv{
		orderRepo:    new(MockOrderRepository),
		webhookRepo:  new(MockWebhookEventRepository),
		stripeClient: new(MockStripeClient),
		paypalClient: new(MockPaypalClient),
		emailService: new(MockEmailService),
	}
	env.service = NewPaymentService(
		env.orderRepo,
		env.webhookRepo,
		env.stripeClient,
		env.paypalClient,
		env.emailService,
		"http://localhost:3000",
		zap.NewNop(),
	)
	return env
}

func pendingOrder() *model.Order {
	return &model.Order{
		ID:           "order-1",
		ProductTitle: "Stream Overlay Pack",
		ProductPrice: "19.99",
		UserName:     "Jamie",
		UserEmail:    "jamie@example.com",
		Status:       model.OrderStatusPaymentPending,
	}
}

func TestCreateStripeSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates session and stores its id", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.orderRepo.On("FindByID", ctx, "order-1").Return(pendingOrder(), nil)
		env.stripeClient.On("CreateCheckoutSession", mock.MatchedBy(func(req *client.StripeCheckoutRequest) bool {
			return req.OrderID == "order-1" && req.UnitAmount == 1999
		})).Return(&client.StripeCheckoutResponse{
			SessionID:   "cs_test_1",
			CheckoutURL: "https://checkout.stripe.com/pay/cs_test_1",
		}, nil)
		env.orderRepo.On("SetStripeSession", ctx, "order-1", "cs_test_1").Return(nil)

		resp, err := env.service.CreateStripeSession(ctx, "order-1")

		assert.NoError(t, err)
		assert.Equal(t, "cs_test_1", resp.SessionID)
		assert.NotEmpty(t, resp.CheckoutURL)
		env.orderRepo.AssertExpectations(t)
	})

	t.Run("Rejects already paid order", func(t *testing.T) {
		env := newPaymentTestEnv()

		paid := pendingOrder()
		paid.Status = model.OrderStatusPaid
		env.orderRepo.On("FindByID", ctx, "order-1").Return(paid, nil)

		_, err := env.service.CreateStripeSession(ctx, "order-1")

		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
		env.stripeClient.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything)
	})

	t.Run("Provider failure maps to unavailable", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.orderRepo.On("FindByID", ctx, "order-1").Return(pendingOrder(), nil)
		env.stripeClient.On("CreateCheckoutSession", mock.Anything).
			Return(nil, errors.New("stripe: api error"))

		_, err := env.service.CreateStripeSession(ctx, "order-1")

		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("Unknown order", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.orderRepo.On("FindByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := env.service.CreateStripeSession(ctx, "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestCreatePaypalOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates order with formatted amount", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.orderRepo.On("FindByID", ctx, "order-1").Return(pendingOrder(), nil)
		env.paypalClient.On("CreateOrder", ctx, mock.MatchedBy(func(req *client.PaypalCreateOrderRequest) bool {
			return req.OrderID == "order-1" && req.Amount == "19.99"
		})).Return(&client.PaypalCreateOrderResponse{
			PaypalOrderID: "PP-ORDER-1",
			ApproveURL:    "https://www.paypal.com/checkoutnow?token=PP-ORDER-1",
		}, nil)
		env.orderRepo.On("SetPaypalOrder", ctx, "order-1", "PP-ORDER-1").Return(nil)

		resp, err := env.service.CreatePaypalOrder(ctx, "order-1")

		assert.NoError(t, err)
		assert.Equal(t, "PP-ORDER-1", resp.PaypalOrderID)
		assert.NotEmpty(t, resp.ApproveURL)
		env.orderRepo.AssertExpectations(t)
	})

	t.Run("Rejects already paid order", func(t *testing.T) {
		env := newPaymentTestEnv()

		paid := pendingOrder()
		paid.Status = model.OrderStatusPaid
		env.orderRepo.On("FindByID", ctx, "order-1").Return(paid, nil)

		_, err := env.service.CreatePaypalOrder(ctx, "order-1")

		assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
		env.paypalClient.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func completedEvent(eventID string) *client.StripeWebhookEvent {
	return &client.StripeWebhookEvent{
		EventID:         eventID,
		EventType:       "checkout.session.completed",
		Completed:       true,
		SessionID:       "cs_test_1",
		OrderID:         "order-1",
		PaymentIntentID: "pi_test_1",
	}
}

func TestHandleStripeWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"id":"evt_1"}`)

	t.Run("First delivery marks paid and sends emails once", func(t *testing.T) {
		env := newPaymentTestEnv()
		order := pendingOrder()

		env.stripeClient.On("ParseWebhook", payload, "sig").Return(completedEvent("evt_1"), nil)
		env.webhookRepo.On("Exists", ctx, "evt_1").Return(false, nil)
		env.orderRepo.On("FindByID", ctx, "order-1").Return(order, nil)
		env.orderRepo.On("MarkPaid", ctx, "order-1", repository.PaidUpdate{
			PaymentMethod:         model.PaymentMethodStripe,
			StripePaymentIntentID: "pi_test_1",
		}).Return(true, nil)
		env.emailService.On("SendOrderConfirmation", ctx, order).Return(false)
		env.webhookRepo.On("MarkProcessed", ctx, "evt_1", "checkout.session.completed").Return(nil)

		err := env.service.HandleStripeWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		env.emailService.AssertNumberOfCalls(t, "SendOrderConfirmation", 1)
		env.webhookRepo.AssertExpectations(t)
	})

	t.Run("Redelivered event id is ignored", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.stripeClient.On("ParseWebhook", payload, "sig").Return(completedEvent("evt_1"), nil)
		env.webhookRepo.On("Exists", ctx, "evt_1").Return(true, nil)

		err := env.service.HandleStripeWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		env.orderRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
		env.emailService.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("New event for already paid order sends no email", func(t *testing.T) {
		env := newPaymentTestEnv()
		order := pendingOrder()
		order.Status = model.OrderStatusPaid

		env.stripeClient.On("ParseWebhook", payload, "sig").Return(completedEvent("evt_2"), nil)
		env.webhookRepo.On("Exists", ctx, "evt_2").Return(false, nil)
		env.orderRepo.On("FindByID", ctx, "order-1").Return(order, nil)
		env.orderRepo.On("MarkPaid", ctx, "order-1", mock.Anything).Return(false, nil)
		env.webhookRepo.On("MarkProcessed", ctx, "evt_2", "checkout.session.completed").Return(nil)

		err := env.service.HandleStripeWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		env.emailService.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("Bad signature", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.stripeClient.On("ParseWebhook", payload, "bad").
			Return(nil, errors.New("signature mismatch"))

		err := env.service.HandleStripeWebhook(ctx, payload, "bad")

		assert.ErrorIs(t, err, ErrWebhookSignature)
	})

	t.Run("Expired session cancels the order", func(t *testing.T) {
		env := newPaymentTestEnv()
		order := pendingOrder()
		order.Status = model.OrderStatusPending

		env.stripeClient.On("ParseWebhook", payload, "sig").Return(&client.StripeWebhookEvent{
			EventID:   "evt_4",
			EventType: "checkout.session.expired",
			Expired:   true,
			SessionID: "cs_test_1",
			OrderID:   "order-1",
		}, nil)
		env.webhookRepo.On("Exists", ctx, "evt_4").Return(false, nil)
		env.orderRepo.On("FindByID", ctx, "order-1").Return(order, nil)
		env.orderRepo.On("MarkCancelled", ctx, "order-1").Return(nil)
		env.webhookRepo.On("MarkProcessed", ctx, "evt_4", "checkout.session.expired").Return(nil)

		err := env.service.HandleStripeWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		env.orderRepo.AssertExpectations(t)
		env.emailService.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("Irrelevant event type is acknowledged", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.stripeClient.On("ParseWebhook", payload, "sig").Return(&client.StripeWebhookEvent{
			EventID:   "evt_3",
			EventType: "payment_intent.created",
			Completed: false,
		}, nil)

		err := env.service.HandleStripeWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		env.webhookRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})
}

func TestCapturePaypal(t *testing.T) {
	ctx := context.Background()

	t.Run("Completed capture redirects to success", func(t *testing.T) {
		env := newPaymentTestEnv()
		order := pendingOrder()
		order.Status = model.OrderStatusPaypalPending
		order.PaypalOrderID = "PP-ORDER-1"

		env.orderRepo.On("FindByID", ctx, "order-1").Return(order, nil)
		env.paypalClient.On("CaptureOrder", ctx, "PP-ORDER-1").Return(&client.PaypalCaptureResult{
			Status:    "COMPLETED",
			CaptureID: "CAP-1",
		}, nil)
		env.orderRepo.On("MarkPaid", ctx, "order-1", repository.PaidUpdate{
			PaymentMethod: model.PaymentMethodPaypal,
			PaymentID:     "CAP-1",
		}).Return(true, nil)
		env.emailService.On("SendOrderConfirmation", ctx, order).Return(false)

		url := env.service.CapturePaypal(ctx, "order-1")

		assert.Contains(t, url, "/success")
		assert.Contains(t, url, "order-1")
		env.emailService.AssertNumberOfCalls(t, "SendOrderConfirmation", 1)
	})

	t.Run("Replayed redirect does not capture twice", func(t *testing.T) {
		env := newPaymentTestEnv()
		order := pendingOrder()
		order.Status = model.OrderStatusPaid
		order.PaypalOrderID = "PP-ORDER-1"

		env.orderRepo.On("FindByID", ctx, "order-1").Return(order, nil)

		url := env.service.CapturePaypal(ctx, "order-1")

		assert.Contains(t, url, "/success")
		env.paypalClient.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything)
	})

	t.Run("Declined capture marks order failed", func(t *testing.T) {
		env := newPaymentTestEnv()
		order := pendingOrder()
		order.Status = model.OrderStatusPaypalPending
		order.PaypalOrderID = "PP-ORDER-1"

		env.orderRepo.On("FindByID", ctx, "order-1").Return(order, nil)
		env.paypalClient.On("CaptureOrder", ctx, "PP-ORDER-1").Return(&client.PaypalCaptureResult{
			Status:  "FAILED",
			Message: "INSTRUMENT_DECLINED",
		}, nil)
		env.orderRepo.On("MarkFailed", ctx, "order-1", "INSTRUMENT_DECLINED").Return(nil)

		url := env.service.CapturePaypal(ctx, "order-1")

		assert.Contains(t, url, "/payment-failed")
		env.orderRepo.AssertExpectations(t)
	})

	t.Run("Unknown order redirects to failure", func(t *testing.T) {
		env := newPaymentTestEnv()

		env.orderRepo.On("FindByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

		url := env.service.CapturePaypal(ctx, "missing")
		assert.Contains(t, url, "/payment-failed")
	})
}
