package handler

import (
	"errors"
	"io"
	"net/http"

	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	log            *zap.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		log:            log,
	}
}

func (h *PaymentHandler) CreateStripePayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.paymentService.CreateStripeSession(ctx, req.OrderID)
	if err != nil {
		return writeServiceError(c, err, "Payment service temporarily unavailable")
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CreatePaypalPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.paymentService.CreatePaypalOrder(ctx, req.OrderID)
	if err != nil {
		return writeServiceError(c, err, "Payment service temporarily unavailable")
	}

	return c.JSON(http.StatusOK, resp)
}

// StripeWebhook receives checkout.session.completed events. Signature
// failures get a 400 so Stripe retries; processing errors after a verified
// signature are answered 200 to stop endless redelivery, with the failure
// logged for operators.
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return c.String(http.StatusBadRequest, "Missing signature")
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid body")
	}

	if err := h.paymentService.HandleStripeWebhook(ctx, payload, signature); err != nil {
		if errors.Is(err, service.ErrWebhookSignature) {
			return c.String(http.StatusBadRequest, "Webhook signature verification failed")
		}
		h.log.Error("stripe webhook processing failed", zap.Error(err))
		return c.String(http.StatusOK, "OK")
	}

	return c.String(http.StatusOK, "OK")
}

// PaypalCapture is PayPal's return redirect target; the customer lands here
// after approving the payment and is forwarded to the success or failure page.
func (h *PaymentHandler) PaypalCapture(c echo.Context) error {
	ctx := c.Request().Context()

	redirectURL := h.paymentService.CapturePaypal(ctx, c.QueryParam("orderId"))
	return c.Redirect(http.StatusFound, redirectURL)
}
