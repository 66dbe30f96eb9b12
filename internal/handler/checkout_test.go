package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/repository"
	"shpfusion-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memoryOrderRepo backs the handler tests without a database.
type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[string]*model.Order)}
}

func (r *memoryOrderRepo) Create(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrderRepo) FindByID(_ context.Context, orderID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memoryOrderRepo) FindByStripeSessionID(_ context.Context, sessionID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.StripeSessionID == sessionID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryOrderRepo) SetStripeSession(_ context.Context, orderID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.StripeSessionID = sessionID
	order.PaymentMethod = model.PaymentMethodStripe
	order.Status = model.OrderStatusPending
	return nil
}

func (r *memoryOrderRepo) SetPaypalOrder(_ context.Context, orderID, paypalOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.PaypalOrderID = paypalOrderID
	order.PaymentMethod = model.PaymentMethodPaypal
	order.Status = model.OrderStatusPaypalPending
	return nil
}

func (r *memoryOrderRepo) MarkPaid(_ context.Context, orderID string, paid repository.PaidUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status == model.OrderStatusPaid {
		return false, nil
	}
	order.Status = model.OrderStatusPaid
	if paid.PaymentMethod != "" {
		order.PaymentMethod = paid.PaymentMethod
	}
	return true, nil
}

func (r *memoryOrderRepo) MarkCancelled(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[orderID]; ok && order.Status != model.OrderStatusPaid {
		order.Status = model.OrderStatusCancelled
	}
	return nil
}

func (r *memoryOrderRepo) MarkFailed(_ context.Context, orderID, paymentError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[orderID]; ok {
		order.Status = model.OrderStatusFailed
		order.PaymentError = paymentError
	}
	return nil
}

// countingEmailService records order-confirmation sends.
type countingEmailService struct {
	mu            sync.Mutex
	confirmations int
}

func (s *countingEmailService) SendOrderConfirmation(context.Context, *model.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmations++
	return false
}

func (s *countingEmailService) SendVerificationEmail(context.Context, *model.User, string) error {
	return nil
}
func (s *countingEmailService) SendResetEmail(context.Context, *model.User, string) error { return nil }
func (s *countingEmailService) SendContactMessage(context.Context, *dto.ContactRequest) error {
	return nil
}
func (s *countingEmailService) SendSubscribeWelcome(context.Context, string) error { return nil }

type checkoutTestEnv struct {
	echo    *echo.Echo
	handler *CheckoutHandler
	emails  *countingEmailService
}

func newCheckoutTestEnv() *checkoutTestEnv {
	emails := &countingEmailService{}
	orderService := service.NewOrderService(newMemoryOrderRepo(), emails, "http://localhost:3000", zap.NewNop())
	return &checkoutTestEnv{
		echo:    echo.New(),
		handler: NewCheckoutHandler(orderService),
		emails:  emails,
	}
}

func checkoutForm(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func validFormFields() map[string]string {
	return map[string]string{
		"productId":    "prod-123",
		"productTitle": "Stream Overlay Pack",
		"productPrice": "19.99",
		"userName":     "Jamie",
		"userEmail":    "jamie@example.com",
		"requirement":  "Purple and gold theme, space background",
	}
}

func (env *checkoutTestEnv) doCheckout(t *testing.T, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	require.NoError(t, env.handler.Checkout(c))
	return rec
}

func TestCheckoutFlow(t *testing.T) {
	env := newCheckoutTestEnv()

	body, contentType := checkoutForm(t, validFormFields(), "", nil)
	rec := env.doCheckout(t, body, contentType)

	require.Equal(t, http.StatusOK, rec.Code)

	var checkout dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checkout))
	assert.True(t, checkout.Success)
	assert.NotEmpty(t, checkout.OrderID)
	assert.Contains(t, checkout.PaymentSelectURL, checkout.OrderID)

	// the payment-select page shows the new order as payment_pending
	req := httptest.NewRequest(http.MethodGet, "/api/payment-select?orderId="+checkout.OrderID, nil)
	rec = httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	require.NoError(t, env.handler.PaymentSelect(c))

	require.Equal(t, http.StatusOK, rec.Code)

	var selection dto.PaymentSelection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &selection))
	assert.Equal(t, checkout.OrderID, selection.OrderID)
	assert.Equal(t, "Stream Overlay Pack", selection.ProductTitle)
	assert.Equal(t, model.OrderStatusPaymentPending, selection.Status)
}

func TestCheckoutRejectsOversizedFile(t *testing.T) {
	env := newCheckoutTestEnv()

	body, contentType := checkoutForm(t, validFormFields(), "huge.png", make([]byte, service.MaxUploadSize+1))
	rec := env.doCheckout(t, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "10MB")
}

func TestCheckoutRejectsMissingFields(t *testing.T) {
	env := newCheckoutTestEnv()

	fields := validFormFields()
	delete(fields, "userEmail")
	body, contentType := checkoutForm(t, fields, "", nil)
	rec := env.doCheckout(t, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentSelectUnknownOrder(t *testing.T) {
	env := newCheckoutTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/payment-select?orderId=nope", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	require.NoError(t, env.handler.PaymentSelect(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmOrderIsIdempotent(t *testing.T) {
	env := newCheckoutTestEnv()

	body, contentType := checkoutForm(t, validFormFields(), "", nil)
	rec := env.doCheckout(t, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	var checkout dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checkout))

	confirm := func() *dto.ConfirmOrderResponse {
		payload := fmt.Sprintf(`{"orderId":%q}`, checkout.OrderID)
		req := httptest.NewRequest(http.MethodPost, "/api/confirm-order", bytes.NewBufferString(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(req, rec)
		require.NoError(t, env.handler.ConfirmOrder(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.ConfirmOrderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return &resp
	}

	first := confirm()
	assert.False(t, first.AlreadyProcessed)

	second := confirm()
	assert.True(t, second.AlreadyProcessed)

	assert.Equal(t, 1, env.emails.confirmations)
}
