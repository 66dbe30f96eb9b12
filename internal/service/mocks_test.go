package service

import (
	"context"

	"shpfusion-api/internal/client"
	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock of repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) SetStripeSession(ctx context.Context, orderID, sessionID string) error {
	args := m.Called(ctx, orderID, sessionID)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaypalOrder(ctx context.Context, orderID, paypalOrderID string) error {
	args := m.Called(ctx, orderID, paypalOrderID)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderID string, paid repository.PaidUpdate) (bool, error) {
	args := m.Called(ctx, orderID, paid)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkFailed(ctx context.Context, orderID, paymentError string) error {
	args := m.Called(ctx, orderID, paymentError)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkCancelled(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// MockWebhookEventRepository is a mock of repository.WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	args := m.Called(ctx, eventID, eventType)
	return args.Error(0)
}

// MockUserRepository is a mock of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByVerifyToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockStripeClient is a mock of client.StripeClient
type MockStripeClient struct {
	mock.Mock
}

func (m *MockStripeClient) CreateCheckoutSession(req *client.StripeCheckoutRequest) (*client.StripeCheckoutResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.StripeCheckoutResponse), args.Error(1)
}

func (m *MockStripeClient) ParseWebhook(payload []byte, signature string) (*client.StripeWebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.StripeWebhookEvent), args.Error(1)
}

// MockPaypalClient is a mock of client.PaypalClient
type MockPaypalClient struct {
	mock.Mock
}

func (m *MockPaypalClient) CreateOrder(ctx context.Context, req *client.PaypalCreateOrderRequest) (*client.PaypalCreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.PaypalCreateOrderResponse), args.Error(1)
}

func (m *MockPaypalClient) CaptureOrder(ctx context.Context, paypalOrderID string) (*client.PaypalCaptureResult, error) {
	args := m.Called(ctx, paypalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.PaypalCaptureResult), args.Error(1)
}

// MockEmailService is a mock of EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendOrderConfirmation(ctx context.Context, order *model.Order) bool {
	args := m.Called(ctx, order)
	return args.Bool(0)
}

func (m *MockEmailService) SendVerificationEmail(ctx context.Context, user *model.User, token string) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}

func (m *MockEmailService) SendResetEmail(ctx context.Context, user *model.User, token string) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}

func (m *MockEmailService) SendContactMessage(ctx context.Context, req *dto.ContactRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEmailService) SendSubscribeWelcome(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
