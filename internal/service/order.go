package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/money"
	"shpfusion-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxUploadSize caps customer reference files at 10MB, both on upload and
// again when attaching them to the admin notification mail.
const MaxUploadSize = 10 * 1024 * 1024

const maxAdditionalLength = 1000

type OrderService interface {
	CreateOrder(ctx context.Context, input *dto.CheckoutInput) (*dto.CheckoutResponse, error)
	GetPaymentSelection(ctx context.Context, orderID string) (*dto.PaymentSelection, error)
	// Confirm marks the order paid (at most once) and dispatches the
	// confirmation emails on the transition. It backs the success page's
	// confirm call; the Stripe webhook goes through the payment service.
	Confirm(ctx context.Context, sessionID, orderID string) (*dto.ConfirmOrderResponse, error)
	DownloadFile(ctx context.Context, orderID string) (*dto.DownloadFileResponse, error)
}

type orderServiceImpl struct {
	orderRepo    repository.OrderRepository
	emailService EmailService
	baseURL      string
	log          *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	emailService EmailService,
	baseURL string,
	log *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orderRepo:    orderRepo,
		emailService: emailService,
		baseURL:      baseURL,
		log:          log,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, input *dto.CheckoutInput) (*dto.CheckoutResponse, error) {
	productID := strings.TrimSpace(input.ProductID)
	productTitle := strings.TrimSpace(input.ProductTitle)
	userName := strings.TrimSpace(input.UserName)
	userEmail := strings.TrimSpace(input.UserEmail)
	requirement := strings.TrimSpace(input.Requirement)
	additional := strings.TrimSpace(input.Additional)

	if productID == "" || productTitle == "" || userName == "" || userEmail == "" || requirement == "" {
		return nil, invalid("All required fields are missing")
	}

	price := money.AmountFromString(strings.TrimSpace(input.ProductPrice))
	if price <= 0 || price > 100000 {
		return nil, invalid("Invalid product price")
	}

	if !isValidEmail(userEmail) {
		return nil, invalid("Invalid email address format")
	}

	if len(requirement) < 10 {
		return nil, invalid("Requirements should be at least 10 characters long")
	}

	referenceFile := ""
	if len(input.FileContent) > 0 {
		if len(input.FileContent) > MaxUploadSize {
			return nil, invalid("File size too large. Maximum 10MB allowed")
		}
		referenceFile = buildDataURI(input.FileType, input.FileContent)
	}

	if len(additional) > maxAdditionalLength {
		additional = additional[:maxAdditionalLength]
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		ProductID:     productID,
		ProductTitle:  productTitle,
		ProductPrice:  money.Format(price),
		UserName:      userName,
		UserEmail:     userEmail,
		Requirement:   requirement,
		Additional:    additional,
		ReferenceFile: referenceFile,
		Status:        model.OrderStatusPaymentPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("product_id", order.ProductID),
		zap.Bool("has_file", referenceFile != ""))

	return &dto.CheckoutResponse{
		Success:          true,
		PaymentSelectURL: fmt.Sprintf("%s/payment-select?orderId=%s", s.baseURL, order.ID),
		OrderID:          order.ID,
		Message:          "Order saved successfully. Please select payment method.",
	}, nil
}

func (s *orderServiceImpl) GetPaymentSelection(ctx context.Context, orderID string) (*dto.PaymentSelection, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == model.OrderStatusPaid {
		return nil, ErrOrderAlreadyPaid
	}

	return &dto.PaymentSelection{
		OrderID:      order.ID,
		ProductTitle: order.ProductTitle,
		ProductPrice: money.AmountFromString(order.ProductPrice),
		UserName:     order.UserName,
		Status:       order.Status,
	}, nil
}

func (s *orderServiceImpl) Confirm(ctx context.Context, sessionID, orderID string) (*dto.ConfirmOrderResponse, error) {
	if sessionID == "" && orderID == "" {
		return nil, invalid("Session ID or Order ID is required")
	}

	var order *model.Order
	var err error
	if sessionID != "" {
		order, err = s.orderRepo.FindByStripeSessionID(ctx, sessionID)
	} else {
		order, err = s.orderRepo.FindByID(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	transitioned, err := s.orderRepo.MarkPaid(ctx, order.ID, repository.PaidUpdate{})
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	if !transitioned {
		return &dto.ConfirmOrderResponse{
			Success:          true,
			Message:          "Order already confirmed",
			OrderID:          order.ID,
			AlreadyProcessed: true,
		}, nil
	}

	fileAttached := s.emailService.SendOrderConfirmation(ctx, order)

	return &dto.ConfirmOrderResponse{
		Success:      true,
		Message:      "Order confirmed and emails sent",
		OrderID:      order.ID,
		FileAttached: fileAttached,
	}, nil
}

func (s *orderServiceImpl) DownloadFile(ctx context.Context, orderID string) (*dto.DownloadFileResponse, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ReferenceFile == "" {
		return nil, ErrNoReferenceFile
	}

	mimeType, _, ok := parseDataURI(order.ReferenceFile)
	ext := "bin"
	if ok {
		ext = extensionForMime(mimeType)
	}

	return &dto.DownloadFileResponse{
		Success:  true,
		FileData: order.ReferenceFile,
		FileName: fmt.Sprintf("reference-%s.%s", order.ID, ext),
	}, nil
}

func (s *orderServiceImpl) findOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, invalid("Order ID is required")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return order, nil
}

func buildDataURI(mimeType string, content []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}
