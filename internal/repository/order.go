package repository

import (
	"context"
	"time"

	"shpfusion-api/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*model.Order, error)
	SetStripeSession(ctx context.Context, orderID, sessionID string) error
	SetPaypalOrder(ctx context.Context, orderID, paypalOrderID string) error
	// MarkPaid flips the order to paid exactly once. The guard lives in the
	// UPDATE's WHERE clause, so concurrent webhook deliveries cannot both win;
	// the return value reports whether this call made the transition.
	MarkPaid(ctx context.Context, orderID string, paid PaidUpdate) (bool, error)
	MarkFailed(ctx context.Context, orderID, paymentError string) error
	// MarkCancelled never downgrades a paid order; an expiry racing a late
	// payment loses.
	MarkCancelled(ctx context.Context, orderID string) error
}

type PaidUpdate struct {
	PaymentMethod         string
	StripePaymentIntentID string
	PaymentID             string
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByStripeSessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) SetStripeSession(ctx context.Context, orderID, sessionID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"stripe_session_id": sessionID,
			"payment_method":    model.PaymentMethodStripe,
			"status":            model.OrderStatusPending,
		}).Error
}

func (r *orderRepoImpl) SetPaypalOrder(ctx context.Context, orderID, paypalOrderID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"paypal_order_id": paypalOrderID,
			"payment_method":  model.PaymentMethodPaypal,
			"status":          model.OrderStatusPaypalPending,
		}).Error
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, orderID string, paid PaidUpdate) (bool, error) {
	updates := map[string]interface{}{
		"status":  model.OrderStatusPaid,
		"paid_at": time.Now(),
	}
	if paid.PaymentMethod != "" {
		updates["payment_method"] = paid.PaymentMethod
	}
	if paid.StripePaymentIntentID != "" {
		updates["stripe_payment_intent_id"] = paid.StripePaymentIntentID
	}
	if paid.PaymentID != "" {
		updates["payment_id"] = paid.PaymentID
	}

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status <> ?", orderID, model.OrderStatusPaid).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) MarkCancelled(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status <> ?", orderID, model.OrderStatusPaid).
		Update("status", model.OrderStatusCancelled).Error
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID, paymentError string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status <> ?", orderID, model.OrderStatusPaid).
		Updates(map[string]interface{}{
			"status":        model.OrderStatusFailed,
			"payment_error": paymentError,
		}).Error
}
