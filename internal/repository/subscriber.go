package repository

import (
	"context"

	"shpfusion-api/internal/model"

	"gorm.io/gorm"
)

type SubscriberRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, subscriber *model.Subscriber) error
}

type subscriberRepoImpl struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepoImpl{db: db}
}

func (r *subscriberRepoImpl) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscriber{}).
		Where("email = ?", email).
		Count(&count).Error

	return count > 0, err
}

func (r *subscriberRepoImpl) Create(ctx context.Context, subscriber *model.Subscriber) error {
	return r.db.WithContext(ctx).Create(subscriber).Error
}
