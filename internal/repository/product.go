package repository

import (
	"context"

	"shpfusion-api/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindBySanityID(ctx context.Context, sanityID string) (*model.Product, error)
	ListByType(ctx context.Context, productType string) ([]*model.Product, error)
	// ReplaceByType swaps the local mirror of one product type in a single
	// transaction, as a catalog sync does.
	ReplaceByType(ctx context.Context, productType string, products []*model.Product) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{db: db}
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepoImpl) FindBySanityID(ctx context.Context, sanityID string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("sanity_id = ?", sanityID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepoImpl) ListByType(ctx context.Context, productType string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("product_type = ?", productType).
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) ReplaceByType(ctx context.Context, productType string, products []*model.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_type = ?", productType).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.Create(&products).Error
	})
}
