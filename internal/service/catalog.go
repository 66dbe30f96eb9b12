package service

import (
	"context"
	"errors"
	"fmt"

	"shpfusion-api/internal/client"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogService mirrors the CMS product catalog into the local database.
// The CMS stays the source of truth; a sync replaces the local rows of one
// product type wholesale.
type CatalogService interface {
	SyncStreamGraphics(ctx context.Context) ([]*model.Product, error)
	SyncCharacterDesigns(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	GetProductBySanityID(ctx context.Context, sanityID string) (*model.Product, error)
}

type catalogServiceImpl struct {
	productRepo  repository.ProductRepository
	sanityClient client.SanityClient
	log          *zap.Logger
}

func NewCatalogService(productRepo repository.ProductRepository, sanityClient client.SanityClient, log *zap.Logger) CatalogService {
	return &catalogServiceImpl{
		productRepo:  productRepo,
		sanityClient: sanityClient,
		log:          log,
	}
}

type sanityProduct struct {
	ID       string  `json:"_id"`
	Title    string  `json:"title"`
	SubType  string  `json:"subType"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
}

const streamGraphicsQuery = `*[_type == "streamgraphics"]{
  _id,
  title,
  subType,
  category,
  price,
  "image": image.asset->url
}`

const characterDesignQuery = `*[_type == "characterDesign"]{
  _id,
  title,
  subType,
  category,
  price,
  "image": image.asset->url
}`

func (s *catalogServiceImpl) SyncStreamGraphics(ctx context.Context) ([]*model.Product, error) {
	return s.sync(ctx, streamGraphicsQuery, model.ProductTypeStreamGraphics)
}

func (s *catalogServiceImpl) SyncCharacterDesigns(ctx context.Context) ([]*model.Product, error) {
	return s.sync(ctx, characterDesignQuery, model.ProductTypeCharacterDesign)
}

func (s *catalogServiceImpl) sync(ctx context.Context, query, productType string) ([]*model.Product, error) {
	var rows []sanityProduct
	if err := s.sanityClient.Query(ctx, query, &rows); err != nil {
		// a CMS outage should not blank the storefront; serve the last mirror
		cached, cacheErr := s.productRepo.ListByType(ctx, productType)
		if cacheErr == nil && len(cached) > 0 {
			s.log.Warn("cms fetch failed, serving stored catalog",
				zap.String("product_type", productType), zap.Error(err))
			return cached, nil
		}
		return nil, fmt.Errorf("fetch %s from cms: %w", productType, err)
	}

	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		subType := row.SubType
		if subType == "" {
			subType = "static"
		}
		products = append(products, &model.Product{
			ID:          uuid.NewString(),
			SanityID:    row.ID,
			Title:       row.Title,
			Category:    row.Category,
			SubType:     subType,
			Price:       row.Price,
			Image:       row.Image,
			ProductType: productType,
		})
	}

	if err := s.productRepo.ReplaceByType(ctx, productType, products); err != nil {
		return nil, fmt.Errorf("replace %s products: %w", productType, err)
	}

	s.log.Info("catalog synced", zap.String("product_type", productType), zap.Int("count", len(products)))
	return products, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *catalogServiceImpl) GetProductBySanityID(ctx context.Context, sanityID string) (*model.Product, error) {
	product, err := s.productRepo.FindBySanityID(ctx, sanityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product by sanity id: %w", err)
	}
	return product, nil
}
