package service

import (
	"context"
	"fmt"

	"tuango/internal/model"
	"tuango/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	dealRepo    repository.DealRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(productRepo repository.ProductRepository, dealRepo repository.DealRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		dealRepo:    dealRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// GetProducts retrieves active products with pagination.
func (s *catalogService) GetProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	limit, offset = clampPage(limit, offset)

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetProduct retrieves a single active product.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, &model.NotFoundError{Resource: "product", ID: id}
	}
	return s.productRepo.GetByID(ctx, id)
}

// GetDeals retrieves group deals with pagination, newest first.
func (s *catalogService) GetDeals(ctx context.Context, limit, offset int) ([]model.GroupDeal, error) {
	limit, offset = clampPage(limit, offset)

	deals, err := s.dealRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get deals")
		return nil, fmt.Errorf("failed to get deals: %w", err)
	}

	return deals, nil
}

// GetDeal retrieves a single group deal.
func (s *catalogService) GetDeal(ctx context.Context, id int64) (*model.GroupDeal, error) {
	if id <= 0 {
		return nil, &model.NotFoundError{Resource: "deal", ID: id}
	}
	return s.dealRepo.GetByID(ctx, id)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
