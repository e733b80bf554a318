package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/utils/metrics"
)

const (
	categoriesCacheKey  = "catalog:categories:active"
	productsCachePrefix = "catalog:products:"
	cacheTTL            = 5 * time.Minute
)

// Service implements catalog operations.
type Service struct {
	repo    Repository
	cache   redis.UniversalClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, cache redis.UniversalClient, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// ListActiveCategories returns active categories ordered by sort order.
// Results are cached in Redis; a cache miss falls through to the database.
func (s *Service) ListActiveCategories(ctx context.Context) ([]*Category, error) {
	var cached []*Category
	if s.getCached(ctx, categoriesCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	s.setCached(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// ListCategories returns all categories, including inactive ones.
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx, false)
}

// GetCategory returns a category by ID.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// CreateCategory creates a new category.
func (s *Service) CreateCategory(ctx context.Context, category *Category) error {
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx, categoriesCacheKey)
	return nil
}

// UpdateCategory updates an existing category.
func (s *Service) UpdateCategory(ctx context.Context, category *Category) error {
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx, categoriesCacheKey, productsCachePrefix+category.ID.String())
	return nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, categoriesCacheKey, productsCachePrefix+id.String())
	return nil
}

// ListProductsByCategory returns available products in a category ordered
// by sort order.
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Product, error) {
	key := productsCachePrefix + categoryID.String()
	var cached []*Product
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.repo.ListProductsByCategory(ctx, categoryID, true)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	s.setCached(ctx, key, products)
	return products, nil
}

// GetProduct returns a product by ID.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// GetProducts returns products for the given IDs.
func (s *Service) GetProducts(ctx context.Context, ids []uuid.UUID) ([]*Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.GetProducts(ctx, ids)
}

// CreateProduct creates a new product.
func (s *Service) CreateProduct(ctx context.Context, product *Product) error {
	if _, err := s.repo.GetCategory(ctx, product.CategoryID); err != nil {
		return err
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx, productsCachePrefix+product.CategoryID.String())
	return nil
}

// UpdateProduct updates an existing product.
func (s *Service) UpdateProduct(ctx context.Context, product *Product) error {
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, productsCachePrefix+product.CategoryID.String())
	return nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, productsCachePrefix+product.CategoryID.String())
	return nil
}

// --- Cache Helpers ---

func (s *Service) getCached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.WithLabelValues("catalog").Inc()
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("failed to decode cached catalog entry", zap.String("key", key), zap.Error(err))
		return false
	}

	if s.metrics != nil {
		s.metrics.CacheHitsTotal.WithLabelValues("catalog").Inc()
	}
	return true
}

func (s *Service) setCached(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache catalog entry", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
