package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frozenfood/server/internal/module/catalog"
)

// Service implements cart operations.
type Service struct {
	repo    Repository
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewService creates a new cart service.
func NewService(repo Repository, catalogSvc *catalog.Service, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogSvc,
		logger:  logger,
	}
}

// AddItem adds quantity of a product to the user's cart.
func (s *Service) AddItem(ctx context.Context, userID int64, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Available() {
		return ErrProductUnavailable
	}

	if _, err := s.repo.AddQuantity(ctx, userID, productID, quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// SetQuantity sets the quantity for a product, removing it at zero.
func (s *Service) SetQuantity(ctx context.Context, userID int64, productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		err := s.repo.RemoveItem(ctx, userID, productID)
		if err != nil && err != ErrItemNotFound {
			return err
		}
		return nil
	}
	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

// RemoveItem removes a product from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID int64, productID uuid.UUID) error {
	return s.repo.RemoveItem(ctx, userID, productID)
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

// GetCart resolves the user's cart against the catalog. Lines whose product
// has gone missing or unavailable are dropped.
func (s *Service) GetCart(ctx context.Context, userID int64) (*Cart, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &Cart{UserID: userID, Lines: []Line{}}
	if len(items) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.Available() {
			s.logger.Debug("dropping unavailable cart line",
				zap.Int64("user_id", userID),
				zap.String("product_id", item.ProductID.String()),
			)
			continue
		}
		unitPrice := product.EffectivePrice()
		result.Lines = append(result.Lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
			Amount:    unitPrice * int64(item.Quantity),
		})
		result.Total += unitPrice * int64(item.Quantity)
	}

	return result, nil
}
