package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cartTTL = 7 * 24 * time.Hour

// Repository defines the interface for cart storage.
type Repository interface {
	GetItems(ctx context.Context, userID int64) ([]Item, error)
	SetQuantity(ctx context.Context, userID int64, productID uuid.UUID, quantity int) error
	AddQuantity(ctx context.Context, userID int64, productID uuid.UUID, delta int) (int, error)
	RemoveItem(ctx context.Context, userID int64, productID uuid.UUID) error
	Clear(ctx context.Context, userID int64) error
}

type redisRepository struct {
	client redis.UniversalClient
}

// NewRepository creates a Redis-backed cart repository.
func NewRepository(client redis.UniversalClient) Repository {
	return &redisRepository{client: client}
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (r *redisRepository) GetItems(ctx context.Context, userID int64) ([]Item, error) {
	fields, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	items := make([]Item, 0, len(fields))
	for field, value := range fields {
		productID, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity <= 0 {
			continue
		}
		items = append(items, Item{ProductID: productID, Quantity: quantity})
	}
	return items, nil
}

func (r *redisRepository) SetQuantity(ctx context.Context, userID int64, productID uuid.UUID, quantity int) error {
	key := cartKey(userID)
	if err := r.client.HSet(ctx, key, productID.String(), quantity).Err(); err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return r.client.Expire(ctx, key, cartTTL).Err()
}

func (r *redisRepository) AddQuantity(ctx context.Context, userID int64, productID uuid.UUID, delta int) (int, error) {
	key := cartKey(userID)
	total, err := r.client.HIncrBy(ctx, key, productID.String(), int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment cart quantity: %w", err)
	}
	if total <= 0 {
		r.client.HDel(ctx, key, productID.String())
		return 0, nil
	}
	if err := r.client.Expire(ctx, key, cartTTL).Err(); err != nil {
		return int(total), err
	}
	return int(total), nil
}

func (r *redisRepository) RemoveItem(ctx context.Context, userID int64, productID uuid.UUID) error {
	removed, err := r.client.HDel(ctx, cartKey(userID), productID.String()).Result()
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if removed == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *redisRepository) Clear(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, cartKey(userID)).Err()
}
