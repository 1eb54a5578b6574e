package service

import (
	"context"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockCache — read-through кэш доступного остатка (available).
// Реализация в internal/cache; nil-кэш допустим.
type StockCache interface {
	GetAvailable(ctx context.Context, productID uuid.UUID) (int64, bool)
	SetAvailable(ctx context.Context, productID uuid.UUID, available int64)
	Invalidate(ctx context.Context, productID uuid.UUID)
}

type InventoryService struct {
	repo  *repository.Repository
	cache StockCache
	log   *zap.Logger
}

func NewInventoryService(repo *repository.Repository, cache StockCache, log *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, cache: cache, log: log}
}

func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.Inventories.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrStockNotFound
	}
	if s.cache != nil {
		s.cache.SetAvailable(ctx, productID, inv.Available())
	}
	return inv, nil
}

// GetAvailable — быстрый путь для витрины: сначала кэш, потом БД.
// Значение информативное; решение о продаже всегда принимает
// условный UPDATE в чекауте, а не кэш.
func (s *InventoryService) GetAvailable(ctx context.Context, productID uuid.UUID) (int64, error) {
	if s.cache != nil {
		if v, ok := s.cache.GetAvailable(ctx, productID); ok {
			return v, nil
		}
	}
	inv, err := s.GetStock(ctx, productID)
	if err != nil {
		return 0, err
	}
	return inv.Available(), nil
}

// Restock — приход от поставщика, quantity += qty.
func (s *InventoryService) Restock(ctx context.Context, productID uuid.UUID, qty int64) (*models.Inventory, error) {
	if qty <= 0 {
		return nil, ErrQuantityInvalid
	}
	ok, err := s.repo.Inventories.Restock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStockNotFound
	}
	s.invalidate(ctx, productID)
	s.log.Info("склад пополнен",
		zap.String("product_id", productID.String()), zap.Int64("qty", qty))
	return s.repo.Inventories.Get(ctx, productID)
}

// AdjustQuantity — инвентаризация; ниже текущего резерва не опускаем.
func (s *InventoryService) AdjustQuantity(ctx context.Context, productID uuid.UUID, delta int64) (*models.Inventory, error) {
	inv, err := s.repo.Inventories.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrStockNotFound
	}
	ok, err := s.repo.Inventories.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOutOfStock
	}
	s.invalidate(ctx, productID)
	return s.repo.Inventories.Get(ctx, productID)
}

func (s *InventoryService) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
}
