package repository

import (
	"context"
	"errors"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepo interface {
	Get(ctx context.Context, productID uuid.UUID) (*models.Inventory, error)
	EnsureRow(ctx context.Context, productID uuid.UUID) error

	// Атомарные check-and-update по горячей паре quantity/reserved.
	// TryReserve: reserved += qty, если quantity - reserved >= qty
	TryReserve(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)
	// Release: reserved -= qty (снятие холда при отмене/возврате)
	Release(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)
	// ConfirmShipment: quantity -= qty, reserved -= qty — физический уход
	// товара со склада; единственное место, где quantity уменьшается
	ConfirmShipment(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)
	// Restock: quantity += qty (поставка)
	Restock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)
	// AdjustQuantity: инвентаризация; не даёт опуститься ниже reserved
	AdjustQuantity(ctx context.Context, productID uuid.UUID, delta int64) (bool, error)
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepo(db *gorm.DB) InventoryRepo { return &inventoryRepo{db: db} }

func (r *inventoryRepo) Get(ctx context.Context, productID uuid.UUID) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inv, err
}

func (r *inventoryRepo) EnsureRow(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO inventories (product_id, quantity, reserved, updated_at)
VALUES (@pid, 0, 0, now())
ON CONFLICT (product_id) DO NOTHING
`, map[string]any{"pid": productID}).Error
}

func (r *inventoryRepo) TryReserve(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET reserved   = reserved + @q,
    updated_at = now()
WHERE product_id = @pid
  AND quantity - reserved >= @q
`, map[string]any{"pid": productID, "q": qty})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) Release(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET reserved   = reserved - @q,
    updated_at = now()
WHERE product_id = @pid
  AND reserved >= @q
`, map[string]any{"pid": productID, "q": qty})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) ConfirmShipment(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET quantity   = quantity - @q,
    reserved   = reserved - @q,
    updated_at = now()
WHERE product_id = @pid
  AND reserved >= @q
  AND quantity >= @q
`, map[string]any{"pid": productID, "q": qty})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) Restock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET quantity   = quantity + @q,
    updated_at = now()
WHERE product_id = @pid
`, map[string]any{"pid": productID, "q": qty})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) AdjustQuantity(ctx context.Context, productID uuid.UUID, delta int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET quantity   = quantity + @delta,
    updated_at = now()
WHERE product_id = @pid
  AND quantity + @delta >= reserved
`, map[string]any{"pid": productID, "delta": delta})
	return tx.RowsAffected > 0, tx.Error
}
