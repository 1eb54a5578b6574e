package repository

import (
	"context"
	"errors"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepo interface {
	Create(ctx context.Context, c *models.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetActiveBySession(ctx context.Context, token string) (*models.Cart, error)

	// UpsertItem добавляет количество к существующей позиции или создаёт новую
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, qty int64) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int64) (bool, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)

	// MarkConverted: корзина конвертируется не более одного раза —
	// условный UPDATE со status-guard, проигравший получает 0 строк
	MarkConverted(ctx context.Context, id uuid.UUID) (bool, error)
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) CartRepo { return &cartRepo{db: db} }

func (r *cartRepo) Create(ctx context.Context, c *models.Cart) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cartRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cartRepo) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.db.WithContext(ctx).Preload("Items").
		First(&c, "user_id = ? AND status = ?", userID, models.CartStatusActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cartRepo) GetActiveBySession(ctx context.Context, token string) (*models.Cart, error) {
	var c models.Cart
	err := r.db.WithContext(ctx).Preload("Items").
		First(&c, "session_token = ? AND status = ?", token, models.CartStatusActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, qty int64) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
VALUES (gen_random_uuid(), @cid, @pid, @q, now(), now())
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + @q, updated_at = now()
`, map[string]any{"cid": cartID, "pid": productID, "q": qty}).Error
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", qty)
	return tx.RowsAffected > 0, tx.Error
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *cartRepo) MarkConverted(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND status = ?", id, models.CartStatusActive).
		Update("status", models.CartStatusConverted)
	return tx.RowsAffected > 0, tx.Error
}
