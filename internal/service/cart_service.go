package service

import (
	"context"
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
)

type CartOwner struct {
	UserID       *uuid.UUID
	SessionToken *string
}

func (o CartOwner) valid() bool {
	// ровно один владелец: пользователь или анонимная сессия
	return (o.UserID != nil) != (o.SessionToken != nil && *o.SessionToken != "")
}

type CartService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewCartService(repo *repository.Repository) *CartService {
	return &CartService{repo: repo, now: time.Now}
}

// GetOrCreate возвращает активную корзину владельца, создавая при отсутствии.
func (s *CartService) GetOrCreate(ctx context.Context, owner CartOwner) (*models.Cart, error) {
	if !owner.valid() {
		return nil, ErrCartOwner
	}

	var (
		cart *models.Cart
		err  error
	)
	if owner.UserID != nil {
		cart, err = s.repo.Carts.GetActiveByUser(ctx, *owner.UserID)
	} else {
		cart, err = s.repo.Carts.GetActiveBySession(ctx, *owner.SessionToken)
	}
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{
		UserID:       owner.UserID,
		SessionToken: owner.SessionToken,
		Status:       models.CartStatusActive,
	}
	if err := s.repo.Carts.Create(ctx, cart); err != nil {
		// гонка двух первых add-to-cart: частичный уникальный индекс
		// по активной корзине отдаст duplicate key — перечитываем
		if terr := translateDBErr(err, ErrConflict, nil); terr != err {
			if owner.UserID != nil {
				return s.repo.Carts.GetActiveByUser(ctx, *owner.UserID)
			}
			return s.repo.Carts.GetActiveBySession(ctx, *owner.SessionToken)
		}
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Get(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.Carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int64) (*models.Cart, error) {
	if qty <= 0 {
		return nil, ErrQuantityInvalid
	}

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		cart, err := s.mutableCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		p, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}
		if !p.IsActive {
			return ErrInactiveProduct
		}
		return tx.Carts.UpsertItem(ctx, cart.ID, productID, qty)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Carts.GetByID(ctx, cartID)
}

// UpdateItemQuantity выставляет количество; ноль удаляет позицию.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int64) (*models.Cart, error) {
	if qty < 0 {
		return nil, ErrQuantityInvalid
	}

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		cart, err := s.mutableCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if qty == 0 {
			_, err := tx.Carts.RemoveItem(ctx, cart.ID, productID)
			return err
		}
		ok, err := tx.Carts.SetItemQuantity(ctx, cart.ID, productID, qty)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Carts.GetByID(ctx, cartID)
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error) {
	err := s.repo.WithTx(func(tx *repository.Repository) error {
		cart, err := s.mutableCart(ctx, tx, cartID)
		if err != nil {
			return err
		}
		_, err = tx.Carts.RemoveItem(ctx, cart.ID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Carts.GetByID(ctx, cartID)
}

func (s *CartService) mutableCart(ctx context.Context, tx *repository.Repository, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := tx.Carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	if cart.Status != models.CartStatusActive {
		return nil, ErrCartConsumed
	}
	return cart, nil
}
