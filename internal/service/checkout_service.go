package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	CartID            uuid.UUID
	BillingAddressID  *uuid.UUID
	ShippingAddressID *uuid.UUID
	ShippingCents     int64
	TaxCents          int64
	CouponCode        *string
}

type CheckoutOptions struct {
	// CouponStrict: невалидный купон валит чекаут целиком.
	// false — заказ оформляется без скидки, решение пишется в лог.
	CouponStrict bool
}

type CheckoutService struct {
	repo   *repository.Repository
	events EventBus
	log    *zap.Logger
	opts   CheckoutOptions
	now    func() time.Time
}

func NewCheckoutService(repo *repository.Repository, events EventBus, log *zap.Logger, opts CheckoutOptions) *CheckoutService {
	return &CheckoutService{
		repo:   repo,
		events: events,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

// Checkout атомарно превращает корзину в заказ: проверка остатков,
// холд склада, снимок позиций, купон, номер заказа, конвертация корзины.
// Любая ошибка откатывает всё — частичных резервов не бывает.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	if in.ShippingCents < 0 || in.TaxCents < 0 {
		return nil, ErrAmountInvalid
	}

	var (
		order *models.Order
		now   = s.now()
	)

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		cart, err := tx.Carts.GetByID(ctx, in.CartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrCartNotFound
		}
		if cart.Status != models.CartStatusActive {
			return ErrCartConsumed
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		if err := s.checkAddress(ctx, tx, cart.UserID, in.BillingAddressID); err != nil {
			return err
		}
		if err := s.checkAddress(ctx, tx, cart.UserID, in.ShippingAddressID); err != nil {
			return err
		}

		// стабильный порядок захвата строк склада — защита от дедлоков
		items := make([]models.CartItem, len(cart.Items))
		copy(items, cart.Items)
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})

		// товары одним запросом, не по одному на позицию
		products, err := tx.Products.BatchGetByIDs(ctx,
			lo.Map(items, func(it models.CartItem, _ int) uuid.UUID { return it.ProductID }))
		if err != nil {
			return err
		}
		byID := lo.KeyBy(products, func(p models.Product) uuid.UUID { return p.ID })

		snapshot := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			if it.Quantity <= 0 {
				return ErrQuantityInvalid
			}
			p, ok := byID[it.ProductID]
			if !ok {
				return ErrProductNotFound
			}
			if !p.IsActive {
				return ErrInactiveProduct
			}
			snapshot = append(snapshot, models.OrderItem{
				ProductID:      p.ID,
				SKU:            p.SKU,
				Name:           p.Name,
				Quantity:       it.Quantity,
				UnitPriceCents: p.PriceCents,
				LineTotalCents: p.PriceCents * it.Quantity,
				CurrencyCode:   p.CurrencyCode,
				CreatedAt:      now,
			})
		}

		for _, it := range snapshot {
			if it.CurrencyCode != snapshot[0].CurrencyCode {
				return ErrCurrencyMismatch
			}
		}

		subtotal := lo.SumBy(snapshot, func(i models.OrderItem) int64 { return i.LineTotalCents })

		var (
			discount int64
			coupon   *models.Coupon
		)
		if in.CouponCode != nil && *in.CouponCode != "" {
			c, err := tx.Coupons.GetByCode(ctx, *in.CouponCode)
			if err != nil {
				return err
			}
			d, verr := ValidateCoupon(c, now, subtotal)
			if verr == nil {
				// инкремент used_count — условный, исчерпание под гонкой
				// приравнивается к провалу валидации
				ok, err := tx.Coupons.TryConsume(ctx, c.ID)
				if err != nil {
					return err
				}
				if !ok {
					verr = ErrCouponExhausted
				} else {
					discount = d
					coupon = c
				}
			}
			if verr != nil {
				if s.opts.CouponStrict {
					return verr
				}
				s.log.Warn("купон отклонён, заказ оформляется без скидки",
					zap.String("code", *in.CouponCode), zap.Error(verr))
			}
		}

		seq, err := tx.Counters.Next(ctx, models.CounterOrderNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCounterMissing
			}
			return err
		}

		cartID := cart.ID
		order = &models.Order{
			OrderNumber:       FormatOrderNumber(now, seq),
			UserID:            cart.UserID,
			CartID:            &cartID,
			Status:            models.OrderStatusPending,
			SubtotalCents:     subtotal,
			ShippingCents:     in.ShippingCents,
			TaxCents:          in.TaxCents,
			DiscountCents:     discount,
			TotalCents:        subtotal + in.ShippingCents + in.TaxCents - discount,
			CurrencyCode:      snapshot[0].CurrencyCode,
			BillingAddressID:  in.BillingAddressID,
			ShippingAddressID: in.ShippingAddressID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return translateDBErr(err, ErrCartConsumed, nil)
		}

		// холды: всё или ничего, первый недобор валит транзакцию
		for i := range snapshot {
			pid := snapshot[i].ProductID
			qty := snapshot[i].Quantity
			if err := tx.Reservations.UpsertPending(ctx, order.ID, pid, qty); err != nil {
				return err
			}
			ok, err := tx.Inventories.TryReserve(ctx, pid, qty)
			if err != nil {
				return err
			}
			if !ok {
				return ErrOutOfStock
			}
			if _, err := tx.Reservations.MarkReserved(ctx, order.ID, pid); err != nil {
				return err
			}
			snapshot[i].OrderID = order.ID
		}

		if err := tx.OrderItems.BulkCreate(ctx, snapshot); err != nil {
			return err
		}

		if coupon != nil {
			if err := tx.Coupons.LinkOrder(ctx, order.ID, coupon.ID, discount); err != nil {
				return translateDBErr(err, ErrConflict, nil)
			}
		}

		ok, err := tx.Carts.MarkConverted(ctx, cart.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCartConsumed
		}

		order, err = tx.Orders.GetByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("заказ создан",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_cents", order.TotalCents))

	if s.events != nil {
		_ = s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Items: lo.Map(order.Items, func(it models.OrderItem, _ int) OrderItemEvent {
				return OrderItemEvent{
					ProductID:  it.ProductID,
					SKU:        it.SKU,
					Quantity:   it.Quantity,
					PriceCents: it.UnitPriceCents,
					LineTotal:  it.LineTotalCents,
				}
			}),
			TotalCents: order.TotalCents,
			Currency:   order.CurrencyCode,
			CreatedAt:  order.CreatedAt,
		})
	}

	return order, nil
}

func (s *CheckoutService) checkAddress(ctx context.Context, tx *repository.Repository, userID *uuid.UUID, addrID *uuid.UUID) error {
	if addrID == nil {
		return nil
	}
	a, err := tx.Addresses.GetByID(ctx, *addrID)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAddressNotFound
	}
	if userID != nil && a.UserID != *userID {
		return ErrAddressNotFound // чужой адрес не светим
	}
	return nil
}
