package service

import (
	"time"

	"store-service/internal/models"
)

// ValidateCoupon — чистая функция от (купон, момент времени, subtotal):
// применимость и размер скидки в копейках. Ничего не мутирует, сколько
// угодно повторных вызовов used_count не трогают; инкремент — только
// на коммите чекаута.
func ValidateCoupon(c *models.Coupon, now time.Time, subtotalCents int64) (int64, error) {
	if c == nil {
		return 0, ErrCouponNotFound
	}
	if !c.IsActive {
		return 0, ErrCouponInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return 0, ErrCouponExpired
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return 0, ErrCouponExpired
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return 0, ErrCouponExhausted
	}

	switch c.DiscountType {
	case models.DiscountPercent:
		// округление пол-копейки вверх
		return (subtotalCents*c.DiscountValue + 50) / 100, nil
	case models.DiscountFixed:
		if c.DiscountValue > subtotalCents {
			return subtotalCents, nil // скидка не загоняет total в минус
		}
		return c.DiscountValue, nil
	default:
		return 0, ErrValidation
	}
}
