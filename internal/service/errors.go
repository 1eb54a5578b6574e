package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Базовая таксономия. Конкретные ошибки оборачивают одну из четырёх базовых,
// классификация — через errors.Is(err, ErrConflict) и т.д.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrIntegrity  = errors.New("integrity violation")
)

var (
	ErrUserNotFound    = fmt.Errorf("%w: user", ErrNotFound)
	ErrRoleNotFound    = fmt.Errorf("%w: role", ErrNotFound)
	ErrAddressNotFound = fmt.Errorf("%w: address", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("%w: product", ErrNotFound)
	ErrCartNotFound    = fmt.Errorf("%w: cart", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("%w: order", ErrNotFound)
	ErrCouponNotFound  = fmt.Errorf("%w: coupon", ErrNotFound)
	ErrStockNotFound   = fmt.Errorf("%w: inventory row", ErrNotFound)
	ErrRoleNotAssigned = fmt.Errorf("%w: role not assigned to user", ErrNotFound)

	ErrEmptyCart        = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrQuantityInvalid  = fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	ErrAmountInvalid    = fmt.Errorf("%w: amount must be > 0", ErrValidation)
	ErrPriceInvalid     = fmt.Errorf("%w: price must be >= 0", ErrValidation)
	ErrCartOwner        = fmt.Errorf("%w: cart needs exactly one of user or session", ErrValidation)
	ErrCurrencyMismatch = fmt.Errorf("%w: currency mismatch", ErrValidation)
	ErrEmailRequired    = fmt.Errorf("%w: email required", ErrValidation)

	ErrOutOfStock         = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrCartConsumed       = fmt.Errorf("%w: cart already converted", ErrConflict)
	ErrInactiveProduct    = fmt.Errorf("%w: product is inactive", ErrConflict)
	ErrIllegalTransition  = fmt.Errorf("%w: illegal status transition", ErrConflict)
	ErrUnderpaid          = fmt.Errorf("%w: successful payments below order total", ErrConflict)
	ErrCouponInactive     = fmt.Errorf("%w: coupon inactive", ErrConflict)
	ErrCouponExpired      = fmt.Errorf("%w: coupon outside validity window", ErrConflict)
	ErrCouponExhausted    = fmt.Errorf("%w: coupon usage cap reached", ErrConflict)
	ErrSKUAlreadyExists   = fmt.Errorf("%w: sku already exists", ErrConflict)
	ErrEmailAlreadyExists = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrProductReserved    = fmt.Errorf("%w: product has reserved stock", ErrConflict)
	ErrOrderClosed        = fmt.Errorf("%w: order in terminal state", ErrConflict)

	ErrStockLedger    = fmt.Errorf("%w: stock ledger out of sync with reservations", ErrIntegrity)
	ErrCounterMissing = fmt.Errorf("%w: order number counter not seeded", ErrIntegrity)
	ErrRoleInUse      = fmt.Errorf("%w: role still assigned to users", ErrIntegrity)
	ErrCategoryInUse  = fmt.Errorf("%w: category still linked to products", ErrIntegrity)
	ErrSupplierInUse  = fmt.Errorf("%w: supplier still linked to products", ErrIntegrity)
)

// translateDBErr переводит ошибки хранилища в таксономию,
// сырые ошибки движка наружу не отдаём.
func translateDBErr(err error, onDuplicate, onFK error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if onDuplicate != nil {
			return onDuplicate
		}
		return fmt.Errorf("%w: duplicate key", ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		if onFK != nil {
			return onFK
		}
		return fmt.Errorf("%w: foreign key", ErrIntegrity)
	default:
		return err
	}
}
