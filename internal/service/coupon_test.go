package service

import (
	"errors"
	"testing"
	"time"

	"store-service/internal/models"
)

func activeCoupon(dt models.DiscountType, value int64) *models.Coupon {
	return &models.Coupon{
		Code:          "SALE",
		DiscountType:  dt,
		DiscountValue: value,
		IsActive:      true,
	}
}

func TestValidateCoupon_PercentRounding(t *testing.T) {
	now := time.Now()

	cases := []struct {
		subtotal int64
		percent  int64
		want     int64
	}{
		{2550, 10, 255},
		{999, 10, 100},  // 99.9 -> 100, пол-копейки вверх
		{1001, 10, 100}, // 100.1 -> 100
		{100, 50, 50},
		{1, 1, 0}, // 0.01 -> 0
		{0, 25, 0},
	}
	for _, tc := range cases {
		got, err := ValidateCoupon(activeCoupon(models.DiscountPercent, tc.percent), now, tc.subtotal)
		if err != nil {
			t.Fatalf("ValidateCoupon(%d%% of %d): %v", tc.percent, tc.subtotal, err)
		}
		if got != tc.want {
			t.Errorf("%d%% of %d: got %d want %d", tc.percent, tc.subtotal, got, tc.want)
		}
	}
}

func TestValidateCoupon_FixedClampedToSubtotal(t *testing.T) {
	now := time.Now()

	got, err := ValidateCoupon(activeCoupon(models.DiscountFixed, 500), now, 2000)
	if err != nil || got != 500 {
		t.Fatalf("fixed 500 of 2000: got %d err %v", got, err)
	}

	// скидка больше суммы — total не уходит в минус
	got, err = ValidateCoupon(activeCoupon(models.DiscountFixed, 5000), now, 2000)
	if err != nil || got != 2000 {
		t.Fatalf("fixed 5000 of 2000: got %d err %v", got, err)
	}
}

func TestValidateCoupon_Rejections(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	uses := int64(3)

	inactive := activeCoupon(models.DiscountPercent, 10)
	inactive.IsActive = false

	notStarted := activeCoupon(models.DiscountPercent, 10)
	notStarted.ValidFrom = &future

	expired := activeCoupon(models.DiscountPercent, 10)
	expired.ValidTo = &past

	exhausted := activeCoupon(models.DiscountPercent, 10)
	exhausted.MaxUses = &uses
	exhausted.UsedCount = 3

	cases := []struct {
		name   string
		coupon *models.Coupon
		want   error
	}{
		{"nil", nil, ErrCouponNotFound},
		{"inactive", inactive, ErrCouponInactive},
		{"not started", notStarted, ErrCouponExpired},
		{"expired", expired, ErrCouponExpired},
		{"exhausted", exhausted, ErrCouponExhausted},
	}
	for _, tc := range cases {
		_, err := ValidateCoupon(tc.coupon, now, 1000)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v want %v", tc.name, err, tc.want)
		}
		// все отказы купона классифицируются как конфликт или not found
		if tc.coupon != nil && !errors.Is(err, ErrConflict) {
			t.Errorf("%s: must wrap ErrConflict, got %v", tc.name, err)
		}
	}
}

func TestValidateCoupon_WithinWindow(t *testing.T) {
	now := time.Now()
	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)
	uses := int64(10)

	c := activeCoupon(models.DiscountPercent, 20)
	c.ValidFrom = &from
	c.ValidTo = &to
	c.MaxUses = &uses
	c.UsedCount = 9

	got, err := ValidateCoupon(c, now, 1000)
	if err != nil || got != 200 {
		t.Fatalf("valid coupon: got %d err %v", got, err)
	}
}

func TestFormatOrderNumber(t *testing.T) {
	at := time.Date(2025, 3, 7, 15, 4, 5, 0, time.UTC)

	if got := FormatOrderNumber(at, 42); got != "ORD-20250307-000042" {
		t.Errorf("got %q", got)
	}
	if got := FormatOrderNumber(at, 1234567); got != "ORD-20250307-1234567" {
		t.Errorf("seq wider than pad: got %q", got)
	}
}
