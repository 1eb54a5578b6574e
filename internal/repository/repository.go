package repository

import "gorm.io/gorm"

type Repository struct {
	DB           *gorm.DB
	Users        UserRepo
	Roles        RoleRepo
	Addresses    AddressRepo
	Products     ProductRepo
	Inventories  InventoryRepo
	Carts        CartRepo
	Orders       OrderRepo
	OrderItems   OrderItemRepo
	Reservations ReservationRepo
	Payments     PaymentRepo
	Shipments    ShipmentRepo
	Coupons      CouponRepo
	Counters     CounterRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:           db,
		Users:        NewUserRepo(db),
		Roles:        NewRoleRepo(db),
		Addresses:    NewAddressRepo(db),
		Products:     NewProductRepo(db),
		Inventories:  NewInventoryRepo(db),
		Carts:        NewCartRepo(db),
		Orders:       NewOrderRepo(db),
		OrderItems:   NewOrderItemRepo(db),
		Reservations: NewReservationRepo(db),
		Payments:     NewPaymentRepo(db),
		Shipments:    NewShipmentRepo(db),
		Coupons:      NewCouponRepo(db),
		Counters:     NewCounterRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Глобальная транзакция на весь набор репо
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
