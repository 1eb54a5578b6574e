package service

import "store-service/internal/models"

// Машина статусов заказа. Терминальные: cancelled и refunded;
// delivered допускает ещё возврат.
var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderStatusPending: {
		models.OrderStatusPaid:      true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusPaid: {
		models.OrderStatusProcessing: true,
		models.OrderStatusRefunded:   true,
		models.OrderStatusCancelled:  true,
	},
	models.OrderStatusProcessing: {
		models.OrderStatusShipped:   true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: true,
		models.OrderStatusRefunded:  true,
	},
	models.OrderStatusDelivered: {
		models.OrderStatusRefunded: true,
	},
	models.OrderStatusCancelled: {},
	models.OrderStatusRefunded:  {},
}

func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

func IsTerminal(s models.OrderStatus) bool {
	return len(validNext[s]) == 0
}

// releasesStock: нужно ли при переходе в cancelled/refunded снимать холды.
// После отгрузки резерв уже списан — снимать нечего.
func releasesStock(from models.OrderStatus) bool {
	switch from {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusProcessing:
		return true
	default:
		return false
	}
}
