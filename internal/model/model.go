package model

import "time"

// Каталог товаров

type Product struct {
	ID    int64
	Name  string
	MassG int
}

// Заказы

type Order struct {
	ID        int64
	Status    string
	CreatedAt time.Time
	Lines     []OrderLine
	Shipments []Shipment
}

type OrderLine struct {
	OrderID      int64
	ProductID    int64
	RequestedQty int64
	FulfilledQty int64
	Status       string
}

const (
	OrderStatusPending            = "PENDING"
	OrderStatusPartiallyFulfilled = "PARTIALLY_FULFILLED"
	OrderStatusFulfilled          = "FULFILLED"
	OrderStatusCompleted          = "COMPLETED"
)

// Отгрузки

type Shipment struct {
	ID           string
	OrderID      int64
	TotalWeightG int
	CreatedAt    time.Time
	Lines        []ShipmentLine
}

type ShipmentLine struct {
	ShipmentID string
	ProductID  int64
	Quantity   int64
}

// Отложенный спрос (необеспеченный остаток строки заказа)

type BackorderEntry struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	PendingQty int64
	CreatedAt  time.Time
}

// Статус строки по количествам: FULFILLED при fulfilled == requested,
// PENDING при fulfilled == 0, иначе PARTIALLY_FULFILLED
func LineStatus(fulfilledQty, requestedQty int64) string {
	switch {
	case fulfilledQty >= requestedQty:
		return OrderStatusFulfilled
	case fulfilledQty == 0:
		return OrderStatusPending
	default:
		return OrderStatusPartiallyFulfilled
	}
}

// Статус заказа: считаются только полностью закрытые строки.
// Частично закрытая строка учитывается как незакрытая
func OrderStatus(lines []OrderLine) string {
	if len(lines) == 0 {
		return OrderStatusPending
	}
	fulfilled := 0
	for _, line := range lines {
		if line.Status == OrderStatusFulfilled {
			fulfilled++
		}
	}
	switch {
	case fulfilled == len(lines):
		return OrderStatusFulfilled
	case fulfilled > 0:
		return OrderStatusPartiallyFulfilled
	default:
		return OrderStatusPending
	}
}
