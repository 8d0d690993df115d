package store

import (
	"context"
	"sync"

	"github.com/iurnickita/stockroom/internal/model"
)

// memStore - хранение в памяти. Используется в тестах
// и как реализация по умолчанию без DSN
type memStore struct {
	mu          sync.Mutex
	products    map[int64]model.Product
	inventory   map[int64]int64
	orders      map[int64]*model.Order
	shipments   map[string]model.Shipment
	backorders  []model.BackorderEntry
	nextEntryID int64
}

func NewMemStore() Store {
	return &memStore{
		products:    make(map[int64]model.Product),
		inventory:   make(map[int64]int64),
		orders:      make(map[int64]*model.Order),
		shipments:   make(map[string]model.Shipment),
		nextEntryID: 1,
	}
}

func (store *memStore) InventoryPut(_ context.Context, productID int64, availableQty int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.inventory[productID] = availableQty
	return nil
}

func (store *memStore) InventoryGetAll(_ context.Context) (map[int64]int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	quantities := make(map[int64]int64, len(store.inventory))
	for id, qty := range store.inventory {
		quantities[id] = qty
	}
	return quantities, nil
}

func (store *memStore) ProductPost(_ context.Context, product model.Product) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.products[product.ID]; ok {
		return ErrAlreadyExists
	}
	store.products[product.ID] = product
	return nil
}

func (store *memStore) ProductGet(_ context.Context, productID int64) (model.Product, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	product, ok := store.products[productID]
	if !ok {
		return model.Product{}, ErrNoRows
	}
	return product, nil
}

func (store *memStore) ProductGetAll(_ context.Context) ([]model.Product, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	products := make([]model.Product, 0, len(store.products))
	for _, product := range store.products {
		products = append(products, product)
	}
	return products, nil
}

func (store *memStore) OrderPost(_ context.Context, order model.Order) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.orders[order.ID]; ok {
		return ErrAlreadyExists
	}
	stored := order
	stored.Lines = append([]model.OrderLine(nil), order.Lines...)
	stored.Shipments = append([]model.Shipment(nil), order.Shipments...)
	store.orders[order.ID] = &stored
	return nil
}

func (store *memStore) OrderGet(_ context.Context, orderID int64) (model.Order, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	order, ok := store.orders[orderID]
	if !ok {
		return model.Order{}, ErrNoRows
	}
	result := *order
	result.Lines = append([]model.OrderLine(nil), order.Lines...)
	result.Shipments = append([]model.Shipment(nil), order.Shipments...)
	return result, nil
}

func (store *memStore) OrderPutStatus(_ context.Context, orderID int64, status string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	order, ok := store.orders[orderID]
	if !ok {
		return ErrNoRows
	}
	order.Status = status
	return nil
}

func (store *memStore) OrderLinePut(_ context.Context, line model.OrderLine) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	order, ok := store.orders[line.OrderID]
	if !ok {
		return ErrNoRows
	}
	for i := range order.Lines {
		if order.Lines[i].ProductID == line.ProductID {
			order.Lines[i].FulfilledQty = line.FulfilledQty
			order.Lines[i].Status = line.Status
			return nil
		}
	}
	return ErrNoRows
}

func (store *memStore) ShipmentPost(_ context.Context, shipment model.Shipment) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.shipments[shipment.ID]; ok {
		return ErrAlreadyExists
	}
	stored := shipment
	stored.Lines = append([]model.ShipmentLine(nil), shipment.Lines...)
	store.shipments[shipment.ID] = stored
	if order, ok := store.orders[shipment.OrderID]; ok {
		order.Shipments = append(order.Shipments, stored)
	}
	return nil
}

func (store *memStore) ShipmentGet(_ context.Context, shipmentID string) (model.Shipment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	shipment, ok := store.shipments[shipmentID]
	if !ok {
		return model.Shipment{}, ErrNoRows
	}
	shipment.Lines = append([]model.ShipmentLine(nil), shipment.Lines...)
	return shipment, nil
}

func (store *memStore) BackorderPost(_ context.Context, entry model.BackorderEntry) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry.ID = store.nextEntryID
	store.nextEntryID++
	store.backorders = append(store.backorders, entry)
	return entry.ID, nil
}

func (store *memStore) BackorderGetByProduct(_ context.Context, productID int64) ([]model.BackorderEntry, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	// записи хранятся в порядке создания - FIFO по товару
	var entries []model.BackorderEntry
	for _, entry := range store.backorders {
		if entry.ProductID == productID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (store *memStore) BackorderCountByOrder(_ context.Context, orderID int64) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	count := 0
	for _, entry := range store.backorders {
		if entry.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (store *memStore) BackorderPut(_ context.Context, entry model.BackorderEntry) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := range store.backorders {
		if store.backorders[i].ID == entry.ID {
			store.backorders[i].PendingQty = entry.PendingQty
			return nil
		}
	}
	return ErrNoRows
}

func (store *memStore) BackorderDelete(_ context.Context, entryID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := range store.backorders {
		if store.backorders[i].ID == entryID {
			store.backorders = append(store.backorders[:i], store.backorders[i+1:]...)
			return nil
		}
	}
	return ErrNoRows
}
