package store

import (
	"context"
	"errors"

	"github.com/iurnickita/stockroom/internal/model"
	"github.com/iurnickita/stockroom/internal/store/config"
)

// Store - граница персистентности. Атомарность многострочной записи
// в рамках одной операции обеспечивается окружением хранилища
type Store interface {
	ProductPost(ctx context.Context, product model.Product) error
	ProductGet(ctx context.Context, productID int64) (model.Product, error)
	ProductGetAll(ctx context.Context) ([]model.Product, error)

	InventoryPut(ctx context.Context, productID int64, availableQty int64) error
	InventoryGetAll(ctx context.Context) (map[int64]int64, error)

	OrderPost(ctx context.Context, order model.Order) error
	OrderGet(ctx context.Context, orderID int64) (model.Order, error)
	OrderPutStatus(ctx context.Context, orderID int64, status string) error
	OrderLinePut(ctx context.Context, line model.OrderLine) error

	ShipmentPost(ctx context.Context, shipment model.Shipment) error
	ShipmentGet(ctx context.Context, shipmentID string) (model.Shipment, error)

	BackorderPost(ctx context.Context, entry model.BackorderEntry) (int64, error)
	BackorderGetByProduct(ctx context.Context, productID int64) ([]model.BackorderEntry, error)
	BackorderCountByOrder(ctx context.Context, orderID int64) (int, error)
	BackorderPut(ctx context.Context, entry model.BackorderEntry) error
	BackorderDelete(ctx context.Context, entryID int64) error
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
)

// NewStore выбирает реализацию: postgres при заданном DSN,
// иначе хранение в памяти
func NewStore(cfg config.Config) (Store, error) {
	if cfg.DBDsn == "" {
		return NewMemStore(), nil
	}
	return newPgStore(cfg)
}
