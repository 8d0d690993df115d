package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iurnickita/stockroom/internal/ledger"
	"github.com/iurnickita/stockroom/internal/model"
	"github.com/iurnickita/stockroom/internal/packer"
	"github.com/iurnickita/stockroom/internal/service/config"
	"github.com/iurnickita/stockroom/internal/store"
)

type Service interface {
	InitCatalog(ctx context.Context, products []model.Product) error
	ProcessOrder(ctx context.Context, orderID int64, requested []RequestLine) (model.Order, error)
	ProcessRestock(ctx context.Context, items []RestockItem) (RestockResult, error)
	GetOrder(ctx context.Context, orderID int64) (model.Order, error)
	GetShipment(ctx context.Context, shipmentID string) (model.Shipment, error)
}

// Запрошенная позиция заказа
type RequestLine struct {
	ProductID int64
	Quantity  int64
}

// Позиция пополнения склада
type RestockItem struct {
	ProductID int64
	Quantity  int64
}

type RestockResult struct {
	ProductsRestocked int
	ShipmentsCreated  int
	OrdersUpdated     int
}

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product already exists")
	ErrDuplicateOrder   = errors.New("order already exists")
	ErrOrderNotFound    = errors.New("order not found")
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrOversizedUnit    = packer.ErrOversizedUnit
)

type service struct {
	cfg    config.Config
	store  store.Store
	ledger *ledger.Ledger
	zaplog *zap.Logger
}

// NewService поднимает книгу остатков из хранилища:
// заводит записи по каталогу и восстанавливает количества
func NewService(cfg config.Config, store store.Store, zaplog *zap.Logger) (Service, error) {
	ctx := context.Background()

	service := &service{
		cfg:    cfg,
		store:  store,
		ledger: ledger.NewLedger(),
		zaplog: zaplog,
	}

	products, err := store.ProductGetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		if err := service.ledger.Initialize(product.ID); err != nil {
			return nil, err
		}
	}

	saved, err := store.InventoryGetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(saved) > 0 {
		ids := make([]int64, 0, len(saved))
		for id := range saved {
			ids = append(ids, id)
		}
		claim, err := service.ledger.Acquire(ids)
		if err != nil {
			return nil, err
		}
		defer claim.Release()
		for id, qty := range saved {
			if err := claim.Increase(id, qty); err != nil {
				return nil, err
			}
		}
	}

	return service, nil
}

func (s *service) InitCatalog(ctx context.Context, products []model.Product) error {
	for _, product := range products {
		if product.MassG <= 0 {
			return ErrInsufficientData
		}
		if err := s.store.ProductPost(ctx, product); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateProduct
			}
			return err
		}
		if err := s.ledger.Initialize(product.ID); err != nil {
			return ErrDuplicateProduct
		}
		s.zaplog.Info("initialized product",
			zap.Int64("product", product.ID),
			zap.Int("mass_g", product.MassG))
	}
	return nil
}

// ProcessOrder: проверка каталога, блокировка остатков, упаковка
// доступного количества, фиксация заказа/отгрузок/отложенного спроса.
// Записи создаются только после успешной упаковки - отказ не оставляет
// частично созданный заказ
func (s *service) ProcessOrder(ctx context.Context, orderID int64, requested []RequestLine) (model.Order, error) {
	if len(requested) == 0 {
		return model.Order{}, ErrInsufficientData
	}
	seen := make(map[int64]bool, len(requested))
	for _, req := range requested {
		if req.Quantity <= 0 || seen[req.ProductID] {
			return model.Order{}, ErrInsufficientData
		}
		seen[req.ProductID] = true
	}

	// Проверка каталога: отсутствие любого товара отменяет весь заказ
	products := make(map[int64]model.Product, len(requested))
	ids := make([]int64, 0, len(requested))
	for _, req := range requested {
		product, err := s.store.ProductGet(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return model.Order{}, ErrProductNotFound
			}
			return model.Order{}, err
		}
		products[req.ProductID] = product
		ids = append(ids, req.ProductID)
	}

	claim, err := s.ledger.Acquire(ids)
	if err != nil {
		if errors.Is(err, ledger.ErrProductNotFound) {
			return model.Order{}, ErrProductNotFound
		}
		return model.Order{}, err
	}
	defer claim.Release()
	available := claim.Quantities()

	now := time.Now()
	order := model.Order{
		ID:        orderID,
		Status:    model.OrderStatusPending,
		CreatedAt: now,
	}
	for _, req := range requested {
		order.Lines = append(order.Lines, model.OrderLine{
			OrderID:      orderID,
			ProductID:    req.ProductID,
			RequestedQty: req.Quantity,
			Status:       model.OrderStatusPending,
		})
	}

	// Отгружается min(остаток, запрошено)
	var toPack []packer.Line
	for _, req := range requested {
		shippable := min(available[req.ProductID], req.Quantity)
		if shippable > 0 {
			toPack = append(toPack, packer.NewLine(req.ProductID, shippable, products[req.ProductID].MassG))
		}
	}
	packages, err := packer.Pack(toPack)
	if err != nil {
		return model.Order{}, err
	}

	if err := s.store.OrderPost(ctx, order); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return model.Order{}, ErrDuplicateOrder
		}
		return model.Order{}, err
	}
	s.zaplog.Info("created order",
		zap.Int64("order", orderID),
		zap.Int("lines", len(order.Lines)))

	lineIndex := make(map[int64]*model.OrderLine, len(order.Lines))
	for i := range order.Lines {
		lineIndex[order.Lines[i].ProductID] = &order.Lines[i]
	}

	for _, pkg := range packages {
		if err := s.commitPackage(ctx, claim, orderID, pkg, lineIndex, now); err != nil {
			return model.Order{}, err
		}
	}

	// Необеспеченные остатки уходят в журнал отложенного спроса
	for _, line := range order.Lines {
		pendingQty := line.RequestedQty - line.FulfilledQty
		if pendingQty > 0 {
			_, err := s.store.BackorderPost(ctx, model.BackorderEntry{
				OrderID:    orderID,
				ProductID:  line.ProductID,
				PendingQty: pendingQty,
				CreatedAt:  now,
			})
			if err != nil {
				return model.Order{}, err
			}
			s.zaplog.Info("created backorder",
				zap.Int64("order", orderID),
				zap.Int64("product", line.ProductID),
				zap.Int64("pending_qty", pendingQty))
		}
	}

	status := model.OrderStatus(order.Lines)
	if status != order.Status {
		if err := s.store.OrderPutStatus(ctx, orderID, status); err != nil {
			return model.Order{}, err
		}
	}

	if err := s.saveInventory(ctx, claim); err != nil {
		return model.Order{}, err
	}

	return s.store.OrderGet(ctx, orderID)
}

// Фиксация одной упаковки: отгрузка с позициями, закрытие строк
// заказа, списание остатков
func (s *service) commitPackage(ctx context.Context, claim *ledger.Claim, orderID int64,
	pkg packer.Package, lineIndex map[int64]*model.OrderLine, now time.Time) error {

	shipment := model.Shipment{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		TotalWeightG: pkg.TotalWeightG,
		CreatedAt:    now,
	}
	for _, pl := range pkg.Lines {
		shipment.Lines = append(shipment.Lines, model.ShipmentLine{
			ShipmentID: shipment.ID,
			ProductID:  pl.ProductID,
			Quantity:   pl.Quantity,
		})
	}
	if err := s.store.ShipmentPost(ctx, shipment); err != nil {
		return err
	}
	s.zaplog.Info("created shipment",
		zap.String("shipment", shipment.ID),
		zap.Int64("order", orderID),
		zap.Int("total_weight_g", shipment.TotalWeightG))

	for _, pl := range pkg.Lines {
		line := lineIndex[pl.ProductID]
		line.FulfilledQty += pl.Quantity
		line.Status = model.LineStatus(line.FulfilledQty, line.RequestedQty)
		if err := s.store.OrderLinePut(ctx, *line); err != nil {
			return err
		}
		if err := claim.Decrease(pl.ProductID, pl.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ProcessRestock: приход по каждому товару, затем разбор журнала
// отложенного спроса от старых записей к новым
func (s *service) ProcessRestock(ctx context.Context, items []RestockItem) (RestockResult, error) {
	var result RestockResult
	for _, item := range items {
		if item.Quantity <= 0 {
			return result, ErrInsufficientData
		}
		product, err := s.store.ProductGet(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return result, ErrProductNotFound
			}
			return result, err
		}
		if err := s.restockProduct(ctx, product, item.Quantity, &result); err != nil {
			return result, err
		}
		result.ProductsRestocked++
	}
	return result, nil
}

func (s *service) restockProduct(ctx context.Context, product model.Product, qty int64, result *RestockResult) error {
	claim, err := s.ledger.Acquire([]int64{product.ID})
	if err != nil {
		return err
	}
	defer claim.Release()

	if err := claim.Increase(product.ID, qty); err != nil {
		return err
	}
	s.zaplog.Info("increased inventory",
		zap.Int64("product", product.ID),
		zap.Int64("qty", qty))

	entries, err := s.store.BackorderGetByProduct(ctx, product.ID)
	if err != nil {
		return err
	}

	remaining := qty
	for _, entry := range entries {
		if remaining <= 0 {
			break
		}

		pendingQty := entry.PendingQty

		shipped, shipments, err := s.shipBackorder(ctx, claim, product, entry)
		if err != nil {
			return err
		}
		result.ShipmentsCreated += shipments

		switch {
		case shipped >= entry.PendingQty:
			if err := s.store.BackorderDelete(ctx, entry.ID); err != nil {
				return err
			}
		case shipped > 0:
			// частичная отгрузка: запись остается в голове очереди
			// с прежним created_at
			entry.PendingQty -= shipped
			if err := s.store.BackorderPut(ctx, entry); err != nil {
				return err
			}
		}

		count, err := s.store.BackorderCountByOrder(ctx, entry.OrderID)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := s.store.OrderPutStatus(ctx, entry.OrderID, model.OrderStatusCompleted); err != nil {
				return err
			}
			result.OrdersUpdated++
			s.zaplog.Info("completed order", zap.Int64("order", entry.OrderID))
		}

		// счетчик расхода уменьшается на полный pending_qty записи,
		// а не на фактически отгруженное количество
		remaining -= pendingQty
	}

	return s.saveInventory(ctx, claim)
}

// Отгрузка в счет одной записи отложенного спроса, не больше
// ее pending_qty
func (s *service) shipBackorder(ctx context.Context, claim *ledger.Claim, product model.Product,
	entry model.BackorderEntry) (int64, int, error) {

	available := claim.Quantities()[entry.ProductID]
	toShip := min(available, entry.PendingQty)
	if toShip <= 0 {
		return 0, 0, nil
	}

	packages, err := packer.Pack([]packer.Line{packer.NewLine(entry.ProductID, toShip, product.MassG)})
	if err != nil {
		return 0, 0, err
	}

	order, err := s.store.OrderGet(ctx, entry.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return 0, 0, ErrOrderNotFound
		}
		return 0, 0, err
	}
	lineIndex := make(map[int64]*model.OrderLine, len(order.Lines))
	for i := range order.Lines {
		lineIndex[order.Lines[i].ProductID] = &order.Lines[i]
	}
	if lineIndex[entry.ProductID] == nil {
		return 0, 0, ErrOrderNotFound
	}

	now := time.Now()
	for _, pkg := range packages {
		if err := s.commitPackage(ctx, claim, entry.OrderID, pkg, lineIndex, now); err != nil {
			return 0, 0, err
		}
	}
	return toShip, len(packages), nil
}

func (s *service) saveInventory(ctx context.Context, claim *ledger.Claim) error {
	for id, qty := range claim.Quantities() {
		if err := s.store.InventoryPut(ctx, id, qty); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (model.Order, error) {
	order, err := s.store.OrderGet(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, err
	}
	return order, nil
}

func (s *service) GetShipment(ctx context.Context, shipmentID string) (model.Shipment, error) {
	shipment, err := s.store.ShipmentGet(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return model.Shipment{}, ErrShipmentNotFound
		}
		return model.Shipment{}, err
	}
	return shipment, nil
}
