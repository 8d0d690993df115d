package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicateProduct      = errors.New("product already in ledger")
	ErrProductNotFound       = errors.New("product not found in ledger")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidQuantity       = errors.New("quantity is incorrect")
	ErrNotHeld               = errors.New("product is not locked by this claim")
)

// Ledger хранит доступное количество по каждому товару.
// Изменения только под эксклюзивной блокировкой записи товара
type Ledger struct {
	mu      sync.RWMutex
	records map[int64]*record
}

type record struct {
	mu           sync.Mutex
	availableQty int64
}

func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[int64]*record),
	}
}

// Initialize заводит запись товара с нулевым остатком
func (l *Ledger) Initialize(productID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[productID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateProduct, productID)
	}
	l.records[productID] = &record{}
	return nil
}

func (l *Ledger) Exists(productID int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.records[productID]
	return ok
}

// Claim - набор записей, захваченных одной операцией.
// Increase/Decrease допустимы только по захваченным товарам,
// Release снимает все блокировки разом
type Claim struct {
	ledger *Ledger
	ids    []int64
	held   map[int64]*record
}

// Acquire захватывает записи перечисленных товаров.
// Блокировки берутся строго по возрастанию productID - единственная
// защита от взаимной блокировки при пересекающихся наборах товаров
func (l *Ledger) Acquire(productIDs []int64) (*Claim, error) {
	ids := make([]int64, 0, len(productIDs))
	seen := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	l.mu.RLock()
	held := make(map[int64]*record, len(ids))
	for _, id := range ids {
		rec, ok := l.records[id]
		if !ok {
			l.mu.RUnlock()
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		held[id] = rec
	}
	l.mu.RUnlock()

	for _, id := range ids {
		held[id].mu.Lock()
	}

	return &Claim{ledger: l, ids: ids, held: held}, nil
}

// Release снимает блокировки в обратном порядке захвата
func (c *Claim) Release() {
	for i := len(c.ids) - 1; i >= 0; i-- {
		c.held[c.ids[i]].mu.Unlock()
	}
	c.held = nil
	c.ids = nil
}

// Quantities возвращает остатки по захваченным товарам
func (c *Claim) Quantities() map[int64]int64 {
	quantities := make(map[int64]int64, len(c.ids))
	for id, rec := range c.held {
		quantities[id] = rec.availableQty
	}
	return quantities
}

func (c *Claim) Increase(productID int64, qty int64) error {
	rec, ok := c.held[productID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotHeld, productID)
	}
	if qty < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	rec.availableQty += qty
	return nil
}

func (c *Claim) Decrease(productID int64, qty int64) error {
	rec, ok := c.held[productID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotHeld, productID)
	}
	if qty < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	if qty > rec.availableQty {
		return fmt.Errorf("%w: product %d available=%d requested=%d",
			ErrInsufficientInventory, productID, rec.availableQty, qty)
	}
	rec.availableQty -= qty
	return nil
}
