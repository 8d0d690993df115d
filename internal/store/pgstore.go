package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iurnickita/stockroom/internal/model"
	"github.com/iurnickita/stockroom/internal/store/config"
)

type pgStore struct {
	database *sql.DB
}

func newPgStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	// Таблица каталога товаров
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS product (" +
			" product_id BIGINT PRIMARY KEY," +
			" product_name VARCHAR (100) NOT NULL," +
			" mass_g INTEGER NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	// Таблица остатков. Актуальные количества для восстановления
	// книги остатков при перезапуске
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS inventory (" +
			" product_id BIGINT PRIMARY KEY," +
			" available_qty BIGINT NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	// Таблица заказов.
	// Создается одна строка на заказ, после чего меняется ее статус
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS stock_order (" +
			" order_id BIGINT PRIMARY KEY," +
			" status VARCHAR (20) NOT NULL," +
			" created_at TIMESTAMP NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	// Таблица строк заказа
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS order_line (" +
			" order_id BIGINT," +
			" product_id BIGINT," +
			" requested_qty BIGINT NOT NULL," +
			" fulfilled_qty BIGINT NOT NULL," +
			" status VARCHAR (20) NOT NULL," +
			" PRIMARY KEY (order_id, product_id)" +
			" );")
	if err != nil {
		return nil, err
	}

	// Таблицы отгрузок. Записи не редактируются после создания
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS shipment (" +
			" shipment_id VARCHAR (36) PRIMARY KEY," +
			" order_id BIGINT NOT NULL," +
			" total_weight_g INTEGER NOT NULL," +
			" created_at TIMESTAMP NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS shipment_line (" +
			" shipment_id VARCHAR (36)," +
			" line_no SERIAL," +
			" product_id BIGINT NOT NULL," +
			" quantity BIGINT NOT NULL," +
			" PRIMARY KEY (shipment_id, line_no)" +
			" );")
	if err != nil {
		return nil, err
	}

	// Журнал отложенного спроса. Выборка по товару строго
	// в порядке создания записей
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS backorder (" +
			" entry_id SERIAL PRIMARY KEY," +
			" order_id BIGINT NOT NULL," +
			" product_id BIGINT NOT NULL," +
			" pending_qty BIGINT NOT NULL," +
			" created_at TIMESTAMP NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	return &pgStore{database: db}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (store *pgStore) ProductPost(ctx context.Context, product model.Product) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO product (product_id, product_name, mass_g)"+
			" VALUES ($1, $2, $3)",
		product.ID,
		product.Name,
		product.MassG)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (store *pgStore) ProductGet(ctx context.Context, productID int64) (model.Product, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT product_id, product_name, mass_g FROM product"+
			" WHERE product_id = $1",
		productID)
	var product model.Product
	err := row.Scan(&product.ID, &product.Name, &product.MassG)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Product{}, ErrNoRows
		}
		return model.Product{}, err
	}
	return product, nil
}

func (store *pgStore) ProductGetAll(ctx context.Context) ([]model.Product, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT product_id, product_name, mass_g FROM product"+
			" ORDER BY product_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []model.Product
	for rows.Next() {
		var product model.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.MassG); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (store *pgStore) InventoryPut(ctx context.Context, productID int64, availableQty int64) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO inventory (product_id, available_qty)"+
			" VALUES ($1, $2)"+
			" ON CONFLICT (product_id) DO UPDATE SET available_qty = $2",
		productID,
		availableQty)
	return err
}

func (store *pgStore) InventoryGetAll(ctx context.Context) (map[int64]int64, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT product_id, available_qty FROM inventory")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	quantities := make(map[int64]int64)
	for rows.Next() {
		var productID, availableQty int64
		if err := rows.Scan(&productID, &availableQty); err != nil {
			return nil, err
		}
		quantities[productID] = availableQty
	}
	return quantities, rows.Err()
}

func (store *pgStore) OrderPost(ctx context.Context, order model.Order) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO stock_order (order_id, status, created_at)"+
			" VALUES ($1, $2, $3)",
		order.ID,
		order.Status,
		order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	for _, line := range order.Lines {
		_, err = store.database.ExecContext(ctx,
			"INSERT INTO order_line (order_id, product_id, requested_qty, fulfilled_qty, status)"+
				" VALUES ($1, $2, $3, $4, $5)",
			line.OrderID,
			line.ProductID,
			line.RequestedQty,
			line.FulfilledQty,
			line.Status)
		if err != nil {
			return err
		}
	}
	return nil
}

func (store *pgStore) OrderGet(ctx context.Context, orderID int64) (model.Order, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT order_id, status, created_at FROM stock_order"+
			" WHERE order_id = $1",
		orderID)
	var order model.Order
	err := row.Scan(&order.ID, &order.Status, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Order{}, ErrNoRows
		}
		return model.Order{}, err
	}

	rows, err := store.database.QueryContext(ctx,
		"SELECT order_id, product_id, requested_qty, fulfilled_qty, status"+
			" FROM order_line"+
			" WHERE order_id = $1"+
			" ORDER BY product_id",
		orderID)
	if err != nil {
		return model.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.OrderID,
			&line.ProductID,
			&line.RequestedQty,
			&line.FulfilledQty,
			&line.Status)
		if err != nil {
			return model.Order{}, err
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return model.Order{}, err
	}

	shipmentRows, err := store.database.QueryContext(ctx,
		"SELECT shipment_id, order_id, total_weight_g, created_at"+
			" FROM shipment"+
			" WHERE order_id = $1"+
			" ORDER BY created_at",
		orderID)
	if err != nil {
		return model.Order{}, err
	}
	defer shipmentRows.Close()
	for shipmentRows.Next() {
		var shipment model.Shipment
		err := shipmentRows.Scan(&shipment.ID,
			&shipment.OrderID,
			&shipment.TotalWeightG,
			&shipment.CreatedAt)
		if err != nil {
			return model.Order{}, err
		}
		order.Shipments = append(order.Shipments, shipment)
	}
	return order, shipmentRows.Err()
}

func (store *pgStore) OrderPutStatus(ctx context.Context, orderID int64, status string) error {
	_, err := store.database.ExecContext(ctx,
		"UPDATE stock_order"+
			" SET status = $1"+
			" WHERE order_id = $2",
		status,
		orderID)
	return err
}

func (store *pgStore) OrderLinePut(ctx context.Context, line model.OrderLine) error {
	_, err := store.database.ExecContext(ctx,
		"UPDATE order_line"+
			" SET fulfilled_qty = $1,"+
			"     status = $2"+
			" WHERE order_id = $3"+
			"   AND product_id = $4",
		line.FulfilledQty,
		line.Status,
		line.OrderID,
		line.ProductID)
	return err
}

func (store *pgStore) ShipmentPost(ctx context.Context, shipment model.Shipment) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO shipment (shipment_id, order_id, total_weight_g, created_at)"+
			" VALUES ($1, $2, $3, $4)",
		shipment.ID,
		shipment.OrderID,
		shipment.TotalWeightG,
		shipment.CreatedAt)
	if err != nil {
		return err
	}
	for _, line := range shipment.Lines {
		_, err = store.database.ExecContext(ctx,
			"INSERT INTO shipment_line (shipment_id, product_id, quantity)"+
				" VALUES ($1, $2, $3)",
			line.ShipmentID,
			line.ProductID,
			line.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (store *pgStore) ShipmentGet(ctx context.Context, shipmentID string) (model.Shipment, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT shipment_id, order_id, total_weight_g, created_at FROM shipment"+
			" WHERE shipment_id = $1",
		shipmentID)
	var shipment model.Shipment
	err := row.Scan(&shipment.ID, &shipment.OrderID, &shipment.TotalWeightG, &shipment.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Shipment{}, ErrNoRows
		}
		return model.Shipment{}, err
	}

	rows, err := store.database.QueryContext(ctx,
		"SELECT shipment_id, product_id, quantity FROM shipment_line"+
			" WHERE shipment_id = $1"+
			" ORDER BY line_no",
		shipmentID)
	if err != nil {
		return model.Shipment{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line model.ShipmentLine
		if err := rows.Scan(&line.ShipmentID, &line.ProductID, &line.Quantity); err != nil {
			return model.Shipment{}, err
		}
		shipment.Lines = append(shipment.Lines, line)
	}
	return shipment, rows.Err()
}

func (store *pgStore) BackorderPost(ctx context.Context, entry model.BackorderEntry) (int64, error) {
	row := store.database.QueryRowContext(ctx,
		"INSERT INTO backorder (order_id, product_id, pending_qty, created_at)"+
			" VALUES ($1, $2, $3, $4)"+
			" RETURNING entry_id",
		entry.OrderID,
		entry.ProductID,
		entry.PendingQty,
		entry.CreatedAt)
	var entryID int64
	if err := row.Scan(&entryID); err != nil {
		return 0, err
	}
	return entryID, nil
}

func (store *pgStore) BackorderGetByProduct(ctx context.Context, productID int64) ([]model.BackorderEntry, error) {
	// Строго от старых к новым - FIFO по товару
	rows, err := store.database.QueryContext(ctx,
		"SELECT entry_id, order_id, product_id, pending_qty, created_at"+
			" FROM backorder"+
			" WHERE product_id = $1"+
			" ORDER BY created_at, entry_id",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.BackorderEntry
	for rows.Next() {
		var entry model.BackorderEntry
		err := rows.Scan(&entry.ID,
			&entry.OrderID,
			&entry.ProductID,
			&entry.PendingQty,
			&entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (store *pgStore) BackorderCountByOrder(ctx context.Context, orderID int64) (int, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT count(*) FROM backorder"+
			" WHERE order_id = $1",
		orderID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (store *pgStore) BackorderPut(ctx context.Context, entry model.BackorderEntry) error {
	_, err := store.database.ExecContext(ctx,
		"UPDATE backorder"+
			" SET pending_qty = $1"+
			" WHERE entry_id = $2",
		entry.PendingQty,
		entry.ID)
	return err
}

func (store *pgStore) BackorderDelete(ctx context.Context, entryID int64) error {
	_, err := store.database.ExecContext(ctx,
		"DELETE FROM backorder"+
			" WHERE entry_id = $1",
		entryID)
	return err
}
