package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/order/app"
	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	customer_name   TEXT NOT NULL,
	customer_phone  TEXT NOT NULL,
	delivery_method TEXT NOT NULL,
	address         TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	currency        TEXT NOT NULL,
	subtotal_amount INTEGER NOT NULL,
	shipping_amount INTEGER NOT NULL,
	total_amount    INTEGER NOT NULL,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_items (
	id                TEXT PRIMARY KEY,
	order_id          TEXT NOT NULL REFERENCES orders(id),
	position          INTEGER NOT NULL,
	product_id        TEXT NOT NULL,
	name              TEXT NOT NULL,
	size              TEXT NOT NULL DEFAULT '',
	color             TEXT NOT NULL DEFAULT '',
	unit_amount       INTEGER NOT NULL,
	quantity          INTEGER NOT NULL,
	line_total_amount INTEGER NOT NULL
);`

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(ctx context.Context, db *sql.DB) (*OrderRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}
	return &OrderRepo{db: db}, nil
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	var createdOrder domain.Order

	err := r.execTX(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Truncate(time.Millisecond)
		o := order
		o.ID = uuid.NewString()
		o.CreatedAt, o.UpdatedAt = now, now

		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, customer_name, customer_phone, delivery_method, address, notes,
				status, currency, subtotal_amount, shipping_amount, total_amount, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.CustomerName, o.CustomerPhone, string(o.DeliveryMethod), o.Address, o.Notes,
			o.Status, o.Currency, o.SubTotalAmount, o.ShippingAmount, o.TotalAmount,
			now.UnixMilli(), now.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]domain.OrderItem, 0, len(order.OrderItems))

		for i, item := range order.OrderItems {
			expected := item.UnitAmount * int64(item.Quantity)
			if item.LineTotalAmount != expected {
				return fmt.Errorf("item %d: line total mismatch", i)
			}

			item.ID = uuid.NewString()
			item.OrderID = o.ID
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, position, product_id, name, size, color,
					unit_amount, quantity, line_total_amount)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID, item.OrderID, i, item.ProductID, item.Name, item.Size, item.Color,
				item.UnitAmount, item.Quantity, item.LineTotalAmount)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}

			orderItems = append(orderItems, item)
		}

		o.OrderItems = orderItems
		createdOrder = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return createdOrder, nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var (
		o                domain.Order
		method           string
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_name, customer_phone, delivery_method, address, notes,
			status, currency, subtotal_amount, shipping_amount, total_amount, created_at, updated_at
		FROM orders WHERE id = ?`, id).Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &method, &o.Address, &o.Notes,
		&o.Status, &o.Currency, &o.SubTotalAmount, &o.ShippingAmount, &o.TotalAmount, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.DeliveryMethod = domain.DeliveryMethod(method)
	o.CreatedAt = time.UnixMilli(created).UTC()
	o.UpdatedAt = time.UnixMilli(updated).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, size, color, unit_amount, quantity, line_total_amount
		FROM order_items WHERE order_id = ? ORDER BY position`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Size, &it.Color,
			&it.UnitAmount, &it.Quantity, &it.LineTotalAmount); err != nil {
			return domain.Order{}, err
		}
		o.OrderItems = append(o.OrderItems, it)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
