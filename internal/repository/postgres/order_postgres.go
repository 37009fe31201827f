package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"meshdemo/internal/model"
	"meshdemo/internal/repository"
)

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type OrderPostgres struct {
	db *sql.DB
}

// NewOrderPostgres creates a new OrderPostgres repository.
func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

// Save upserts the order row and rewrites its items in one transaction.
func (r *OrderPostgres) Save(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const qOrder = `
		INSERT INTO orders (id, customer_id, total_cents, status, payment_id, trace_id, span_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			total_cents = EXCLUDED.total_cents,
			status      = EXCLUDED.status,
			payment_id  = EXCLUDED.payment_id,
			trace_id    = EXCLUDED.trace_id,
			span_id     = EXCLUDED.span_id,
			updated_at  = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, qOrder,
		o.ID,
		o.CustomerID,
		o.TotalCents,
		string(o.Status),
		o.PaymentID,
		o.TraceID,
		o.SpanID,
		o.CreatedAt,
		o.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	const qDeleteItems = `DELETE FROM order_items WHERE order_id = $1`
	if _, err := tx.ExecContext(ctx, qDeleteItems, o.ID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	const qItem = `
		INSERT INTO order_items (order_id, position, product_id, quantity, unit_price_cents, subtotal_cents, product_name, product_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, qItem,
			o.ID,
			i,
			it.ProductID,
			it.Quantity,
			it.UnitPriceCents,
			it.SubtotalCents,
			it.ProductName,
			it.ProductCategory,
		); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// FindByID fetches an order and its items in position order.
func (r *OrderPostgres) FindByID(ctx context.Context, id string) (*model.Order, error) {
	const qOrder = `
		SELECT id, customer_id, total_cents, status, payment_id, trace_id, span_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var (
		o      model.Order
		status string
	)
	if err := r.db.QueryRowContext(ctx, qOrder, id).Scan(
		&o.ID,
		&o.CustomerID,
		&o.TotalCents,
		&status,
		&o.PaymentID,
		&o.TraceID,
		&o.SpanID,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)

	const qItems = `
		SELECT product_id, quantity, unit_price_cents, subtotal_cents, product_name, product_category
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, qItems, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	o.Items = make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ProductID,
			&it.Quantity,
			&it.UnitPriceCents,
			&it.SubtotalCents,
			&it.ProductName,
			&it.ProductCategory,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}
