// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"meshdemo/internal/model"
)

// OrderRepository defines data access for orders and their items.
// Persistence only; no business logic.
type OrderRepository interface {
	// Save inserts the order or replaces the stored row and its items with the given state.
	Save(ctx context.Context, order *model.Order) error

	// FindByID returns an order with its items. A missing order yields sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Order, error)
}
