package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshdemo/internal/model"
)

var orderColumns = []string{"id", "customer_id", "total_cents", "status", "payment_id", "trace_id", "span_id", "created_at", "updated_at"}
var itemColumns = []string{"product_id", "quantity", "unit_price_cents", "subtotal_cents", "product_name", "product_category"}

func sampleOrder() *model.Order {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:         "0b7f3c1e-8a53-4d0e-9a40-2a4c51c1f001",
		CustomerID: "cust-1",
		Items: []model.OrderItem{
			{ProductID: "p-1", Quantity: 2, UnitPriceCents: 1500, SubtotalCents: 3000},
			{ProductID: "p-2", Quantity: 1, UnitPriceCents: 999, SubtotalCents: 999},
		},
		TotalCents: 3999,
		Status:     model.OrderStatusCompleted,
		PaymentID:  "pay-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestOrderPostgres_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		o := sampleOrder()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WithArgs(o.ID, o.CustomerID, o.TotalCents, "COMPLETED", o.PaymentID, "", "", o.CreatedAt, o.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM order_items WHERE order_id = ?").
			WithArgs(o.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(o.ID, 0, "p-1", 2, int64(1500), int64(3000), "", "").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(o.ID, 1, "p-2", 1, int64(999), int64(999), "", "").
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		err = NewOrderPostgres(db).Save(ctx, o)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("item insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		o := sampleOrder()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM order_items").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		err = NewOrderPostgres(db).Save(ctx, o)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insert item 0")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

		err = NewOrderPostgres(db).Save(ctx, sampleOrder())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "begin")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderPostgres_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		o := sampleOrder()
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = ?").
			WithArgs(o.ID).
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(o.ID, o.CustomerID, o.TotalCents, "COMPLETED", "pay-1", "trace-1", "span-1", o.CreatedAt, o.UpdatedAt))
		mock.ExpectQuery("SELECT (.+) FROM order_items WHERE order_id = ?").
			WithArgs(o.ID).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow("p-1", 2, 1500, 3000, "", "").
				AddRow("p-2", 1, 999, 999, "Mug", "Kitchen"))

		got, err := NewOrderPostgres(db).FindByID(ctx, o.ID)

		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, model.OrderStatusCompleted, got.Status)
		assert.Equal(t, "trace-1", got.TraceID)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "p-1", got.Items[0].ProductID)
		assert.Equal(t, "Mug", got.Items[1].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := NewOrderPostgres(db).FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("items query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		o := sampleOrder()
		mock.ExpectQuery("SELECT (.+) FROM orders").
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(o.ID, o.CustomerID, o.TotalCents, "CREATED", "", "", "", o.CreatedAt, o.UpdatedAt))
		mock.ExpectQuery("SELECT (.+) FROM order_items").
			WillReturnError(errors.New("timeout"))

		got, err := NewOrderPostgres(db).FindByID(ctx, o.ID)

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
