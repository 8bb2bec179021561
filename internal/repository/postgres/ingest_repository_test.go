package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

func TestIngestRepositoryUpsertOrderWritesHeaderAndItems(t *testing.T) {
	db, mock := newMockDB(t)

	order := &domain.Order{
		ID:          "o-1",
		CreatedAt:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:      domain.OrderStatusDelivered,
		Customer:    domain.Customer{Name: "Ana", Email: "ana@example.com"},
		TotalAmount: 150,
		Items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 1, UnitPrice: 100, Subtotal: 100},
			{ProductID: "p2", Quantity: 2, UnitPrice: 25, Subtotal: 50},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("o-1", order.CreatedAt, "delivered", "Ana", "ana@example.com", 150.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM order_items").WithArgs("o-1").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO order_items")
	prep.ExpectExec().WithArgs("o-1", "p1", 1, 100.0, 100.0).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("o-1", "p2", 2, 25.0, 50.0).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	repo := NewIngestRepository(db)
	require.NoError(t, repo.UpsertOrder(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRepositoryUpsertOrderRollsBackOnItemFailure(t *testing.T) {
	db, mock := newMockDB(t)

	order := &domain.Order{
		ID:     "o-2",
		Status: domain.OrderStatusPending,
		Items:  []domain.OrderItem{{ProductID: "p1", Quantity: 1}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM order_items").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO order_items").ExpectExec().WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	repo := NewIngestRepository(db)
	err := repo.UpsertOrder(context.Background(), order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "o-2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRepositoryUpsertProductPassesNullExpiry(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO products").
		WithArgs("p1", "Serum", "SKU-1", "skincare", 20.0, 8.0, 5, 10, 100, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewIngestRepository(db)
	err := repo.UpsertProduct(context.Background(), &domain.Product{
		ID: "p1", Name: "Serum", SKU: "SKU-1", Category: "skincare",
		Price: 20, Cost: 8, CurrentStock: 5, MinimumStock: 10, MaximumStock: 100,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRepositoryUpsertOrderWaitsForTransactionSlot(t *testing.T) {
	db, mock := newMockDB(t)
	// No slots: the write must give up once the context expires.
	db.sem = semaphore.NewWeighted(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewIngestRepository(db).UpsertOrder(ctx, &domain.Order{ID: "o-3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
