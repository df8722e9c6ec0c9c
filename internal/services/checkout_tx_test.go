package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func productRow(id uuid.UUID, name, price string, stock int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "stock", "active"}).
		AddRow(id.String(), name, price, stock, true)
}

const (
	lockedProductQuery = `SELECT (.+) FROM "products" (.+) FOR UPDATE`
	lockedCouponQuery  = `SELECT (.+) FROM "coupons" (.+) FOR UPDATE`
)

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	db, mock := newMockDB(t)
	p1 := uuid.New()
	p2 := uuid.New()

	// The second line fails the stock check; nothing after it may run and the
	// transaction must roll back without a single insert or update.
	mock.ExpectBegin()
	mock.ExpectQuery(lockedProductQuery).
		WillReturnRows(productRow(p1, "Arepa de queso", "8500", 10))
	mock.ExpectQuery(lockedProductQuery).
		WillReturnRows(productRow(p2, "Arepa de carne", "9500", 1))
	mock.ExpectRollback()

	svc := NewCheckoutService(db)
	result, err := svc.Checkout(context.Background(), uuid.New(), []CartLine{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 2},
	}, "", PaymentDetails{})

	assert.Nil(t, result)

	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, "Arepa de carne", noStock.ProductName)
	assert.Equal(t, 1, noStock.Available)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRollsBackOnMissingProduct(t *testing.T) {
	db, mock := newMockDB(t)
	missing := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockedProductQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	svc := NewCheckoutService(db)
	result, err := svc.Checkout(context.Background(), uuid.New(), []CartLine{
		{ProductID: missing, Quantity: 1},
	}, "", PaymentDetails{})

	assert.Nil(t, result)

	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.ProductID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutCombinesDuplicateCartLines(t *testing.T) {
	db, mock := newMockDB(t)
	p1 := uuid.New()

	// Two lines for the same product read the row once with their combined
	// quantity; 3+3 against stock 4 must fail instead of committing -2.
	mock.ExpectBegin()
	mock.ExpectQuery(lockedProductQuery).
		WillReturnRows(productRow(p1, "Arepa de queso", "8500", 4))
	mock.ExpectRollback()

	svc := NewCheckoutService(db)
	result, err := svc.Checkout(context.Background(), uuid.New(), []CartLine{
		{ProductID: p1, Quantity: 3},
		{ProductID: p1, Quantity: 3},
	}, "", PaymentDetails{})

	assert.Nil(t, result)

	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, 4, noStock.Available)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutLocksCouponRow(t *testing.T) {
	db, mock := newMockDB(t)
	p1 := uuid.New()
	dbErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(lockedProductQuery).
		WillReturnRows(productRow(p1, "Arepa de queso", "8500", 10))
	mock.ExpectQuery(lockedCouponQuery).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	svc := NewCheckoutService(db)
	result, err := svc.Checkout(context.Background(), uuid.New(), []CartLine{
		{ProductID: p1, Quantity: 1},
	}, "ABUELA15", PaymentDetails{})

	assert.Nil(t, result)
	require.ErrorIs(t, err, dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
