package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

var testNow = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func dupErr(key string) error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key '" + key + "'"}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(dupErr("payments.uq_payments_booking"), "uq_payments_booking"))
	assert.True(t, isDuplicateKey(dupErr("payments.uq_payments_booking"), ""))
	assert.False(t, isDuplicateKey(dupErr("payments.uq_payments_booking"), "uq_invoices_number"))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}, ""))
	assert.False(t, isDuplicateKey(errors.New("1062"), ""))
}

func TestClientCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepo(db)

	mock.ExpectExec("INSERT INTO clients").
		WithArgs(uint64(7), "Jane Doe", sql.NullString{}, sql.NullString{String: "jane@example.com", Valid: true},
			sql.NullString{}, sql.NullString{}, testNow).
		WillReturnResult(sqlmock.NewResult(11, 1))

	c := &model.Client{OwnerID: 7, Name: "Jane Doe", Email: "jane@example.com", CreatedAt: testNow}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, uint64(11), c.ID)
}

func TestClientListByOwnerNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepo(db)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "company", "email", "phone", "country", "created_at"}).
		AddRow(2, 7, "Second", nil, nil, nil, "Kenya", testNow).
		AddRow(1, 7, "First", "ACME", nil, nil, nil, testNow.Add(-time.Hour))
	mock.ExpectQuery("FROM clients WHERE owner_id = \\? ORDER BY created_at DESC").
		WithArgs(uint64(7)).WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Second", got[0].Name)
	assert.Equal(t, "Kenya", got[0].Country)
	assert.Equal(t, "ACME", got[1].Company)
}

func TestHotelGetByIDAndOwnerTxNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHotelRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM hotels WHERE id = \\? AND owner_id = \\?").
		WithArgs(uint64(3), uint64(7)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.GetByIDAndOwnerTx(context.Background(), tx, 3, 7)
	assert.ErrorIs(t, err, ErrHotelNotFound)
	require.NoError(t, tx.Rollback())
}

func TestPaymentCreateTxDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").WillReturnError(dupErr("payments.uq_payments_booking"))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.CreateTx(context.Background(), tx, &model.Payment{
		BookingID: 5, Amount: decimal.NewFromInt(600), Method: model.MethodCash, CreatedAt: testNow,
	})
	assert.ErrorIs(t, err, ErrPaymentExists)
	require.NoError(t, tx.Rollback())
}

func TestPaymentExistsForBookingTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPaymentRepo()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM payments").WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("SELECT 1 FROM payments").WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	exists, err := repo.ExistsForBookingTx(context.Background(), tx, 5)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = repo.ExistsForBookingTx(context.Background(), tx, 6)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, tx.Commit())
}

func TestInvoiceCreateTxDuplicateNumber(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").WillReturnError(dupErr("invoices.uq_invoices_number"))
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	inv := &model.Invoice{BookingID: 9, InvoiceNumber: "INV-1-1", CreatedAt: testNow}
	assert.ErrorIs(t, NewInvoiceRepo().CreateTx(context.Background(), tx, inv), ErrDuplicateNumber)
	inv.InvoiceNumber = "INV-1-2"
	require.NoError(t, NewInvoiceRepo().CreateTx(context.Background(), tx, inv))
	assert.Equal(t, uint64(4), inv.ID)
	require.NoError(t, tx.Commit())
}

func TestCreateItemsTxAssignsPositions(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_items").
		WillReturnResult(sqlmock.NewResult(20, 2))
	mock.ExpectCommit()

	items := []model.LineItem{
		{Service: "Game drive", Pax: 2, CostPerPax: decimal.NewFromInt(100), Amount: decimal.NewFromInt(600)},
		{Service: "Park fees", Pax: 2, CostPerPax: decimal.NewFromInt(50), Amount: decimal.NewFromInt(100)},
	}
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.CreateItemsTx(context.Background(), tx, 9, items))
	require.NoError(t, tx.Commit())

	assert.Equal(t, []int{1, 2}, []int{items[0].Position, items[1].Position})
	assert.Equal(t, []uint64{20, 21}, []uint64{items[0].ID, items[1].ID})
	assert.Equal(t, uint64(9), items[1].BookingID)
}

var detailColumns = []string{
	"id", "owner_id", "client_id", "hotel_id", "check_in", "check_out", "rooms", "total_amount", "status",
	"ref", "notes", "meal_plan", "special_requests", "last_payment_date", "created_at", "updated_at",
	"c_id", "c_owner_id", "c_name", "c_company", "c_email", "c_phone", "c_country", "c_created_at",
	"h_id", "h_owner_id", "h_name", "h_location", "h_email", "h_phone", "h_mpesa", "h_bank", "h_created_at",
	"i_id", "i_number", "i_created_at",
	"p_id", "p_amount", "p_method", "p_tx", "p_created_at",
	"r_id", "r_number", "r_created_at",
	"v_id", "v_number", "v_created_at",
}

func detailRow(id uint64, paid bool) []driver.Value {
	checkIn := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)
	row := []driver.Value{
		id, 7, 1, 2, checkIn, checkIn.AddDate(0, 0, 3), 1, "600.00", "PENDING",
		"REF-1", nil, "Full board", nil, nil, testNow, testNow,
		1, 7, "Jane Doe", nil, "jane@example.com", nil, "Kenya", testNow,
		2, 7, "Savanna Lodge", "Maasai Mara", nil, nil, "0700000000", nil, testNow,
		30, "INV-1-1", testNow,
		nil, nil, nil, nil, nil,
		nil, nil, nil,
		nil, nil, nil,
	}
	if paid {
		row[8] = "PAID"
		copy(row[36:44], []driver.Value{40, "600.00", "CASH", nil, testNow, 50, "RCPT-1-1", testNow})
	}
	return row
}

func TestGetDetailByIDAndOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(9), uint64(7)).
		WillReturnRows(sqlmock.NewRows(detailColumns).AddRow(detailRow(9, true)...))
	mock.ExpectQuery("FROM booking_items WHERE booking_id IN \\(\\?\\)").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "position", "service_date", "service", "pax", "cost_pp", "amount"}).
			AddRow(20, 9, 1, nil, "Game drive", 2, "100.00", "600.00"))

	d, err := repo.GetDetailByIDAndOwner(context.Background(), 9, 7)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPaid, d.Status)
	assert.Equal(t, "Full board", d.MealPlan)
	assert.Equal(t, "Savanna Lodge", d.Hotel.Name)
	assert.Equal(t, "0700000000", d.Hotel.MpesaNumber)
	require.NotNil(t, d.Invoice)
	assert.Equal(t, "INV-1-1", d.Invoice.InvoiceNumber)
	require.NotNil(t, d.Payment)
	assert.Equal(t, model.MethodCash, d.Payment.Method)
	assert.True(t, d.Payment.Amount.Equal(decimal.NewFromInt(600)))
	require.NotNil(t, d.Receipt)
	assert.Nil(t, d.Voucher)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "Game drive", d.Items[0].Service)
	assert.Nil(t, d.Items[0].Date)
}

func TestGetDetailByIDAndOwnerNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(9), uint64(8)).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	_, err := repo.GetDetailByIDAndOwner(context.Background(), 9, 8)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListDetailsByOwnerLoadsItemsOnce(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery("FROM bookings b").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(detailColumns).
			AddRow(detailRow(10, false)...).
			AddRow(detailRow(9, true)...))
	mock.ExpectQuery("FROM booking_items WHERE booking_id IN \\(\\?,\\?\\)").WithArgs(uint64(10), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "position", "service_date", "service", "pax", "cost_pp", "amount"}).
			AddRow(21, 9, 1, nil, "Transfer", 2, "50.00", "100.00").
			AddRow(22, 10, 1, nil, "Lodge", 2, "100.00", "600.00").
			AddRow(23, 10, 2, nil, "Park fees", 2, "25.00", "50.00"))

	got, err := repo.ListDetailsByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(10), got[0].ID)
	assert.Nil(t, got[0].Payment)
	assert.Len(t, got[0].Items, 2)
	assert.Len(t, got[1].Items, 1)
}

func TestTokenRotateRejectsRevoked(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Rotate(context.Background(), 1, "old", "new", testNow)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenValidateExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	repo.now = func() time.Time { return testNow }

	mock.ExpectQuery("FROM refresh_tokens").WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(1, testNow.Add(-time.Minute), nil))

	_, err := repo.ValidateRefresh(context.Background(), "h")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("op@example.com", "Op", sqlmock.AnyArg(), model.RoleOperator).
		WillReturnError(dupErr("users.uq_users_email"))

	_, err := repo.Create(context.Background(), "  OP@example.com ", "Op", "password1", model.RoleOperator, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}
