// Package repository holds the MySQL-backed data access for the back office.
// Every lookup of an owned entity filters by owner_id so that one operator
// can never see another operator's records; a record owned by someone else
// is reported exactly like a missing one.
package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrHotelNotFound   = errors.New("hotel not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrDuplicateNumber is returned when a generated invoice, receipt or
	// voucher number collides with an existing one.  Callers generate a
	// new number and try again.
	ErrDuplicateNumber = errors.New("duplicate document number")

	// ErrPaymentExists is returned when a booking already has a payment.
	ErrPaymentExists = errors.New("payment already recorded")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL duplicate-key error.  When
// key is non-empty the error must also name that unique index.
func isDuplicateKey(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return false
	}
	return key == "" || strings.Contains(me.Message, key)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
