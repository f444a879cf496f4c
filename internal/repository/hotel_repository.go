package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// HotelRepo provides access to the hotels table.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a HotelRepo bound to db.
func NewHotelRepo(db *sql.DB) *HotelRepo {
	return &HotelRepo{db: db}
}

const hotelColumns = "id, owner_id, name, location, email, phone, mpesa_number, bank_details, created_at"

// Create inserts h and sets its ID.  h.CreatedAt must already be set.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	const q = `INSERT INTO hotels (owner_id, name, location, email, phone, mpesa_number, bank_details, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.OwnerID, h.Name,
		nullString(h.Location), nullString(h.Email), nullString(h.Phone),
		nullString(h.MpesaNumber), nullString(h.BankDetails), h.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByOwner returns all hotels of ownerID, newest first.
func (r *HotelRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Hotel, error) {
	q := "SELECT " + hotelColumns + " FROM hotels WHERE owner_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Hotel, 0)
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// GetByIDAndOwnerTx loads a hotel inside tx.  A hotel owned by another
// operator yields ErrHotelNotFound.
func (r *HotelRepo) GetByIDAndOwnerTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) (*model.Hotel, error) {
	q := "SELECT " + hotelColumns + " FROM hotels WHERE id = ? AND owner_id = ?"
	h, err := scanHotel(tx.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return h, nil
}

func scanHotel(s rowScanner) (*model.Hotel, error) {
	var hs hotelScan
	if err := s.Scan(hs.dest()...); err != nil {
		return nil, err
	}
	h := hs.hotel()
	return &h, nil
}
