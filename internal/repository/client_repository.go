package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/safari-backoffice/internal/model"
)

// ClientRepo provides access to the clients table.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo returns a ClientRepo bound to db.
func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

const clientColumns = "id, owner_id, name, company, email, phone, country, created_at"

// Create inserts c and sets its ID.  c.CreatedAt must already be set.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	const q = `INSERT INTO clients (owner_id, name, company, email, phone, country, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.OwnerID, c.Name,
		nullString(c.Company), nullString(c.Email), nullString(c.Phone), nullString(c.Country), c.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByOwner returns all clients of ownerID, newest first.
func (r *ClientRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Client, error) {
	q := "SELECT " + clientColumns + " FROM clients WHERE owner_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetByIDAndOwnerTx loads a client inside tx.  A client owned by another
// operator yields ErrClientNotFound.
func (r *ClientRepo) GetByIDAndOwnerTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) (*model.Client, error) {
	q := "SELECT " + clientColumns + " FROM clients WHERE id = ? AND owner_id = ?"
	c, err := scanClient(tx.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanClient(s rowScanner) (*model.Client, error) {
	var cs clientScan
	if err := s.Scan(cs.dest()...); err != nil {
		return nil, err
	}
	c := cs.client()
	return &c, nil
}
