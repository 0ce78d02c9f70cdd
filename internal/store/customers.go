package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/importer"
)

// Customers implements importer.CustomerStore on top of Postgres.
type Customers struct {
	db DBTX
}

// NewCustomers creates a customer store over the given connection.
func NewCustomers(db DBTX) *Customers {
	return &Customers{db: db}
}

// FindByName fuzzy-matches a customer by name within a branch. The shortest
// matching name wins, so "John Doe" prefers "John Doe" over "John Doe Jr".
// Returns (nil, nil) when nothing matches.
func (s *Customers) FindByName(ctx context.Context, branchID, name string) (*importer.Customer, error) {
	const q = `
		SELECT id, branch_id, name
		FROM customers
		WHERE branch_id = $1 AND name ILIKE $2
		ORDER BY length(name), name
		LIMIT 1`

	pattern := "%" + escapeLike(name) + "%"

	var c importer.Customer
	err := s.db.QueryRow(ctx, q, branchID, pattern).Scan(&c.ID, &c.BranchID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDatabase(err, "find customer by name")
	}
	return &c, nil
}

// Create inserts a new customer and returns it with its generated ID.
func (s *Customers) Create(ctx context.Context, c importer.Customer) (*importer.Customer, error) {
	const q = `
		INSERT INTO customers (id, branch_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, branch_id, name`

	var created importer.Customer
	err := s.db.QueryRow(ctx, q, uuid.NewString(), c.BranchID, c.Name).
		Scan(&created.ID, &created.BranchID, &created.Name)
	if err != nil {
		return nil, apperr.FromDatabase(err, "create customer")
	}
	return &created, nil
}
