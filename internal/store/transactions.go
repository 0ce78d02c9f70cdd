package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/importer"
)

// Transactions implements importer.TransactionStore on top of Postgres.
type Transactions struct {
	db DBTX
}

// NewTransactions creates a transaction store over the given connection.
func NewTransactions(db DBTX) *Transactions {
	return &Transactions{db: db}
}

// Insert writes a transaction, idempotent on its import key. A conflicting
// import key means a previous attempt already committed (e.g. the client
// retried after a timeout); the existing row is returned as a success
// instead of a duplicate being created.
func (s *Transactions) Insert(ctx context.Context, t importer.Transaction) (*importer.Transaction, error) {
	const insert = `
		INSERT INTO transactions
			(id, branch_id, customer_id, account_id, kind, amount, tx_date,
			 description, reference, created_by, import_key)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11)
		ON CONFLICT (import_key) DO NOTHING
		RETURNING id`

	id := uuid.NewString()
	err := s.db.QueryRow(ctx, insert,
		id, t.BranchID, t.CustomerID, t.AccountID, t.Kind, t.Amount.String(),
		t.Date, t.Description, t.Reference, t.ActorID, t.ImportKey,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: this import key was already written. Fetch the winner.
		const lookup = `SELECT id FROM transactions WHERE import_key = $1`
		if err := s.db.QueryRow(ctx, lookup, t.ImportKey).Scan(&id); err != nil {
			return nil, apperr.FromDatabase(err, "lookup transaction by import key")
		}
	} else if err != nil {
		return nil, apperr.FromDatabase(err, "insert transaction")
	}

	t.ID = id
	return &t, nil
}
