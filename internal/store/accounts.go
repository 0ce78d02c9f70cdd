package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/importer"
)

// Accounts implements importer.AccountStore on top of Postgres.
type Accounts struct {
	db DBTX
}

// NewAccounts creates an account store over the given connection.
func NewAccounts(db DBTX) *Accounts {
	return &Accounts{db: db}
}

// FindByName matches an account by name within a branch, case-insensitively
// but exactly. Accounts are reference data and are never created by imports,
// so there is no fuzzy matching here. Returns (nil, nil) when nothing
// matches.
func (s *Accounts) FindByName(ctx context.Context, branchID, name string) (*importer.Account, error) {
	const q = `
		SELECT id, branch_id, name
		FROM accounts
		WHERE branch_id = $1 AND lower(name) = lower($2)
		LIMIT 1`

	var a importer.Account
	err := s.db.QueryRow(ctx, q, branchID, name).Scan(&a.ID, &a.BranchID, &a.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDatabase(err, "find account by name")
	}
	return &a, nil
}
