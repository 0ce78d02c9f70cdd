// Package importer drives the bulk-import pipeline: for each validated row it
// resolves or creates the referenced customer, resolves the target account,
// and writes the transaction with per-row retry. Rows are processed
// independently; one row's failure never stops the rest of the batch.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/clean"
	"github.com/finvolo/ledger/internal/parse"
)

// Customer is the counterpart entity a transaction row references by name.
type Customer struct {
	ID       string
	BranchID string
	Name     string
}

// Account is the ledger account a transaction posts against.
type Account struct {
	ID       string
	BranchID string
	Name     string
}

// Transaction is the final write payload for one imported row.
type Transaction struct {
	ID          string          `json:"id"`
	BranchID    string          `json:"branchId"`
	CustomerID  string          `json:"customerId"`
	AccountID   string          `json:"accountId"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	ActorID     string          `json:"actorId"`

	// ImportKey uniquely identifies this import attempt. Inserts are
	// idempotent on it, so a retry after a timed-out-but-committed write
	// cannot create a duplicate.
	ImportKey uuid.UUID `json:"importKey"`
}

// CustomerStore resolves and creates customers within a branch scope.
// FindByName returns (nil, nil) when no customer matches.
type CustomerStore interface {
	FindByName(ctx context.Context, branchID, name string) (*Customer, error)
	Create(ctx context.Context, c Customer) (*Customer, error)
}

// AccountStore resolves accounts by name within a branch scope.
// FindByName returns (nil, nil) when no account matches.
type AccountStore interface {
	FindByName(ctx context.Context, branchID, name string) (*Account, error)
}

// TransactionStore persists transactions. Insert must be idempotent on the
// transaction's ImportKey.
type TransactionStore interface {
	Insert(ctx context.Context, t Transaction) (*Transaction, error)
}

// Phase identifies where in an import run a progress event was emitted.
type Phase string

const (
	PhaseResolving Phase = "resolving"
	PhaseInserting Phase = "inserting"
	PhaseComplete  Phase = "complete"
)

// ProgressEvent reports import progress to an observer.
type ProgressEvent struct {
	Phase     Phase
	Processed int
	Total     int
	Succeeded int
	Failed    int
}

// Importer orchestrates bulk imports against the three store collaborators.
type Importer struct {
	Customers    CustomerStore
	Accounts     AccountStore
	Transactions TransactionStore

	// Retry wraps each row's insert. Zero value means DefaultRetryConfig.
	Retry apperr.RetryConfig

	// BatchSize bounds how many rows are in flight concurrently.
	// Zero means DefaultBatchSize.
	BatchSize int

	// DayFirst reads ambiguous numeric dates day-first. Rows arriving from
	// the cleaning pipeline are already ISO, so this only matters for
	// callers importing raw rows directly.
	DayFirst bool

	// Progress, when set, receives a resolving event when the run starts,
	// an inserting event after each completed batch, and a complete event
	// at the end. Lifecycle is owned by the caller; there is no global
	// notification mechanism.
	Progress func(ProgressEvent)

	Log *slog.Logger
}

// DefaultBatchSize is the per-batch concurrency bound for imports.
const DefaultBatchSize = 10

// BulkResult is the outcome of one bulk import. It is always returned, never
// an error: partial success is the normal case.
type BulkResult struct {
	Successes []Transaction        `json:"successes"`
	Errors    []apperr.ImportError `json:"errors"`
}

// BulkImport processes rows independently and returns per-row outcomes.
// Row-addressed errors carry the 0-based source row index; the batch is
// never aborted by a single row.
func (im *Importer) BulkImport(ctx context.Context, rows []parse.RawRow, branchID, actorID string) BulkResult {
	result := BulkResult{
		Successes: []Transaction{},
		Errors:    []apperr.ImportError{},
	}

	size := im.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	log := im.logger().With("branch_id", branchID, "rows", len(rows))
	log.Info("bulk import started")

	total := len(rows)
	im.notify(ProgressEvent{Phase: PhaseResolving, Total: total})

	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}

		// Retry happens inside processRow at the insert, where idempotency
		// is guaranteed; the batch helper itself must not retry on top of
		// that.
		batch := Batch(ctx, rows[start:end], size, apperr.NoRetry(), func(ctx context.Context, row parse.RawRow) (Transaction, error) {
			return im.processRow(ctx, row, branchID, actorID)
		})

		for _, tx := range batch.Results {
			if tx != nil {
				result.Successes = append(result.Successes, *tx)
			}
		}
		for _, fail := range batch.Errors {
			row := rows[start+fail.Index]
			result.Errors = append(result.Errors, apperr.ToImportError(fail.Err, row.Line, apperr.GeneralColumn))
		}

		im.notify(ProgressEvent{
			Phase:     PhaseInserting,
			Processed: end,
			Total:     total,
			Succeeded: len(result.Successes),
			Failed:    len(result.Errors),
		})
	}

	im.notify(ProgressEvent{
		Phase:     PhaseComplete,
		Processed: total,
		Total:     total,
		Succeeded: len(result.Successes),
		Failed:    len(result.Errors),
	})

	log.Info("bulk import finished",
		"succeeded", len(result.Successes),
		"failed", len(result.Errors),
	)
	return result
}

// processRow runs the resolve → resolve → insert sequence for one row.
// Failures are returned as ImportError values so the caller keeps the
// row/column addressing.
func (im *Importer) processRow(ctx context.Context, row parse.RawRow, branchID, actorID string) (Transaction, error) {
	var zero Transaction

	// 1. Resolve or create the customer referenced by name.
	name := clean.Name(row.Get(parse.FieldCustomerName))
	customer, err := im.Customers.FindByName(ctx, branchID, name)
	if err != nil {
		return zero, rowError(row, parse.FieldCustomerName, apperr.FromDatabase(err, "find customer"))
	}
	if customer == nil {
		customer, err = im.Customers.Create(ctx, Customer{BranchID: branchID, Name: name})
		if err != nil {
			return zero, rowError(row, parse.FieldCustomerName, apperr.FromDatabase(err, "create customer"))
		}
		im.logger().Debug("customer created", "name", name, "customer_id", customer.ID)
	}

	// 2. Resolve the account; absence is a hard per-row error, accounts are
	// never created implicitly.
	accountRef := row.Get(parse.FieldAccountRef)
	account, err := im.Accounts.FindByName(ctx, branchID, accountRef)
	if err != nil {
		return zero, rowError(row, parse.FieldAccountRef, apperr.FromDatabase(err, "find account"))
	}
	if account == nil {
		return zero, apperr.ImportError{
			Row:     row.Line,
			Column:  parse.FieldAccountRef,
			Message: fmt.Sprintf("account %q not found", accountRef),
			Value:   accountRef,
		}
	}

	// 3. Build the normalized payload.
	tx, ierr := buildTransaction(row, customer.ID, account.ID, branchID, actorID, im.DayFirst)
	if ierr != nil {
		return zero, *ierr
	}

	// 4. Insert with bounded retry. The import key makes retried inserts
	// safe against timeout-after-commit duplication.
	inserted, err := apperr.Retry(ctx, im.retryConfig(), func(ctx context.Context) (*Transaction, error) {
		return im.Transactions.Insert(ctx, tx)
	}, im.onRetry(row))
	if err != nil {
		return zero, rowError(row, apperr.GeneralColumn, apperr.FromDatabase(err, "insert transaction"))
	}

	return *inserted, nil
}

// buildTransaction converts a validated row into the final write payload.
func buildTransaction(row parse.RawRow, customerID, accountID, branchID, actorID string, dayFirst bool) (Transaction, *apperr.ImportError) {
	kind, ok := clean.NormalizeKind(row.Get(parse.FieldKind))
	if !ok {
		return Transaction{}, &apperr.ImportError{
			Row:     row.Line,
			Column:  parse.FieldKind,
			Message: "unrecognized transaction kind",
			Value:   row.Get(parse.FieldKind),
		}
	}

	amount, ok := clean.Amount(row.Get(parse.FieldAmount))
	if !ok {
		return Transaction{}, &apperr.ImportError{
			Row:     row.Line,
			Column:  parse.FieldAmount,
			Message: "invalid amount",
			Value:   row.Get(parse.FieldAmount),
		}
	}

	iso := clean.AutoFormatDate(row.Get(parse.FieldDate), dayFirst)
	date, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return Transaction{}, &apperr.ImportError{
			Row:     row.Line,
			Column:  parse.FieldDate,
			Message: "invalid date",
			Value:   row.Get(parse.FieldDate),
		}
	}

	return Transaction{
		BranchID:    branchID,
		CustomerID:  customerID,
		AccountID:   accountID,
		Kind:        kind,
		Amount:      amount,
		Date:        date,
		Description: row.Get(parse.FieldDescription),
		Reference:   row.Get(parse.FieldReference),
		ActorID:     actorID,
		ImportKey:   uuid.New(),
	}, nil
}

// rowError attaches row/column addressing to an infrastructure failure.
func rowError(row parse.RawRow, column string, app *apperr.AppError) apperr.ImportError {
	return apperr.ToImportError(app, row.Line, column)
}

func (im *Importer) retryConfig() apperr.RetryConfig {
	if im.Retry.MaxAttempts == 0 {
		return apperr.DefaultRetryConfig()
	}
	return im.Retry
}

func (im *Importer) onRetry(row parse.RawRow) apperr.RetryNotify {
	return func(attempt int, err *apperr.AppError, delay time.Duration) {
		im.logger().Warn("retrying row insert",
			"row", row.Line,
			"attempt", attempt,
			"delay", delay,
			"code", err.Code,
		)
	}
}

func (im *Importer) notify(ev ProgressEvent) {
	if im.Progress != nil {
		im.Progress(ev)
	}
}

func (im *Importer) logger() *slog.Logger {
	if im.Log != nil {
		return im.Log
	}
	return slog.Default()
}
