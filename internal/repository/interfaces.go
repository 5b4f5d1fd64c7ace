package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
)

// LoanRepository is the persistent loan ledger.
type LoanRepository interface {
	// Create inserts a new loan and returns it with the assigned id.
	Create(ctx context.Context, status domain.Status, wallet chain.Address, amount uint64) (*domain.Loan, error)

	// GetByID retrieves a loan by id. Returns sql.ErrNoRows (wrapped) when
	// the id is absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Count returns the number of loans matching the filter.
	Count(ctx context.Context, filter domain.FilterOptions) (int, error)

	// Find returns loans matching the filter, ordered by id ascending and
	// sliced by the pagination window.
	Find(ctx context.Context, filter domain.FilterOptions, page domain.PaginationOptions) ([]*domain.Loan, error)

	// UpdateExistingByID replaces all mutable fields of the row keyed by
	// loan.ID and returns the stored row. Returns sql.ErrNoRows (wrapped)
	// when the id is absent.
	UpdateExistingByID(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)

	// WithinLoanTx opens a transaction, locks the loan row for its duration
	// and invokes fn with a transaction-bound repository and the locked row.
	// The transaction commits when fn returns nil and rolls back otherwise;
	// a rolled-back write is never visible to other readers.
	WithinLoanTx(ctx context.Context, id uuid.UUID, fn func(repo LoanRepository, locked *domain.Loan) error) error
}
