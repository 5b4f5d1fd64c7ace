package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
	"github.com/dmelnik/token-lending/internal/repository"
	customError "github.com/dmelnik/token-lending/pkg/errors"
)

// TokenGateway is the slice of the asset-transfer gateway the lending saga
// depends on.
type TokenGateway interface {
	OwnerWallet() chain.Address
	GetAccountAmount(ctx context.Context, wallet chain.Address) (uint64, bool)
	Transfer(ctx context.Context, wallet chain.Address, amount uint64) (bool, error)
}

// LendingService drives a loan from request to settlement. It owns no state
// of its own; the ledger holds the row of truth and the gateway is a view
// over the asset network.
type LendingService struct {
	loans  repository.LoanRepository
	tokens TokenGateway
}

func NewLendingService(loans repository.LoanRepository, tokens TokenGateway) *LendingService {
	return &LendingService{
		loans:  loans,
		tokens: tokens,
	}
}

// Initialize records a PENDING loan for the wallet after checking that the
// custodian holds at least the requested amount. No value moves here; the
// only side effect is the ledger row.
func (s *LendingService) Initialize(ctx context.Context, wallet chain.Address, amount uint64) (*domain.Loan, error) {
	available, ok := s.tokens.GetAccountAmount(ctx, s.tokens.OwnerWallet())
	if !ok {
		return nil, customError.WrapSourceBalanceUnavailable()
	}

	if amount > available {
		return nil, customError.WrapInsufficientSourceAmount()
	}

	loan, err := s.loans.Create(ctx, domain.StatusPending, wallet, amount)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// Submit settles a loan: verifies the wallet-ownership signature, flips the
// row to ACTIVE inside a row-locked ledger transaction, and issues the token
// transfer. The ACTIVE write commits only when the transfer reports success;
// any other outcome rolls it back and the loan stays PENDING. The ledger
// never runs ahead of the transfer outcome.
func (s *LendingService) Submit(ctx context.Context, loanID uuid.UUID, signature chain.Signature) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound()
		}
		return nil, customError.WrapDatabaseError(err)
	}

	// The signature must cover the raw bytes of the loan id and be produced
	// by the key behind the loan's wallet.
	if !signature.Verify(loan.Wallet, loan.ID[:]) {
		return nil, customError.WrapInvalidSignature()
	}

	var active *domain.Loan
	err = s.loans.WithinLoanTx(ctx, loan.ID, func(repo repository.LoanRepository, locked *domain.Loan) error {
		// Re-check under the row lock: a concurrent submit that won the race
		// has already flipped the status.
		if locked.Status != domain.StatusPending {
			return customError.WrapLoanNotPending(string(locked.Status))
		}

		locked.Status = domain.StatusActive
		updated, err := repo.UpdateExistingByID(ctx, locked)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		ok, err := s.tokens.Transfer(ctx, updated.Wallet, updated.Amount)
		if err != nil {
			return customError.WrapNetworkError(err)
		}
		if !ok {
			return customError.WrapTransferFailed()
		}

		active = updated
		return nil
	})
	if err != nil {
		var be *customError.BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return active, nil
}

// ViewLoans lists loans matching the filter with pagination metadata. Read
// only; it performs no writes.
func (s *LendingService) ViewLoans(ctx context.Context, filter domain.FilterOptions, page domain.PaginationOptions) (*domain.LoansView, error) {
	total, err := s.loans.Count(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	items, err := s.loans.Find(ctx, filter, page)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LoansView{
		Info: domain.LoansViewInfo{
			Offset: page.Offset,
			Limit:  page.Limit,
			Total:  total,
		},
		Items: items,
	}, nil
}
