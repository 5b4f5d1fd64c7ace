package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
	"github.com/dmelnik/token-lending/internal/repository"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, status domain.Status, wallet chain.Address, amount uint64) (*domain.Loan, error) {
	args := m.Called(ctx, status, wallet, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Count(ctx context.Context, filter domain.FilterOptions) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) Find(ctx context.Context, filter domain.FilterOptions, page domain.PaginationOptions) ([]*domain.Loan, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateExistingByID(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	args := m.Called(ctx, loan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

// WithinLoanTx invokes fn with the repository itself and the locked loan
// configured via Return(lockedLoan, err). An error expectation short-circuits
// without running fn, mirroring a failed lock acquisition.
func (m *MockLoanRepository) WithinLoanTx(ctx context.Context, id uuid.UUID, fn func(repo repository.LoanRepository, locked *domain.Loan) error) error {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(m, args.Get(0).(*domain.Loan))
}
