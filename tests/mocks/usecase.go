package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
)

// MockLendingUsecase mocks the service layer behind the HTTP handlers.
type MockLendingUsecase struct {
	mock.Mock
}

func (m *MockLendingUsecase) Initialize(ctx context.Context, wallet chain.Address, amount uint64) (*domain.Loan, error) {
	args := m.Called(ctx, wallet, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingUsecase) Submit(ctx context.Context, loanID uuid.UUID, signature chain.Signature) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingUsecase) ViewLoans(ctx context.Context, filter domain.FilterOptions, page domain.PaginationOptions) (*domain.LoansView, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoansView), args.Error(1)
}
