package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
	customError "github.com/dmelnik/token-lending/pkg/errors"
	"github.com/dmelnik/token-lending/tests/mocks"
)

func newTestWallet(t *testing.T) chain.Keypair {
	t.Helper()
	kp, err := chain.NewKeypair()
	require.NoError(t, err)
	return kp
}

func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	var be *customError.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, code, be.Code)
}

func TestInitialize_Success(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	owner := chain.Address("ownerWallet")
	wallet := newTestWallet(t).Address()

	mockGateway.On("OwnerWallet").Return(owner)
	mockGateway.On("GetAccountAmount", mock.Anything, owner).Return(uint64(1000), true)

	created := &domain.Loan{ID: uuid.New(), Status: domain.StatusPending, Wallet: wallet, Amount: 100}
	mockRepo.On("Create", mock.Anything, domain.StatusPending, wallet, uint64(100)).Return(created, nil)

	loan, err := svc.Initialize(context.Background(), wallet, 100)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loan.Status)
	assert.Equal(t, wallet, loan.Wallet)
	assert.Equal(t, uint64(100), loan.Amount)

	mockRepo.AssertExpectations(t)
	mockGateway.AssertExpectations(t)
}

func TestInitialize_InsufficientBalance(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	owner := chain.Address("ownerWallet")
	wallet := newTestWallet(t).Address()

	mockGateway.On("OwnerWallet").Return(owner)
	mockGateway.On("GetAccountAmount", mock.Anything, owner).Return(uint64(50), true)

	loan, err := svc.Initialize(context.Background(), wallet, 100)

	assert.Nil(t, loan)
	assertBusinessCode(t, err, customError.ErrCodeInsufficientSourceAmount)
	assert.EqualError(t, errors.Unwrap(err), "insufficient source amount")

	// No ledger row is created on rejection.
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInitialize_BalanceUnavailable(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	owner := chain.Address("ownerWallet")

	mockGateway.On("OwnerWallet").Return(owner)
	mockGateway.On("GetAccountAmount", mock.Anything, owner).Return(uint64(0), false)

	loan, err := svc.Initialize(context.Background(), newTestWallet(t).Address(), 1)

	assert.Nil(t, loan)
	assertBusinessCode(t, err, customError.ErrCodeSourceBalanceUnavailable)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_Success(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	wallet := newTestWallet(t)
	loanID := uuid.New()
	pending := &domain.Loan{ID: loanID, Status: domain.StatusPending, Wallet: wallet.Address(), Amount: 25}
	active := &domain.Loan{ID: loanID, Status: domain.StatusActive, Wallet: wallet.Address(), Amount: 25}

	mockRepo.On("GetByID", mock.Anything, loanID).Return(pending, nil)
	mockRepo.On("WithinLoanTx", mock.Anything, loanID).Return(pending, nil)
	mockRepo.On("UpdateExistingByID", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.ID == loanID && l.Status == domain.StatusActive
	})).Return(active, nil)
	mockGateway.On("Transfer", mock.Anything, wallet.Address(), uint64(25)).Return(true, nil)

	loan, err := svc.Submit(context.Background(), loanID, wallet.Sign(loanID[:]))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, loan.Status)

	mockRepo.AssertExpectations(t)
	mockGateway.AssertExpectations(t)
}

func TestSubmit_LoanNotFound(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	loanID := uuid.New()
	mockRepo.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)

	loan, err := svc.Submit(context.Background(), loanID, chain.Signature(make([]byte, 64)))

	assert.Nil(t, loan)
	assertBusinessCode(t, err, customError.ErrCodeLoanNotFound)
}

func TestSubmit_InvalidSignature(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	wallet := newTestWallet(t)
	other := newTestWallet(t)
	loanID := uuid.New()
	pending := &domain.Loan{ID: loanID, Status: domain.StatusPending, Wallet: wallet.Address(), Amount: 10}

	mockRepo.On("GetByID", mock.Anything, loanID).Return(pending, nil)

	// Signed by a keypair that does not control the loan's wallet.
	loan, err := svc.Submit(context.Background(), loanID, other.Sign(loanID[:]))

	assert.Nil(t, loan)
	assertBusinessCode(t, err, customError.ErrCodeInvalidSignature)

	// The rejection happens before any write or transfer is attempted.
	mockRepo.AssertNotCalled(t, "WithinLoanTx", mock.Anything, mock.Anything)
	mockGateway.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_TransferFailureRollsBack(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	wallet := newTestWallet(t)
	loanID := uuid.New()
	pending := &domain.Loan{ID: loanID, Status: domain.StatusPending, Wallet: wallet.Address(), Amount: 40}
	active := &domain.Loan{ID: loanID, Status: domain.StatusActive, Wallet: wallet.Address(), Amount: 40}

	mockRepo.On("GetByID", mock.Anything, loanID).Return(pending, nil)
	mockRepo.On("WithinLoanTx", mock.Anything, loanID).Return(pending, nil)
	mockRepo.On("UpdateExistingByID", mock.Anything, mock.Anything).Return(active, nil)
	mockGateway.On("Transfer", mock.Anything, wallet.Address(), uint64(40)).Return(false, nil)

	loan, err := svc.Submit(context.Background(), loanID, wallet.Sign(loanID[:]))

	assert.Nil(t, loan)
	assertBusinessCode(t, err, customError.ErrCodeTransferFailed)
	var be *customError.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "transfer process failed unexpectedly", be.Message)
}

func TestSubmit_AlreadyActiveUnderLock(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	wallet := newTestWallet(t)
	loanID := uuid.New()
	pending := &domain.Loan{ID: loanID, Status: domain.StatusPending, Wallet: wallet.Address(), Amount: 10}
	// A concurrent submit won the row lock first and committed ACTIVE.
	alreadyActive := &domain.Loan{ID: loanID, Status: domain.StatusActive, Wallet: wallet.Address(), Amount: 10}

	mockRepo.On("GetByID", mock.Anything, loanID).Return(pending, nil)
	mockRepo.On("WithinLoanTx", mock.Anything, loanID).Return(alreadyActive, nil)

	loan, err := svc.Submit(context.Background(), loanID, wallet.Sign(loanID[:]))

	assert.Nil(t, loan)
	assertBusinessCode(t, err, customError.ErrCodeLoanNotPending)
	mockGateway.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestViewLoans(t *testing.T) {
	mockRepo := &mocks.MockLoanRepository{}
	mockGateway := &mocks.MockTokenGateway{}
	svc := NewLendingService(mockRepo, mockGateway)

	wallet := newTestWallet(t).Address()
	filter := domain.FilterByWallet(wallet)
	page := domain.PaginationOptions{Offset: 10, Limit: 5}

	items := []*domain.Loan{
		{ID: uuid.New(), Status: domain.StatusPending, Wallet: wallet, Amount: 1},
		{ID: uuid.New(), Status: domain.StatusActive, Wallet: wallet, Amount: 2},
	}

	mockRepo.On("Count", mock.Anything, filter).Return(42, nil)
	mockRepo.On("Find", mock.Anything, filter, page).Return(items, nil)

	view, err := svc.ViewLoans(context.Background(), filter, page)

	require.NoError(t, err)
	assert.Equal(t, 10, view.Info.Offset)
	assert.Equal(t, 5, view.Info.Limit)
	assert.Equal(t, 42, view.Info.Total)
	assert.Len(t, view.Items, 2)
}
