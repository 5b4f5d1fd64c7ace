package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmelnik/token-lending/internal/chain"
)

type MockTokenGateway struct {
	mock.Mock
}

func (m *MockTokenGateway) OwnerWallet() chain.Address {
	args := m.Called()
	return args.Get(0).(chain.Address)
}

func (m *MockTokenGateway) GetAccountAmount(ctx context.Context, wallet chain.Address) (uint64, bool) {
	args := m.Called(ctx, wallet)
	return args.Get(0).(uint64), args.Bool(1)
}

func (m *MockTokenGateway) Transfer(ctx context.Context, wallet chain.Address, amount uint64) (bool, error) {
	args := m.Called(ctx, wallet, amount)
	return args.Bool(0), args.Error(1)
}
