package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dmelnik/token-lending/internal/chain"
)

const (
	DefaultPaginationOffset = 0
	DefaultPaginationLimit  = 1000
)

// PaginationOptions slices a loan listing by offset and limit.
type PaginationOptions struct {
	Offset int
	Limit  int
}

// NewPaginationOptions validates offset/limit and falls back to the defaults
// when limit is zero.
func NewPaginationOptions(offset, limit int) (PaginationOptions, error) {
	if offset < 0 {
		return PaginationOptions{}, fmt.Errorf("offset must be non-negative, got %d", offset)
	}
	if limit == 0 {
		limit = DefaultPaginationLimit
	}
	if limit < 0 {
		return PaginationOptions{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return PaginationOptions{Offset: offset, Limit: limit}, nil
}

func DefaultPagination() PaginationOptions {
	return PaginationOptions{Offset: DefaultPaginationOffset, Limit: DefaultPaginationLimit}
}

// FilterOptions holds optional equality predicates on loan fields. Nil fields
// impose no constraint; set fields combine with logical AND.
type FilterOptions struct {
	ID     *uuid.UUID
	Status *Status
	Wallet *chain.Address
}

// FilterByWallet constrains a listing to one wallet.
func FilterByWallet(wallet chain.Address) FilterOptions {
	return FilterOptions{Wallet: &wallet}
}

// FilterByStatus constrains a listing to one status.
func FilterByStatus(status Status) FilterOptions {
	return FilterOptions{Status: &status}
}
