package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmelnik/token-lending/internal/chain"
)

// Status is the lifecycle state of a loan.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	// StatusClosed is reserved for future repayment-closing logic; no
	// operation sets it today.
	StatusClosed Status = "CLOSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusClosed:
		return true
	}
	return false
}

// Loan is a record committing the custodian to transfer a fixed token amount
// to a wallet once the owner proves control of it. ID is assigned by the
// ledger at creation; Amount is in the token's smallest unit and never
// changes after creation.
type Loan struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Status    Status        `json:"status" db:"status"`
	Wallet    chain.Address `json:"wallet" db:"wallet"`
	Amount    uint64        `json:"amount" db:"amount"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type LoanRequest struct {
	Wallet string `json:"wallet" validate:"required"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

type LoanSubmit struct {
	Signature string `json:"signature" validate:"required"`
}

type LoansViewInfo struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

type LoansView struct {
	Info  LoansViewInfo `json:"info"`
	Items []*Loan       `json:"items"`
}
