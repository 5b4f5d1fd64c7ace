package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
	customError "github.com/dmelnik/token-lending/pkg/errors"
	"github.com/dmelnik/token-lending/pkg/response"
)

// LendingUsecase is the slice of the lending service the HTTP surface needs.
type LendingUsecase interface {
	Initialize(ctx context.Context, wallet chain.Address, amount uint64) (*domain.Loan, error)
	Submit(ctx context.Context, loanID uuid.UUID, signature chain.Signature) (*domain.Loan, error)
	ViewLoans(ctx context.Context, filter domain.FilterOptions, page domain.PaginationOptions) (*domain.LoansView, error)
}

type LendingHandler struct {
	service   LendingUsecase
	validator *validator.Validate
}

func NewLendingHandler(service LendingUsecase) *LendingHandler {
	return &LendingHandler{
		service:   service,
		validator: validator.New(),
	}
}

// RequestLoan initializes a loan for the provided wallet and amount. The
// loan must later be submitted with a wallet signature for tokens to move.
func (h *LendingHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	wallet, err := chain.ParseAddress(req.Wallet)
	if err != nil {
		response.BadRequest(w, "invalid wallet address")
		return
	}

	loan, err := h.service.Initialize(r.Context(), wallet, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, loan)
}

// SubmitLoan settles a loan given a signature over the loan id produced by
// the wallet's keypair.
func (h *LendingHandler) SubmitLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id")
		return
	}

	var req domain.LoanSubmit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	signature, err := chain.ParseSignature(req.Signature)
	if err != nil {
		response.BadRequest(w, "invalid signature encoding")
		return
	}

	loan, err := h.service.Submit(r.Context(), loanID, signature)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, loan)
}

// ViewLoans lists loans, filtered by id/status/wallet and paginated by
// offset/limit query parameters.
func (h *LendingHandler) ViewLoans(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	view, err := h.service.ViewLoans(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, view)
}

func parseFilter(r *http.Request) (domain.FilterOptions, error) {
	var filter domain.FilterOptions
	q := r.URL.Query()

	if raw := q.Get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid id filter")
		}
		filter.ID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.Status(strings.ToUpper(raw))
		if !status.Valid() {
			return filter, errors.New("invalid status filter")
		}
		filter.Status = &status
	}
	if raw := q.Get("wallet"); raw != "" {
		wallet, err := chain.ParseAddress(raw)
		if err != nil {
			return filter, errors.New("invalid wallet filter")
		}
		filter.Wallet = &wallet
	}

	return filter, nil
}

func parsePagination(r *http.Request) (domain.PaginationOptions, error) {
	q := r.URL.Query()

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return domain.PaginationOptions{}, errors.New("invalid offset")
		}
		offset = v
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return domain.PaginationOptions{}, errors.New("invalid limit")
		}
		limit = v
	}

	return domain.NewPaginationOptions(offset, limit)
}

// writeServiceError maps a service error to an HTTP status: domain
// rejections become 4xx with their code, infrastructure faults become 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		response.InternalServerError(w, "unexpected error")
		return
	}

	switch be.Code {
	case customError.ErrCodeLoanNotFound:
		response.Error(w, http.StatusNotFound, be.Code, be.Message)
	case customError.ErrCodeDatabaseError, customError.ErrCodeNetworkError:
		response.Error(w, http.StatusInternalServerError, be.Code, be.Message)
	default:
		response.Error(w, http.StatusBadRequest, be.Code, be.Message)
	}
}
