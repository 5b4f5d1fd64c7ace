package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dmelnik/token-lending/internal/chain"
	"github.com/dmelnik/token-lending/internal/domain"
)

const loanColumns = "id, status, wallet, amount, created_at, updated_at"

type loanRepository struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

// q returns the transaction when one is open, the pool otherwise.
func (r *loanRepository) q() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *loanRepository) Create(ctx context.Context, status domain.Status, wallet chain.Address, amount uint64) (*domain.Loan, error) {
	query := `
		INSERT INTO loans (id, status, wallet, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + loanColumns

	now := time.Now().UTC()

	var loan domain.Loan
	err := sqlx.GetContext(ctx, r.q(), &loan, query, uuid.New(), status, wallet, amount, now)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.getByID(ctx, id, false)
}

func (r *loanRepository) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var loan domain.Loan
	err := sqlx.GetContext(ctx, r.q(), &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Count(ctx context.Context, filter domain.FilterOptions) (int, error) {
	where, args := buildFilter(filter)
	query := `SELECT count(*) FROM loans` + where

	var total int
	err := sqlx.GetContext(ctx, r.q(), &total, query, args...)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *loanRepository) Find(ctx context.Context, filter domain.FilterOptions, page domain.PaginationOptions) ([]*domain.Loan, error) {
	where, args := buildFilter(filter)

	args = append(args, page.Limit)
	limitArg := len(args)
	args = append(args, page.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`SELECT %s FROM loans%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		loanColumns, where, limitArg, offsetArg)

	loans := []*domain.Loan{}
	err := sqlx.SelectContext(ctx, r.q(), &loans, query, args...)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateExistingByID(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	query := `
		UPDATE loans
		SET status = $2, wallet = $3, amount = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + loanColumns

	var updated domain.Loan
	err := sqlx.GetContext(ctx, r.q(), &updated, query,
		loan.ID,
		loan.Status,
		loan.Wallet,
		loan.Amount,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *loanRepository) WithinLoanTx(ctx context.Context, id uuid.UUID, fn func(repo LoanRepository, locked *domain.Loan) error) error {
	if r.tx != nil {
		return fmt.Errorf("loan transaction already open")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txRepo := &loanRepository{db: r.db, tx: tx}

	// The row lock is held until commit/rollback; concurrent submissions for
	// the same loan serialize here.
	locked, err := txRepo.getByID(ctx, id, true)
	if err != nil {
		return err
	}

	if err := fn(txRepo, locked); err != nil {
		return err
	}

	return tx.Commit()
}

func buildFilter(filter domain.FilterOptions) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.ID != nil {
		args = append(args, *filter.ID)
		clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Wallet != nil {
		args = append(args, *filter.Wallet)
		clauses = append(clauses, fmt.Sprintf("wallet = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
