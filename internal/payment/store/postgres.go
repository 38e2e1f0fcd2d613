package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"motorcover/internal/payment/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/platform/tx"
)

// Postgres persists payments in PostgreSQL. Create joins an ambient
// transaction when one is present, so issuance writes the payment in the
// same transaction as the policy.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const paymentColumns = `id, transaction_id, user_id, policy_id, amount, currency, status, created_at`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) q(ctx context.Context) querier {
	if t := tx.From(ctx); t != nil {
		return t
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(payment.ID), payment.TransactionID, uuid.UUID(payment.UserID),
		uuid.UUID(payment.PolicyID), payment.Amount, payment.Currency,
		string(payment.Status), payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create payment: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, paymentID id.PaymentID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	payment, err := scanPayment(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(paymentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return payment, nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, uuid.UUID(userID))
}

func (s *Postgres) ListByPolicy(ctx context.Context, policyID id.PolicyID) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE policy_id = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, uuid.UUID(policyID))
}

func (s *Postgres) list(ctx context.Context, query string, arg any) ([]*models.Payment, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, payment)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPayment(row scannable) (*models.Payment, error) {
	var payment models.Payment
	var paymentID, userID, policyID uuid.UUID
	var status string
	if err := row.Scan(&paymentID, &payment.TransactionID, &userID, &policyID,
		&payment.Amount, &payment.Currency, &status, &payment.CreatedAt); err != nil {
		return nil, err
	}
	payment.ID = id.PaymentID(paymentID)
	payment.UserID = id.UserID(userID)
	payment.PolicyID = id.PolicyID(policyID)
	payment.Status = models.PaymentStatus(status)
	return &payment, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
