package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"motorcover/internal/claim/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/platform/tx"
)

// Postgres persists claims in PostgreSQL. Pure I/O; transition legality
// belongs to the model and service layers.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const claimColumns = `id, policy_id, owner_id, incident_date, description, claim_amount,
	approved_amount, notes, status, approval_date, created_at, updated_at`

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

func (s *Postgres) Create(ctx context.Context, claim *models.Claim) error {
	query := `
		INSERT INTO claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(claim.ID), uuid.UUID(claim.PolicyID), uuid.UUID(claim.OwnerID),
		claim.IncidentDate, claim.Description, nullFloat(claim.ClaimAmount),
		nullFloat(claim.ApprovedAmount), claim.Notes, string(claim.Status),
		nullTime(claim.ApprovalDate), claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	claim, err := scanClaim(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(claimID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	return claim, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE owner_id = $1 ORDER BY created_at DESC`
	return s.queryClaims(ctx, query, uuid.UUID(ownerID))
}

func (s *Postgres) List(ctx context.Context, offset, limit int) ([]*models.Claim, int, error) {
	var total int
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}
	query := `SELECT ` + claimColumns + ` FROM claims ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	claims, err := s.queryClaims(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// Execute loads the claim FOR UPDATE, runs validate and mutate, and writes
// the result back inside one transaction.
func (s *Postgres) Execute(ctx context.Context, claimID id.ClaimID, validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error) {
	if ambient := tx.From(ctx); ambient != nil {
		return executeClaim(ctx, ambient, claimID, validate, mutate)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim execute: %w", err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	claim, err := executeClaim(ctx, dbTx, claimID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim execute: %w", err)
	}
	return claim, nil
}

func executeClaim(ctx context.Context, dbTx *sql.Tx, claimID id.ClaimID, validate func(*models.Claim) error, mutate func(*models.Claim)) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1 FOR UPDATE`
	claim, err := scanClaim(dbTx.QueryRowContext(ctx, query, uuid.UUID(claimID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock claim: %w", err)
	}

	if err := validate(claim); err != nil {
		return nil, err
	}
	mutate(claim)

	update := `
		UPDATE claims
		SET description = $2, claim_amount = $3, approved_amount = $4, notes = $5,
			status = $6, approval_date = $7, updated_at = $8
		WHERE id = $1
	`
	if _, err := dbTx.ExecContext(ctx, update,
		uuid.UUID(claim.ID), claim.Description, nullFloat(claim.ClaimAmount),
		nullFloat(claim.ApprovedAmount), claim.Notes, string(claim.Status),
		nullTime(claim.ApprovalDate), claim.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("write claim: %w", err)
	}
	return claim, nil
}

func (s *Postgres) Delete(ctx context.Context, claimID id.ClaimID) error {
	result, err := s.q(ctx).ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, uuid.UUID(claimID))
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete claim rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) CountByStatus(ctx context.Context) (map[models.ClaimStatus]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count claims by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ClaimStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan claim count: %w", err)
		}
		counts[models.ClaimStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim counts: %w", err)
	}
	return counts, nil
}

func (s *Postgres) queryClaims(ctx context.Context, query string, args ...any) ([]*models.Claim, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims := make([]*models.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return claims, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanClaim(row scannable) (*models.Claim, error) {
	var claim models.Claim
	var claimID, policyID, ownerID uuid.UUID
	var status string
	var claimAmount, approvedAmount sql.NullFloat64
	var approvalDate sql.NullTime
	if err := row.Scan(&claimID, &policyID, &ownerID, &claim.IncidentDate,
		&claim.Description, &claimAmount, &approvedAmount, &claim.Notes,
		&status, &approvalDate, &claim.CreatedAt, &claim.UpdatedAt); err != nil {
		return nil, err
	}
	claim.ID = id.ClaimID(claimID)
	claim.PolicyID = id.PolicyID(policyID)
	claim.OwnerID = id.UserID(ownerID)
	claim.Status = models.ClaimStatus(status)
	if claimAmount.Valid {
		claim.ClaimAmount = &claimAmount.Float64
	}
	if approvedAmount.Valid {
		claim.ApprovedAmount = &approvedAmount.Float64
	}
	if approvalDate.Valid {
		claim.ApprovalDate = &approvalDate.Time
	}
	return &claim, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
