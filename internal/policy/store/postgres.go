package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"motorcover/internal/policy/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/platform/tx"
)

// Postgres persists policies in PostgreSQL. The proposal_id column carries a
// unique constraint so at most one policy can ever reference a proposal,
// whatever races reach the database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const policyColumns = `id, owner_id, vehicle_id, proposal_id, type, coverage_amount,
	premium_amount, start_date, end_date, renewal_reminder_date, status, termination_reason, created_at, updated_at`

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

func (s *Postgres) Create(ctx context.Context, policy *models.Policy) error {
	query := `
		INSERT INTO policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(policy.ID), uuid.UUID(policy.OwnerID), uuid.UUID(policy.VehicleID),
		nullProposalID(policy.ProposalID), string(policy.Type), policy.CoverageAmount,
		policy.PremiumAmount, policy.StartDate, policy.EndDate, policy.RenewalReminderDate,
		string(policy.Status), policy.TerminationReason, policy.CreatedAt, policy.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "23505") {
			return fmt.Errorf("create policy: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1`
	policy, err := scanPolicy(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(policyID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	return policy, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE owner_id = $1 ORDER BY created_at DESC`
	return s.queryPolicies(ctx, query, uuid.UUID(ownerID))
}

func (s *Postgres) List(ctx context.Context, offset, limit int) ([]*models.Policy, int, error) {
	var total int
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM policies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count policies: %w", err)
	}
	query := `SELECT ` + policyColumns + ` FROM policies ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	policies, err := s.queryPolicies(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return policies, total, nil
}

// Execute loads the policy FOR UPDATE, runs validate and mutate, and writes
// the result back. Joins the ambient transaction when one is present.
func (s *Postgres) Execute(ctx context.Context, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error) {
	if ambient := tx.From(ctx); ambient != nil {
		return executePolicy(ctx, ambient, policyID, validate, mutate)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin policy execute: %w", err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	policy, err := executePolicy(ctx, dbTx, policyID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit policy execute: %w", err)
	}
	return policy, nil
}

func executePolicy(ctx context.Context, dbTx *sql.Tx, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1 FOR UPDATE`
	policy, err := scanPolicy(dbTx.QueryRowContext(ctx, query, uuid.UUID(policyID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", policyID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock policy: %w", err)
	}

	if err := validate(policy); err != nil {
		return nil, err
	}
	mutate(policy)

	update := `
		UPDATE policies
		SET premium_amount = $2, start_date = $3, end_date = $4, renewal_reminder_date = $5,
			status = $6, termination_reason = $7, updated_at = $8
		WHERE id = $1
	`
	if _, err := dbTx.ExecContext(ctx, update,
		uuid.UUID(policy.ID), policy.PremiumAmount, policy.StartDate, policy.EndDate,
		policy.RenewalReminderDate, string(policy.Status), policy.TerminationReason, policy.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("write policy: %w", err)
	}
	return policy, nil
}

// MarkExpiredDue lapses active policies whose end date has passed in one
// statement.
func (s *Postgres) MarkExpiredDue(ctx context.Context, asOf time.Time) (int, error) {
	query := `
		UPDATE policies
		SET status = 'Expired', updated_at = $1
		WHERE status = 'Active' AND end_date < $1
	`
	result, err := s.q(ctx).ExecContext(ctx, query, asOf)
	if err != nil {
		return 0, fmt.Errorf("expire policies: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire policies rows affected: %w", err)
	}
	return int(rows), nil
}

// StartExpiry runs MarkExpiredDue on an interval until ctx is cancelled.
func (s *Postgres) StartExpiry(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.MarkExpiredDue(ctx, time.Now()); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Postgres) CountByStatus(ctx context.Context) (map[models.PolicyStatus]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT status, COUNT(*) FROM policies GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count policies by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PolicyStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan policy count: %w", err)
		}
		counts[models.PolicyStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policy counts: %w", err)
	}
	return counts, nil
}

func (s *Postgres) queryPolicies(ctx context.Context, query string, args ...any) ([]*models.Policy, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	policies := make([]*models.Policy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return policies, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPolicy(row scannable) (*models.Policy, error) {
	var policy models.Policy
	var policyID, ownerID, vehicleID uuid.UUID
	var proposalID uuid.NullUUID
	var policyType, status string
	if err := row.Scan(&policyID, &ownerID, &vehicleID, &proposalID, &policyType,
		&policy.CoverageAmount, &policy.PremiumAmount, &policy.StartDate, &policy.EndDate,
		&policy.RenewalReminderDate, &status, &policy.TerminationReason,
		&policy.CreatedAt, &policy.UpdatedAt); err != nil {
		return nil, err
	}
	policy.ID = id.PolicyID(policyID)
	policy.OwnerID = id.UserID(ownerID)
	policy.VehicleID = id.VehicleID(vehicleID)
	policy.Type = id.PolicyType(policyType)
	policy.Status = models.PolicyStatus(status)
	if proposalID.Valid {
		converted := id.ProposalID(proposalID.UUID)
		policy.ProposalID = &converted
	}
	return &policy, nil
}

func nullProposalID(value *id.ProposalID) uuid.NullUUID {
	if value == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*value), Valid: true}
}
