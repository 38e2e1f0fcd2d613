package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"motorcover/internal/proposal/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/platform/tx"
)

// Postgres persists proposals in PostgreSQL. Pure I/O; transition legality
// belongs to the model and service layers.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const proposalColumns = `id, owner_id, vehicle_id, policy_type, requested_coverage,
	premium_estimate, status, rejection_reason, submission_date, approval_date, created_at, updated_at`

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

func (s *Postgres) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(proposal.ID), uuid.UUID(proposal.OwnerID), uuid.UUID(proposal.VehicleID),
		string(proposal.PolicyType), proposal.RequestedCoverage, proposal.PremiumEstimate,
		string(proposal.Status), proposal.RejectionReason, proposal.SubmissionDate,
		nullTime(proposal.ApprovalDate), proposal.CreatedAt, proposal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, proposalID id.ProposalID) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	proposal, err := scanProposal(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(proposalID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return proposal, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE owner_id = $1 AND status <> 'Canceled'
		ORDER BY submission_date DESC
	`
	return s.queryProposals(ctx, query, uuid.UUID(ownerID))
}

func (s *Postgres) List(ctx context.Context, offset, limit int) ([]*models.Proposal, int, error) {
	var total int
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count proposals: %w", err)
	}
	query := `SELECT ` + proposalColumns + ` FROM proposals ORDER BY submission_date DESC OFFSET $1 LIMIT $2`
	proposals, err := s.queryProposals(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// Execute loads the proposal FOR UPDATE, runs validate and mutate, and
// writes the result back inside one transaction. Runs against the ambient
// transaction when one is present so issuance can span stores.
func (s *Postgres) Execute(ctx context.Context, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error) {
	if ambient := tx.From(ctx); ambient != nil {
		return executeProposal(ctx, ambient, proposalID, validate, mutate)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin proposal execute: %w", err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	proposal, err := executeProposal(ctx, dbTx, proposalID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit proposal execute: %w", err)
	}
	return proposal, nil
}

func executeProposal(ctx context.Context, dbTx *sql.Tx, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1 FOR UPDATE`
	proposal, err := scanProposal(dbTx.QueryRowContext(ctx, query, uuid.UUID(proposalID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock proposal: %w", err)
	}

	if err := validate(proposal); err != nil {
		return nil, err
	}
	mutate(proposal)

	update := `
		UPDATE proposals
		SET status = $2, rejection_reason = $3, approval_date = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := dbTx.ExecContext(ctx, update,
		uuid.UUID(proposal.ID), string(proposal.Status), proposal.RejectionReason,
		nullTime(proposal.ApprovalDate), proposal.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("write proposal: %w", err)
	}
	return proposal, nil
}

func (s *Postgres) Delete(ctx context.Context, proposalID id.ProposalID) error {
	result, err := s.q(ctx).ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, uuid.UUID(proposalID))
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete proposal rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) CountByStatus(ctx context.Context) (map[models.ProposalStatus]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT status, COUNT(*) FROM proposals GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count proposals by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ProposalStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan proposal count: %w", err)
		}
		counts[models.ProposalStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposal counts: %w", err)
	}
	return counts, nil
}

func (s *Postgres) queryProposals(ctx context.Context, query string, args ...any) ([]*models.Proposal, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	proposals := make([]*models.Proposal, 0)
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return proposals, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProposal(row scannable) (*models.Proposal, error) {
	var proposal models.Proposal
	var proposalID, ownerID, vehicleID uuid.UUID
	var policyType, status string
	var approvalDate sql.NullTime
	if err := row.Scan(&proposalID, &ownerID, &vehicleID, &policyType,
		&proposal.RequestedCoverage, &proposal.PremiumEstimate, &status,
		&proposal.RejectionReason, &proposal.SubmissionDate, &approvalDate,
		&proposal.CreatedAt, &proposal.UpdatedAt); err != nil {
		return nil, err
	}
	proposal.ID = id.ProposalID(proposalID)
	proposal.OwnerID = id.UserID(ownerID)
	proposal.VehicleID = id.VehicleID(vehicleID)
	proposal.PolicyType = id.PolicyType(policyType)
	proposal.Status = models.ProposalStatus(status)
	if approvalDate.Valid {
		proposal.ApprovalDate = &approvalDate.Time
	}
	return &proposal, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
