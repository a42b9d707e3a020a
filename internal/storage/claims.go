package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/mattn/go-sqlite3"
)

// CreateClaim inserts a new claim document.
func (s *SQLiteStorage) CreateClaim(ctx context.Context, claim *model.Claim) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClaim(claim); err != nil {
		return err
	}

	doc, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("failed to encode claim: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO claims (id, policy_number, status, created_at, updated_at, document)
		VALUES (?, ?, ?, ?, ?, ?)`,
		claim.ID, claim.PolicyNumber, string(claim.Status),
		claim.CreatedAt.UTC(), claim.UpdatedAt.UTC(), string(doc))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: claim %s", common.ErrDuplicateEntry, claim.ID)
		}
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	if err := recordStatusChange(ctx, tx, claim.ID, "", claim.Status, claim.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateClaim loads, mutates and rewrites a claim inside one SQL transaction.
func (s *SQLiteStorage) UpdateClaim(ctx context.Context, id string, mutate service.Mutator) (*model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if mutate == nil {
		return nil, fmt.Errorf("%w: mutator", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	before, err := s.getClaimTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	working := before.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	if err := validateUpdate(before, working); err != nil {
		return nil, err
	}

	doc, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("failed to encode claim: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE claims
		SET policy_number = ?, status = ?, updated_at = ?, document = ?
		WHERE id = ?`,
		working.PolicyNumber, string(working.Status), working.UpdatedAt.UTC(), string(doc), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update claim: %w", err)
	}

	if working.Status != before.Status {
		if err := recordStatusChange(ctx, tx, id, before.Status, working.Status, working.UpdatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim update: %w", err)
	}

	return working, nil
}

// FindClaim loads a single claim by id.
func (s *SQLiteStorage) FindClaim(ctx context.Context, id string) (*model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM claims WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: claim %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query claim: %w", err)
	}

	return decodeClaim(doc)
}

// ListClaims returns matching claims ordered by insertion, newest first.
func (s *SQLiteStorage) ListClaims(ctx context.Context, filter service.ClaimFilter) ([]model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	query := `SELECT document FROM claims WHERE 1=1`
	var args []any

	if filter.PolicyNumber != "" {
		query += ` AND policy_number = ?`
		args = append(args, filter.PolicyNumber)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []model.Claim
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claim, err := decodeClaim(doc)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *claim)
	}

	return claims, rows.Err()
}

// StatusHistory lists the recorded status changes for a claim, oldest first.
func (s *SQLiteStorage) StatusHistory(ctx context.Context, id string) ([]model.ClaimStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_status FROM claim_status_history
		WHERE claim_id = ?
		ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []model.ClaimStatus
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		history = append(history, model.ClaimStatus(status))
	}

	return history, rows.Err()
}

func (s *SQLiteStorage) getClaimTx(ctx context.Context, tx *sql.Tx, id string) (*model.Claim, error) {
	var doc string
	err := tx.QueryRowContext(ctx, `SELECT document FROM claims WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: claim %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query claim: %w", err)
	}
	return decodeClaim(doc)
}

func recordStatusChange(ctx context.Context, tx *sql.Tx, id string, from, to model.ClaimStatus, at time.Time) error {
	var fromValue any
	if from != "" {
		fromValue = string(from)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO claim_status_history (claim_id, from_status, to_status, changed_at)
		VALUES (?, ?, ?, ?)`,
		id, fromValue, string(to), at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}

func decodeClaim(doc string) (*model.Claim, error) {
	var claim model.Claim
	if err := json.Unmarshal([]byte(doc), &claim); err != nil {
		return nil, fmt.Errorf("failed to decode claim: %w", err)
	}
	return &claim, nil
}
