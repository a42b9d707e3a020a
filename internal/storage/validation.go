// Package storage provides the claim store implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidClaim = errors.New("invalid claim")
	ErrInvalidLimit = errors.New("limit cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateClaim checks the fields every stored claim must carry.
func validateClaim(claim *model.Claim) error {
	if claim == nil {
		return fmt.Errorf("%w: claim", ErrNilParameter)
	}
	if strings.TrimSpace(claim.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidClaim)
	}
	if strings.TrimSpace(claim.PolicyNumber) == "" {
		return fmt.Errorf("%w: missing policy number", ErrInvalidClaim)
	}
	if !claim.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidClaim, claim.Status)
	}
	if claim.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing created_at", ErrInvalidClaim)
	}
	if claim.UpdatedAt.Before(claim.CreatedAt) {
		return fmt.Errorf("%w: updated_at before created_at", ErrInvalidClaim)
	}
	return nil
}

// validateUpdate checks that a mutator kept the claim's identity intact.
func validateUpdate(before, after *model.Claim) error {
	if after.ID != before.ID {
		return fmt.Errorf("%w: id changed from %s to %s", ErrInvalidClaim, before.ID, after.ID)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		return fmt.Errorf("%w: created_at changed", ErrInvalidClaim)
	}
	if len(after.Comments) < len(before.Comments) {
		return fmt.Errorf("%w: comments are append-only", ErrInvalidClaim)
	}
	for i := range before.Comments {
		if after.Comments[i] != before.Comments[i] {
			return fmt.Errorf("%w: comment %s was modified", ErrInvalidClaim, before.Comments[i].ID)
		}
	}
	return validateClaim(after)
}

// validateFilter rejects filters that cannot be satisfied meaningfully.
func validateFilter(filter service.ClaimFilter) error {
	if filter.Limit < 0 {
		return ErrInvalidLimit
	}
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown status %q in filter", ErrInvalidClaim, s)
		}
	}
	return nil
}
