// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/claimdesk/internal/model"
)

// ClaimFilter narrows a claim listing. Zero values match everything.
type ClaimFilter struct {
	PolicyNumber string
	Statuses     []model.ClaimStatus
	Limit        int
}

// Matches reports whether a claim passes the filter.
func (f ClaimFilter) Matches(c *model.Claim) bool {
	if f.PolicyNumber != "" && c.PolicyNumber != f.PolicyNumber {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// Mutator applies one logical change to a claim. Returning an error aborts the
// update and leaves the stored claim untouched.
type Mutator func(claim *model.Claim) error

// Storage defines the contract for the claim store.
type Storage interface {
	CreateClaim(ctx context.Context, claim *model.Claim) error
	// UpdateClaim runs mutate against a private copy and commits it atomically.
	UpdateClaim(ctx context.Context, id string, mutate Mutator) (*model.Claim, error)
	FindClaim(ctx context.Context, id string) (*model.Claim, error)
	// ListClaims returns claims most recently created first.
	ListClaims(ctx context.Context, filter ClaimFilter) ([]model.Claim, error)
	Close() error
}
