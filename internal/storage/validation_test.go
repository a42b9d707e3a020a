package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNilContext)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("abc", "id"))
	assert.ErrorIs(t, validateString("", "id"), ErrEmptyString)
	assert.ErrorIs(t, validateString("   ", "id"), ErrEmptyString)
}

func TestValidateClaim(t *testing.T) {
	tests := []struct {
		modify  func(c *model.Claim)
		name    string
		wantErr bool
	}{
		{name: "valid", modify: func(*model.Claim) {}},
		{name: "missing id", modify: func(c *model.Claim) { c.ID = "" }, wantErr: true},
		{name: "missing policy", modify: func(c *model.Claim) { c.PolicyNumber = " " }, wantErr: true},
		{name: "unknown status", modify: func(c *model.Claim) { c.Status = "Lost" }, wantErr: true},
		{name: "zero created_at", modify: func(c *model.Claim) { c.CreatedAt = time.Time{} }, wantErr: true},
		{
			name:    "updated before created",
			modify:  func(c *model.Claim) { c.UpdatedAt = c.CreatedAt.Add(-time.Second) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := testClaim("id", "POL")
			tt.modify(claim)
			err := validateClaim(claim)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClaim)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, validateClaim(nil), ErrNilParameter)
}

func TestValidateUpdate(t *testing.T) {
	base := testClaim("id", "POL")
	base.Comments = []model.Comment{{ID: "c1", Text: "hello", Timestamp: testEpoch}}

	tests := []struct {
		modify  func(c *model.Claim)
		name    string
		wantErr bool
	}{
		{name: "unchanged", modify: func(*model.Claim) {}},
		{name: "status change", modify: func(c *model.Claim) { c.Status = model.StatusAIReview }},
		{name: "append comment", modify: func(c *model.Claim) {
			c.Comments = append(c.Comments, model.Comment{ID: "c2", Text: "again"})
		}},
		{name: "id changed", modify: func(c *model.Claim) { c.ID = "other" }, wantErr: true},
		{name: "created_at changed", modify: func(c *model.Claim) {
			c.CreatedAt = c.CreatedAt.Add(time.Hour)
			c.UpdatedAt = c.CreatedAt
		}, wantErr: true},
		{name: "comment dropped", modify: func(c *model.Claim) { c.Comments = nil }, wantErr: true},
		{name: "comment edited", modify: func(c *model.Claim) { c.Comments[0].Text = "edited" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after := base.Clone()
			tt.modify(after)
			err := validateUpdate(base, after)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClaim)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, validateFilter(service.ClaimFilter{}))
	assert.NoError(t, validateFilter(service.ClaimFilter{
		Limit:    5,
		Statuses: []model.ClaimStatus{model.StatusApproved},
	}))
	assert.ErrorIs(t, validateFilter(service.ClaimFilter{Limit: -1}), ErrInvalidLimit)
	assert.ErrorIs(t, validateFilter(service.ClaimFilter{
		Statuses: []model.ClaimStatus{"Unknown"},
	}), ErrInvalidClaim)
}
