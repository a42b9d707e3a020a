package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Epoch is the fixed creation time of fixture claims.
var Epoch = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

var claimCounter atomic.Int64

// JPEG is a minimal payload with a JPEG signature.
func JPEG() model.Image {
	return model.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}}
}

// ClaimBuilder constructs claims for tests with a fluent interface.
type ClaimBuilder struct {
	claim *model.Claim
}

// NewClaimBuilder starts a Submitted claim with one image and a unique id.
func NewClaimBuilder() *ClaimBuilder {
	n := claimCounter.Add(1)
	return &ClaimBuilder{claim: &model.Claim{
		ID:               fmt.Sprintf("claim-%03d", n),
		PolicyNumber:     "POL-1",
		PolicyholderName: "Jane Doe",
		VehicleModel:     "Honda Civic",
		VehicleYear:      2019,
		AccidentDetails:  "Rear-ended at a stop light, bumper cracked",
		IncidentLocation: "Springfield",
		Status:           model.StatusSubmitted,
		CreatedAt:        Epoch,
		UpdatedAt:        Epoch,
		DamageImages:     []model.Image{JPEG()},
		SuggestedShops:   []model.RepairShopSuggestion{},
		Comments:         []model.Comment{},
	}}
}

// WithID sets the claim id.
func (b *ClaimBuilder) WithID(id string) *ClaimBuilder {
	b.claim.ID = id
	return b
}

// WithPolicy sets the policy number.
func (b *ClaimBuilder) WithPolicy(policy string) *ClaimBuilder {
	b.claim.PolicyNumber = policy
	return b
}

// WithStatus sets the status.
func (b *ClaimBuilder) WithStatus(status model.ClaimStatus) *ClaimBuilder {
	b.claim.Status = status
	return b
}

// WithAIEstimate sets an AI estimate of total and makes it current.
func (b *ClaimBuilder) WithAIEstimate(total int64) *ClaimBuilder {
	estimate := model.NewEstimate(decimal.NewFromInt(total), "AI assessment", model.SourceAI)
	b.claim.AIEstimate = &estimate
	b.claim.AIDamageAssessment = "Fixture assessment"
	b.claim.CurrentEstimate = b.claim.ResolveCurrentEstimate()
	return b
}

// WithComment appends a comment.
func (b *ClaimBuilder) WithComment(role model.Role, text string) *ClaimBuilder {
	b.claim.Comments = append(b.claim.Comments, model.Comment{
		ID:         fmt.Sprintf("%s-comment-%d", b.claim.ID, len(b.claim.Comments)+1),
		AuthorRole: role,
		AuthorName: string(role),
		Text:       text,
		Timestamp:  Epoch,
	})
	return b
}

// Build returns the claim.
func (b *ClaimBuilder) Build() *model.Claim {
	return b.claim.Clone()
}

// FixedClock returns a clock that starts at start and advances by step on each call.
func FixedClock(start time.Time, step time.Duration) func() time.Time {
	var calls atomic.Int64
	return func() time.Time {
		n := calls.Add(1) - 1
		return start.Add(time.Duration(n) * step)
	}
}
