package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
)

// firstVehicleYear is the year of the first production automobile.
const firstVehicleYear = 1886

// SubmitRequest is a new claim as filed by a policyholder.
type SubmitRequest struct {
	PolicyNumber     string
	PolicyholderName string
	VehicleModel     string
	AccidentDetails  string
	IncidentLocation string
	Images           []model.Image
	VehicleYear      int
}

// Validate checks that the request can become a claim.
func (r SubmitRequest) Validate(now time.Time) error {
	required := []struct {
		field string
		value string
	}{
		{"policy number", r.PolicyNumber},
		{"policyholder name", r.PolicyholderName},
		{"vehicle model", r.VehicleModel},
		{"accident details", r.AccidentDetails},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return common.NewValidationError(f.field, "is required")
		}
	}

	if r.VehicleYear < firstVehicleYear || r.VehicleYear > now.Year()+1 {
		return common.NewValidationError("vehicle year",
			fmt.Sprintf("must be between %d and %d", firstVehicleYear, now.Year()+1))
	}

	if len(r.Images) == 0 {
		return common.NewValidationError("damage images", "at least one image is required")
	}
	for i, img := range r.Images {
		if len(img.Data) == 0 {
			return common.NewValidationError(fmt.Sprintf("image %d", i+1), "is empty")
		}
		if !strings.HasPrefix(strings.ToLower(img.MIMEType), "image/") {
			return common.NewValidationError(fmt.Sprintf("image %d", i+1),
				fmt.Sprintf("has unsupported type %q", img.MIMEType))
		}
	}
	return nil
}

// SubmitClaim files a new claim and runs it through AI review.
//
// The claim is stored as Submitted and moved to AIReview before the gateway is
// called, so it is observable in that state while analysis is pending. Damage
// analysis and shop search run concurrently. A degraded assessment still
// advances the claim to Estimated. If the gateway itself fails, the claim gets
// the degraded markers and goes back to Submitted.
func (e *Engine) SubmitClaim(ctx context.Context, actor model.Actor, req SubmitRequest) (*model.Claim, error) {
	if actor.Role != model.RolePolicyholder {
		return nil, &common.TransitionError{
			Role:   string(actor.Role),
			Status: "new",
			Intent: "submit",
		}
	}

	now := e.now()
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	claim := &model.Claim{
		ID:               ulid.Make().String(),
		PolicyNumber:     strings.TrimSpace(req.PolicyNumber),
		PolicyholderName: strings.TrimSpace(req.PolicyholderName),
		VehicleModel:     strings.TrimSpace(req.VehicleModel),
		VehicleYear:      req.VehicleYear,
		AccidentDetails:  strings.TrimSpace(req.AccidentDetails),
		IncidentLocation: strings.TrimSpace(req.IncidentLocation),
		Status:           model.StatusSubmitted,
		CreatedAt:        now,
		UpdatedAt:        now,
		DamageImages:     make([]model.Image, len(req.Images)),
		SuggestedShops:   []model.RepairShopSuggestion{},
		Comments:         []model.Comment{},
	}
	for i, img := range req.Images {
		claim.DamageImages[i] = model.Image{
			MIMEType: img.MIMEType,
			Data:     append([]byte(nil), img.Data...),
		}
	}

	if err := e.store.CreateClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to store claim: %w", err)
	}
	e.logger.Info("Claim submitted",
		"claim_id", claim.ID,
		"policy_number", claim.PolicyNumber,
		"images", len(claim.DamageImages))

	reviewing, err := e.ApplyTransition(ctx, claim.ID, model.SystemActor, IntentAcceptForReview, Payload{})
	if err != nil {
		return nil, err
	}
	e.notify(StageAnalyzing, reviewing)

	assessment, shops, assessErr := e.assess(ctx, reviewing)

	// Record the outcome even if the caller gave up waiting, so the claim does
	// not stay in AIReview.
	recordCtx := context.WithoutCancel(ctx)
	var result *model.Claim
	if assessErr != nil {
		e.logger.Warn("AI assessment failed, returning claim to Submitted",
			"claim_id", claim.ID,
			"error", assessErr)
		result, err = e.recordAssessment(recordCtx, claim.ID, model.DegradedAssessment(), nil, IntentAssessmentFailed)
	} else {
		result, err = e.recordAssessment(recordCtx, claim.ID, assessment, shops, IntentAssessmentComplete)
	}
	if err != nil {
		return nil, err
	}

	e.notify(StageAnalyzed, result)
	return result, nil
}

func (e *Engine) assess(ctx context.Context, claim *model.Claim) (model.Assessment, []model.RepairShopSuggestion, error) {
	var (
		assessment model.Assessment
		shops      []model.RepairShopSuggestion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := e.gateway.AnalyzeDamage(gctx, model.DamageRequest{
			Description: claim.AccidentDetails,
			VehicleInfo: claim.VehicleInfo(),
			Images:      claim.DamageImages,
		})
		if err != nil {
			return fmt.Errorf("damage analysis failed: %w", err)
		}
		assessment = result
		return nil
	})
	g.Go(func() error {
		found, err := e.gateway.FindRepairShops(gctx, claim.IncidentLocation)
		if err != nil {
			// No suggestions is an acceptable outcome.
			e.logger.Warn("Repair shop search failed",
				"claim_id", claim.ID,
				"error", err)
			return nil
		}
		shops = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Assessment{}, nil, err
	}
	return assessment, shops, nil
}

// recordAssessment writes the AI fields and leaves AIReview in one update. If
// an agent acted on the claim while analysis was pending, the assessment is
// dropped and the claim is returned as it stands.
func (e *Engine) recordAssessment(ctx context.Context, claimID string, a model.Assessment, shops []model.RepairShopSuggestion, intent Intent) (*model.Claim, error) {
	estimate := a.Estimate
	estimate.Source = model.SourceAI
	if !estimate.IsBalanced() {
		e.logger.Warn("AI estimate breakdown does not add up; keeping it as advisory",
			"claim_id", claimID,
			"total", estimate.TotalCost.String(),
			"labor", estimate.LaborCost.String(),
			"parts", estimate.PartsCost.String())
	}

	claim, err := e.store.UpdateClaim(ctx, claimID, func(c *model.Claim) error {
		c.AIDamageAssessment = a.Text
		c.AIEstimate = &estimate
		c.AIConfidenceScore = nil
		if a.ConfidenceScore != nil {
			score := *a.ConfidenceScore
			c.AIConfidenceScore = &score
		}
		c.AIDegraded = a.Degraded
		c.SuggestedShops = append([]model.RepairShopSuggestion{}, shops...)
		c.CurrentEstimate = c.ResolveCurrentEstimate()
		return e.transition(c, model.SystemActor, intent, Payload{})
	})
	if errors.Is(err, common.ErrTerminalState) || errors.Is(err, common.ErrInvalidTransition) {
		e.logger.Warn("Claim left AI review before the assessment was recorded",
			"claim_id", claimID,
			"error", err)
		return e.store.FindClaim(ctx, claimID)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info("Claim transitioned",
		"claim_id", claimID,
		"role", model.RoleSystem,
		"intent", intent,
		"from", model.StatusAIReview,
		"to", claim.Status,
		"degraded", a.Degraded)
	return claim, nil
}
