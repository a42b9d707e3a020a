package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/testutil"
)

func validRequest() SubmitRequest {
	return SubmitRequest{
		PolicyNumber:     "POL-1",
		PolicyholderName: "Jane Doe",
		VehicleModel:     "Honda Civic",
		VehicleYear:      2019,
		AccidentDetails:  "Rear-ended at a stop light, bumper cracked",
		IncidentLocation: "Springfield",
		Images:           []model.Image{testutil.JPEG()},
	}
}

// hookGateway delegates to a MockGateway after running an optional hook.
type hookGateway struct {
	*MockGateway
	beforeAnalyze func(ctx context.Context)
}

func (g *hookGateway) AnalyzeDamage(ctx context.Context, req model.DamageRequest) (model.Assessment, error) {
	if g.beforeAnalyze != nil {
		g.beforeAnalyze(ctx)
	}
	return g.MockGateway.AnalyzeDamage(ctx, req)
}

func TestSubmitClaim_AssessmentSucceeds(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(string(backend), func(t *testing.T) {
			db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Backend: backend})
			gateway := NewMockGateway()

			var mu sync.Mutex
			var observed []model.ClaimStatus
			var storedDuringReview model.ClaimStatus
			engine := NewWithConfig(db.Storage, gateway, Config{
				Logger: common.DiscardLogger(),
				OnStage: func(stage Stage, claim *model.Claim) {
					mu.Lock()
					defer mu.Unlock()
					observed = append(observed, claim.Status)
					if stage == StageAnalyzing {
						stored, err := db.Storage.FindClaim(context.Background(), claim.ID)
						if err == nil {
							storedDuringReview = stored.Status
						}
					}
				},
			})

			claim, err := engine.SubmitClaim(context.Background(), policyholder, validRequest())
			require.NoError(t, err)

			assert.Equal(t, []model.ClaimStatus{model.StatusAIReview, model.StatusEstimated}, observed)
			assert.Equal(t, model.StatusAIReview, storedDuringReview)

			assert.Equal(t, model.StatusEstimated, claim.Status)
			assert.Equal(t, "POL-1", claim.PolicyNumber)
			assert.NotEmpty(t, claim.ID)
			require.NotNil(t, claim.AIEstimate)
			assert.Equal(t, model.SourceAI, claim.AIEstimate.Source)
			assert.Equal(t, claim.AIEstimate, claim.CurrentEstimate)
			assert.NotEmpty(t, claim.SuggestedShops)
			assert.NotEmpty(t, claim.AIDamageAssessment)
			require.NotNil(t, claim.AIConfidenceScore)
			assert.False(t, claim.AIDegraded)
			assert.Empty(t, claim.Comments)
			assert.True(t, claim.UpdatedAt.After(claim.CreatedAt))

			stored, err := db.Storage.FindClaim(context.Background(), claim.ID)
			require.NoError(t, err)
			assert.Equal(t, model.StatusEstimated, stored.Status)

			calls := gateway.AnalyzeCalls()
			require.Len(t, calls, 1)
			assert.Equal(t, "2019 Honda Civic", calls[0].VehicleInfo)
			assert.Equal(t, validRequest().AccidentDetails, calls[0].Description)
			assert.Equal(t, []model.Image{testutil.JPEG()}, calls[0].Images)
			assert.Equal(t, []string{"Springfield"}, gateway.ShopCalls())
		})
	}
}

func TestSubmitClaim_GatewayError(t *testing.T) {
	gateway := NewMockGateway()
	gateway.AnalyzeErr = errors.New("connection reset")
	engine, db := newTestEngine(t, gateway)

	claim, err := engine.SubmitClaim(context.Background(), policyholder, validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.StatusSubmitted, claim.Status)
	assert.Equal(t, "AI Analysis unavailable. Please review manually.", claim.AIDamageAssessment)
	require.NotNil(t, claim.AIEstimate)
	assert.True(t, claim.AIEstimate.TotalCost.IsZero())
	assert.Equal(t, "Manual estimation required.", claim.AIEstimate.Details)
	assert.True(t, claim.AIDegraded)
	assert.Nil(t, claim.AIConfidenceScore)
	assert.Empty(t, claim.SuggestedShops)

	stored := db.MustFind(claim.ID)
	assert.Equal(t, model.StatusSubmitted, stored.Status)
}

func TestSubmitClaim_DegradedAssessmentStillEstimates(t *testing.T) {
	gateway := NewMockGateway()
	degraded := model.DegradedAssessment()
	gateway.Assessment = &degraded
	gateway.Shops = []model.RepairShopSuggestion{}
	engine, _ := newTestEngine(t, gateway)

	claim, err := engine.SubmitClaim(context.Background(), policyholder, validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.StatusEstimated, claim.Status)
	assert.True(t, claim.AIDegraded)
	assert.Equal(t, model.DegradedAssessmentText, claim.AIDamageAssessment)
	assert.Equal(t, model.DegradedEstimateText, claim.CurrentEstimate.Details)
	assert.NotNil(t, claim.SuggestedShops)
	assert.Empty(t, claim.SuggestedShops)
}

func TestSubmitClaim_ShopSearchErrorIsNotFatal(t *testing.T) {
	gateway := NewMockGateway()
	gateway.ShopsErr = errors.New("places quota exceeded")
	engine, _ := newTestEngine(t, gateway)

	claim, err := engine.SubmitClaim(context.Background(), policyholder, validRequest())
	require.NoError(t, err)
	assert.Equal(t, model.StatusEstimated, claim.Status)
	assert.Empty(t, claim.SuggestedShops)
}

func TestSubmitClaim_ImbalancedAIEstimateStoredAsReturned(t *testing.T) {
	gateway := NewMockGateway()
	gateway.Assessment = &model.Assessment{
		Text: "Front fender damage",
		Estimate: model.Estimate{
			TotalCost: decimal.NewFromInt(1000),
			LaborCost: decimal.NewFromInt(700),
			PartsCost: decimal.NewFromInt(500),
			Details:   "Fender and paint",
			Source:    model.SourceRepairShop,
		},
	}
	engine, _ := newTestEngine(t, gateway)

	claim, err := engine.SubmitClaim(context.Background(), policyholder, validRequest())
	require.NoError(t, err)

	assert.False(t, claim.AIEstimate.IsBalanced())
	assert.True(t, claim.AIEstimate.LaborCost.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, model.SourceAI, claim.AIEstimate.Source)
}

func TestSubmitClaim_RejectedDuringReview(t *testing.T) {
	gateway := &hookGateway{MockGateway: NewMockGateway()}
	engine, db := newTestEngine(t, gateway)

	gateway.beforeAnalyze = func(ctx context.Context) {
		// Runs on a gateway goroutine, so only assert here.
		claims, err := db.Storage.ListClaims(ctx, service.ClaimFilter{Limit: 1})
		if !assert.NoError(t, err) || !assert.Len(t, claims, 1) {
			return
		}
		_, err = engine.Reject(ctx, claims[0].ID, agent, "Duplicate claim")
		assert.NoError(t, err)
	}

	claim, err := engine.SubmitClaim(context.Background(), policyholder, validRequest())
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, claim.Status)
	assert.Nil(t, claim.AIEstimate)
	assert.Equal(t, "CLAIM REJECTED: Duplicate claim", claim.LastComment().Text)
}

func TestSubmitClaim_CanceledContextStillLeavesReview(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gateway := &hookGateway{MockGateway: NewMockGateway(), beforeAnalyze: func(context.Context) { cancel() }}
	gateway.AnalyzeErr = context.Canceled
	engine, db := newTestEngine(t, gateway)

	claim, err := engine.SubmitClaim(ctx, policyholder, validRequest())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, claim.Status)
	assert.Equal(t, model.StatusSubmitted, db.MustFind(claim.ID).Status)
}

func TestSubmitClaim_Validation(t *testing.T) {
	tests := []struct {
		modify func(r *SubmitRequest)
		name   string
		field  string
	}{
		{name: "missing policy", field: "policy number", modify: func(r *SubmitRequest) { r.PolicyNumber = "" }},
		{name: "missing name", field: "policyholder name", modify: func(r *SubmitRequest) { r.PolicyholderName = " " }},
		{name: "missing model", field: "vehicle model", modify: func(r *SubmitRequest) { r.VehicleModel = "" }},
		{name: "missing details", field: "accident details", modify: func(r *SubmitRequest) { r.AccidentDetails = "" }},
		{name: "year too old", field: "vehicle year", modify: func(r *SubmitRequest) { r.VehicleYear = 1885 }},
		{name: "year in future", field: "vehicle year", modify: func(r *SubmitRequest) { r.VehicleYear = time.Now().Year() + 2 }},
		{name: "no images", field: "damage images", modify: func(r *SubmitRequest) { r.Images = nil }},
		{name: "empty image", field: "image 2", modify: func(r *SubmitRequest) {
			r.Images = append(r.Images, model.Image{MIMEType: "image/png"})
		}},
		{name: "not an image", field: "image 1", modify: func(r *SubmitRequest) {
			r.Images = []model.Image{{MIMEType: "application/pdf", Data: []byte("%PDF")}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := NewMockGateway()
			engine, db := newTestEngine(t, gateway)
			req := validRequest()
			tt.modify(&req)

			_, err := engine.SubmitClaim(context.Background(), policyholder, req)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.True(t, strings.Contains(err.Error(), tt.field), "error %q should mention %q", err, tt.field)

			claims, listErr := db.Storage.ListClaims(context.Background(), service.ClaimFilter{})
			require.NoError(t, listErr)
			assert.Empty(t, claims)
			assert.Empty(t, gateway.AnalyzeCalls())
		})
	}
}

func TestSubmitClaim_OnlyPolicyholders(t *testing.T) {
	engine, _ := newTestEngine(t, NewMockGateway())

	for _, actor := range []model.Actor{shop, agent, model.SystemActor} {
		_, err := engine.SubmitClaim(context.Background(), actor, validRequest())
		assert.ErrorIs(t, err, common.ErrInvalidTransition, "role %s", actor.Role)
	}
}

func TestSubmitClaim_CopiesImages(t *testing.T) {
	engine, db := newTestEngine(t, NewMockGateway())
	req := validRequest()

	claim, err := engine.SubmitClaim(context.Background(), policyholder, req)
	require.NoError(t, err)
	req.Images[0].Data[0] = 0x00

	assert.Equal(t, byte(0xff), db.MustFind(claim.ID).DamageImages[0].Data[0])
}
