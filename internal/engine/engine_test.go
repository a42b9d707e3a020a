package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/testutil"
)

var (
	agent        = model.Actor{Role: model.RoleInsuranceAgent, Name: "Alex Agent"}
	shop         = model.Actor{Role: model.RoleRepairShop, Name: "Main St Body"}
	policyholder = model.Actor{Role: model.RolePolicyholder, Name: "Jane Doe"}
)

func newTestEngine(t *testing.T, gateway Gateway, claims ...*model.Claim) (*Engine, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t, claims...)
	engine := NewWithConfig(db.Storage, gateway, Config{
		Logger: common.DiscardLogger(),
		Now:    testutil.FixedClock(testutil.Epoch.Add(time.Minute), time.Second),
	})
	return engine, db
}

func TestApplyTransition_Lifecycle(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(string(backend), func(t *testing.T) {
			claim := testutil.NewClaimBuilder().
				WithStatus(model.StatusEstimated).
				WithAIEstimate(1200).
				Build()
			db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
				Backend: backend,
				Claims:  []*model.Claim{claim},
			})
			engine := NewWithConfig(db.Storage, NewMockGateway(), Config{Logger: common.DiscardLogger()})
			ctx := context.Background()

			steps := []struct {
				actor  model.Actor
				intent Intent
				want   model.ClaimStatus
			}{
				{agent, IntentApproveEstimate, model.StatusApproved},
				{shop, IntentVehicleReceived, model.StatusInRepair},
				{shop, IntentRepairCompleted, model.StatusPickUpPending},
				{policyholder, IntentConfirmPickup, model.StatusClosed},
			}

			previous := claim.UpdatedAt
			for _, step := range steps {
				updated, err := engine.ApplyTransition(ctx, claim.ID, step.actor, step.intent, Payload{})
				require.NoError(t, err, "intent %s", step.intent)
				assert.Equal(t, step.want, updated.Status)
				assert.True(t, updated.UpdatedAt.After(previous), "updated_at must advance on %s", step.intent)
				assert.Empty(t, updated.Comments, "plain transitions must not add comments")
				previous = updated.UpdatedAt
			}

			for _, intent := range AllIntents() {
				_, err := engine.ApplyTransition(ctx, claim.ID, agent, intent, Payload{Reason: "late"})
				assert.ErrorIs(t, err, common.ErrTerminalState, "intent %s on closed claim", intent)
			}
			_, err := engine.Reject(ctx, claim.ID, agent, "too late")
			assert.ErrorIs(t, err, common.ErrTerminalState)
		})
	}
}

func TestApplyTransition_ApproveKeepsCurrentEstimate(t *testing.T) {
	claim := testutil.NewClaimBuilder().WithStatus(model.StatusEstimated).WithAIEstimate(1200).Build()
	engine, _ := newTestEngine(t, NewMockGateway(), claim)
	ctx := context.Background()

	proposed, err := engine.ProposeEstimate(ctx, claim.ID, shop, 1500, "OEM parts")
	require.NoError(t, err)

	approved, err := engine.ApproveEstimate(ctx, claim.ID, agent)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Equal(t, proposed.CurrentEstimate, approved.CurrentEstimate)
	assert.Equal(t, proposed.AIEstimate, approved.AIEstimate)
	assert.Equal(t, proposed.RepairShopEstimate, approved.RepairShopEstimate)
	assert.Nil(t, approved.AgentEstimate)
}

func TestApplyTransition_OutOfTableLeavesClaimUnchanged(t *testing.T) {
	roles := []model.Role{model.RolePolicyholder, model.RoleRepairShop, model.RoleInsuranceAgent, model.RoleSystem}
	ctx := context.Background()

	for _, status := range model.AllStatuses() {
		for _, role := range roles {
			for _, intent := range AllIntents() {
				if _, legal := nextStatus(role, status, intent); legal {
					continue
				}

				claim := testutil.NewClaimBuilder().WithStatus(status).WithAIEstimate(900).
					WithComment(model.RolePolicyholder, "hello").Build()
				engine, db := newTestEngine(t, NewMockGateway(), claim)
				before := db.MustFind(claim.ID)

				_, err := engine.ApplyTransition(ctx, claim.ID, model.Actor{Role: role, Name: "x"}, intent, Payload{Reason: "because"})
				require.Error(t, err)
				if status.IsTerminal() {
					assert.ErrorIs(t, err, common.ErrTerminalState)
				} else {
					assert.ErrorIs(t, err, common.ErrInvalidTransition, "%s %s %s", role, status, intent)
				}
				assert.Equal(t, before, db.MustFind(claim.ID))
			}
		}
	}
}

func TestApplyTransition_TransitionErrorDetails(t *testing.T) {
	claim := testutil.NewClaimBuilder().WithStatus(model.StatusEstimated).Build()
	engine, _ := newTestEngine(t, NewMockGateway(), claim)

	_, err := engine.ApproveEstimate(context.Background(), claim.ID, shop)

	var transitionErr *common.TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, "Repair Shop", transitionErr.Role)
	assert.Equal(t, "Estimated", transitionErr.Status)
	assert.Equal(t, "approve_estimate", transitionErr.Intent)
}

func TestApplyTransition_UnknownClaim(t *testing.T) {
	engine, _ := newTestEngine(t, NewMockGateway())

	_, err := engine.ApproveEstimate(context.Background(), "missing", agent)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("fraud suspected", func(t *testing.T) {
		claim := testutil.NewClaimBuilder().WithStatus(model.StatusEstimated).WithAIEstimate(1200).Build()
		engine, _ := newTestEngine(t, NewMockGateway(), claim)

		rejected, err := engine.Reject(ctx, claim.ID, agent, "Fraud suspected")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, rejected.Status)
		require.Len(t, rejected.Comments, 1)
		last := rejected.LastComment()
		assert.Equal(t, "CLAIM REJECTED: Fraud suspected", last.Text)
		assert.Equal(t, model.RoleInsuranceAgent, last.AuthorRole)
		assert.Equal(t, "Alex Agent", last.AuthorName)
		assert.NotEmpty(t, last.ID)
		assert.True(t, last.Timestamp.Equal(rejected.UpdatedAt))

		_, err = engine.Reject(ctx, claim.ID, agent, "Fraud suspected")
		assert.ErrorIs(t, err, common.ErrTerminalState)
	})

	t.Run("from every non-terminal status", func(t *testing.T) {
		for _, status := range model.AllStatuses() {
			if status.IsTerminal() {
				continue
			}
			claim := testutil.NewClaimBuilder().WithStatus(status).Build()
			engine, _ := newTestEngine(t, NewMockGateway(), claim)

			rejected, err := engine.Reject(ctx, claim.ID, agent, "Policy lapsed")
			require.NoError(t, err, "status %s", status)
			assert.Equal(t, model.StatusRejected, rejected.Status)
		}
	})

	tests := []struct {
		actor   model.Actor
		wantErr error
		name    string
		reason  string
	}{
		{name: "empty reason", actor: agent, reason: "", wantErr: common.ErrValidation},
		{name: "whitespace reason", actor: agent, reason: "   \t", wantErr: common.ErrValidation},
		{name: "shop cannot reject", actor: shop, reason: "nope", wantErr: common.ErrInvalidTransition},
		{name: "policyholder cannot reject", actor: policyholder, reason: "nope", wantErr: common.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := testutil.NewClaimBuilder().WithStatus(model.StatusEstimated).Build()
			engine, db := newTestEngine(t, NewMockGateway(), claim)
			before := db.MustFind(claim.ID)

			_, err := engine.Reject(ctx, claim.ID, tt.actor, tt.reason)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, db.MustFind(claim.ID))
		})
	}
}

func TestStamp_StrictlyMonotonicWithStalledClock(t *testing.T) {
	claim := testutil.NewClaimBuilder().WithStatus(model.StatusEstimated).Build()
	db := testutil.SetupTestDB(t, claim)
	stalled := testutil.Epoch.Add(-time.Hour)
	engine := NewWithConfig(db.Storage, NewMockGateway(), Config{
		Logger: common.DiscardLogger(),
		Now:    func() time.Time { return stalled },
	})
	ctx := context.Background()

	previous := claim.UpdatedAt
	for i := 0; i < 3; i++ {
		updated, err := engine.AddComment(ctx, claim.ID, policyholder, "any news?")
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(previous))
		previous = updated.UpdatedAt
	}
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves insertion order", func(t *testing.T) {
		claim := testutil.NewClaimBuilder().WithComment(model.RolePolicyholder, "first").Build()
		engine, _ := newTestEngine(t, NewMockGateway(), claim)

		texts := []string{"second", "third", "fourth"}
		actors := []model.Actor{shop, agent, policyholder}
		var updated *model.Claim
		var err error
		for i, text := range texts {
			updated, err = engine.AddComment(ctx, claim.ID, actors[i], "  "+text+"  ")
			require.NoError(t, err)
		}

		require.Len(t, updated.Comments, 4)
		assert.Equal(t, claim.Comments[0], updated.Comments[0])
		for i, text := range texts {
			assert.Equal(t, text, updated.Comments[i+1].Text)
			assert.Equal(t, actors[i].Role, updated.Comments[i+1].AuthorRole)
		}
		for i := 1; i < len(updated.Comments); i++ {
			assert.NotEqual(t, updated.Comments[i-1].ID, updated.Comments[i].ID)
		}
	})

	t.Run("allowed on terminal claims", func(t *testing.T) {
		claim := testutil.NewClaimBuilder().WithStatus(model.StatusRejected).Build()
		engine, _ := newTestEngine(t, NewMockGateway(), claim)

		updated, err := engine.AddComment(ctx, claim.ID, policyholder, "Please reconsider")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, updated.Status)
		assert.Equal(t, "Please reconsider", updated.LastComment().Text)
	})

	t.Run("empty text rejected", func(t *testing.T) {
		claim := testutil.NewClaimBuilder().Build()
		engine, db := newTestEngine(t, NewMockGateway(), claim)

		_, err := engine.AddComment(ctx, claim.ID, policyholder, "  \n ")
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Empty(t, db.MustFind(claim.ID).Comments)
	})

	t.Run("unknown claim", func(t *testing.T) {
		engine, _ := newTestEngine(t, NewMockGateway())

		_, err := engine.AddComment(ctx, "missing", policyholder, "hi")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("anonymous actor named after role", func(t *testing.T) {
		claim := testutil.NewClaimBuilder().Build()
		engine, _ := newTestEngine(t, NewMockGateway(), claim)

		updated, err := engine.AddComment(ctx, claim.ID, model.Actor{Role: model.RoleRepairShop}, "on it")
		require.NoError(t, err)
		assert.Equal(t, "Repair Shop", updated.LastComment().AuthorName)
	})
}

func TestListClaims(t *testing.T) {
	first := testutil.NewClaimBuilder().WithPolicy("POL-A").Build()
	second := testutil.NewClaimBuilder().WithPolicy("POL-B").WithStatus(model.StatusRejected).Build()
	engine, _ := newTestEngine(t, NewMockGateway(), first, second)

	all, err := engine.ListClaims(context.Background(), service.ClaimFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	open, err := engine.ListClaims(context.Background(), service.ClaimFilter{
		Statuses: []model.ClaimStatus{model.StatusSubmitted},
	})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, first.ID, open[0].ID)
}
