package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
)

const intentProposeEstimate = "propose_estimate"

// ProposeEstimate records a new estimate from a repair shop or insurance agent.
//
// Shop proposals land in RepairShopEstimate, agent proposals in AgentEstimate.
// CurrentEstimate is then re-derived from the precedence agent > shop > AI, so
// an agent proposal always becomes current and a shop proposal only does while
// no agent estimate exists. A comment describing the proposal is appended in the
// same update.
func (e *Engine) ProposeEstimate(ctx context.Context, claimID string, actor model.Actor, totalAmount float64, justification string) (*model.Claim, error) {
	if math.IsNaN(totalAmount) || math.IsInf(totalAmount, 0) {
		return nil, common.NewValidationError("amount", "must be a finite number")
	}
	if totalAmount < 0 {
		return nil, common.NewValidationError("amount", "must not be negative")
	}
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, common.NewValidationError("justification", "must not be empty")
	}

	total := decimal.NewFromFloat(totalAmount).Round(2)

	claim, err := e.store.UpdateClaim(ctx, claimID, func(c *model.Claim) error {
		if c.Status.IsTerminal() {
			return fmt.Errorf("%w: claim %s is %s", common.ErrTerminalState, c.ID, c.Status)
		}

		source, ok := proposalSource(actor.Role)
		if !ok {
			return &common.TransitionError{
				Role:   string(actor.Role),
				Status: string(c.Status),
				Intent: intentProposeEstimate,
			}
		}

		estimate := model.NewEstimate(total, justification, source)
		switch source {
		case model.SourceInsuranceAgent:
			c.AgentEstimate = &estimate
		default:
			c.RepairShopEstimate = &estimate
		}
		c.CurrentEstimate = c.ResolveCurrentEstimate()

		text := fmt.Sprintf("Proposed new estimate: %s. Reason: %s", model.FormatAmount(total), justification)
		e.appendComment(c, actor.Role, actor.Name, text, e.stamp(c))
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Estimate proposed",
		"claim_id", claimID,
		"role", actor.Role,
		"total", total.StringFixed(2),
		"current_source", claim.CurrentEstimate.Source)
	return claim, nil
}

func proposalSource(role model.Role) (model.EstimateSource, bool) {
	switch role {
	case model.RoleRepairShop:
		return model.SourceRepairShop, true
	case model.RoleInsuranceAgent:
		return model.SourceInsuranceAgent, true
	default:
		return "", false
	}
}
