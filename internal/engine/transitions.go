package engine

import (
	"strings"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Intent names a requested status change.
type Intent string

// Transition intents.
const (
	IntentAcceptForReview    Intent = "accept_for_review"
	IntentAssessmentComplete Intent = "assessment_complete"
	IntentAssessmentFailed   Intent = "assessment_failed"
	IntentApproveEstimate    Intent = "approve_estimate"
	IntentVehicleReceived    Intent = "vehicle_received"
	IntentRepairCompleted    Intent = "repair_completed"
	IntentConfirmPickup      Intent = "confirm_pickup"
	IntentReject             Intent = "reject"
)

type transitionKey struct {
	role   model.Role
	from   model.ClaimStatus
	intent Intent
}

// transitions is the complete set of legal status changes. Reject is handled
// separately because it applies from every non-terminal status.
var transitions = map[transitionKey]model.ClaimStatus{
	{model.RoleSystem, model.StatusSubmitted, IntentAcceptForReview}:         model.StatusAIReview,
	{model.RoleSystem, model.StatusAIReview, IntentAssessmentComplete}:       model.StatusEstimated,
	{model.RoleSystem, model.StatusAIReview, IntentAssessmentFailed}:         model.StatusSubmitted,
	{model.RoleInsuranceAgent, model.StatusEstimated, IntentApproveEstimate}: model.StatusApproved,
	{model.RoleRepairShop, model.StatusApproved, IntentVehicleReceived}:      model.StatusInRepair,
	{model.RoleRepairShop, model.StatusInRepair, IntentRepairCompleted}:      model.StatusPickUpPending,
	{model.RolePolicyholder, model.StatusPickUpPending, IntentConfirmPickup}: model.StatusClosed,
}

// allIntents in display order.
var allIntents = []Intent{
	IntentAcceptForReview,
	IntentAssessmentComplete,
	IntentAssessmentFailed,
	IntentApproveEstimate,
	IntentVehicleReceived,
	IntentRepairCompleted,
	IntentConfirmPickup,
	IntentReject,
}

// AllIntents lists every intent the engine understands.
func AllIntents() []Intent {
	return append([]Intent(nil), allIntents...)
}

// ParseIntent resolves an intent name, accepting dashes or spaces for underscores.
func ParseIntent(s string) (Intent, bool) {
	normalized := intentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, intent := range allIntents {
		if string(intent) == normalized {
			return intent, true
		}
	}
	return "", false
}

var intentReplacer = strings.NewReplacer("-", "_", " ", "_")

// nextStatus looks up the target of a transition. Terminal statuses never
// have a next status.
func nextStatus(role model.Role, from model.ClaimStatus, intent Intent) (model.ClaimStatus, bool) {
	if from.IsTerminal() {
		return "", false
	}
	if intent == IntentReject {
		return model.StatusRejected, role == model.RoleInsuranceAgent
	}
	to, ok := transitions[transitionKey{role: role, from: from, intent: intent}]
	return to, ok
}

// AvailableIntents lists the intents role may apply to claim right now.
func AvailableIntents(claim *model.Claim, role model.Role) []Intent {
	if claim == nil {
		return nil
	}
	var out []Intent
	for _, intent := range allIntents {
		if _, ok := nextStatus(role, claim.Status, intent); ok {
			out = append(out, intent)
		}
	}
	return out
}

// CanPropose reports whether role may propose an estimate on claim.
func CanPropose(claim *model.Claim, role model.Role) bool {
	if claim == nil || claim.Status.IsTerminal() {
		return false
	}
	return role == model.RoleRepairShop || role == model.RoleInsuranceAgent
}
