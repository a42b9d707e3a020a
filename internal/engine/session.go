package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

// Session is the state owned by one interactive session: the engine and the
// actor on whose behalf operations run. The view layer holds a Session rather
// than reaching for globals.
type Session struct {
	engine *Engine
	actor  model.Actor
	mu     sync.RWMutex
}

// NewSession creates a session acting as actor.
func NewSession(engine *Engine, actor model.Actor) *Session {
	return &Session{engine: engine, actor: actor}
}

// Engine returns the session's engine.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Actor returns the active actor.
func (s *Session) Actor() model.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

// SwitchActor changes the active actor. This is a demo affordance: nothing
// verifies the caller is entitled to the role. The System role is reserved for
// intake and cannot be selected.
func (s *Session) SwitchActor(actor model.Actor) error {
	switch actor.Role {
	case model.RolePolicyholder, model.RoleRepairShop, model.RoleInsuranceAgent:
	default:
		return common.NewValidationError("role", fmt.Sprintf("%q cannot be selected", actor.Role))
	}
	if actor.Name == "" {
		actor.Name = string(actor.Role)
	}

	s.mu.Lock()
	s.actor = actor
	s.mu.Unlock()
	return nil
}

// Submit files a claim as the active actor.
func (s *Session) Submit(ctx context.Context, req SubmitRequest) (*model.Claim, error) {
	return s.engine.SubmitClaim(ctx, s.Actor(), req)
}

// Transition applies intent as the active actor.
func (s *Session) Transition(ctx context.Context, claimID string, intent Intent, payload Payload) (*model.Claim, error) {
	return s.engine.ApplyTransition(ctx, claimID, s.Actor(), intent, payload)
}

// Approve approves the current estimate as the active actor.
func (s *Session) Approve(ctx context.Context, claimID string) (*model.Claim, error) {
	return s.engine.ApproveEstimate(ctx, claimID, s.Actor())
}

// Reject rejects a claim as the active actor.
func (s *Session) Reject(ctx context.Context, claimID, reason string) (*model.Claim, error) {
	return s.engine.Reject(ctx, claimID, s.Actor(), reason)
}

// Propose proposes an estimate as the active actor.
func (s *Session) Propose(ctx context.Context, claimID string, amount float64, justification string) (*model.Claim, error) {
	return s.engine.ProposeEstimate(ctx, claimID, s.Actor(), amount, justification)
}

// Comment adds a comment as the active actor.
func (s *Session) Comment(ctx context.Context, claimID, text string) (*model.Claim, error) {
	return s.engine.AddComment(ctx, claimID, s.Actor(), text)
}

// Find returns a claim by id.
func (s *Session) Find(ctx context.Context, claimID string) (*model.Claim, error) {
	return s.engine.FindClaim(ctx, claimID)
}

// List returns claims matching filter.
func (s *Session) List(ctx context.Context, filter service.ClaimFilter) ([]model.Claim, error) {
	return s.engine.ListClaims(ctx, filter)
}

// Actions lists what the active actor may do with claim.
func (s *Session) Actions(claim *model.Claim) []Intent {
	return AvailableIntents(claim, s.Actor().Role)
}

// CanPropose reports whether the active actor may propose an estimate on claim.
func (s *Session) CanPropose(claim *model.Claim) bool {
	return CanPropose(claim, s.Actor().Role)
}
