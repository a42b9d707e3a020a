// Package engine implements the claim workflow: status transitions, estimate
// negotiation, comments and the AI-assisted intake flow.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
)

// Engine enforces legal status changes and negotiation rules over a claim store.
// All claim mutations go through the store's UpdateClaim so each logical change
// commits atomically or not at all.
type Engine struct {
	store   service.Storage
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time
	onStage StageFunc
}

// Config holds configuration options for the workflow engine.
type Config struct {
	Logger  *slog.Logger
	Now     func() time.Time
	OnStage StageFunc
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Logger: slog.Default(),
		Now:    time.Now,
	}
}

// Payload carries intent-specific input for a transition.
type Payload struct {
	Reason string
}

// New creates a new workflow engine with the given dependencies.
func New(store service.Storage, gateway Gateway) *Engine {
	return NewWithConfig(store, gateway, DefaultConfig())
}

// NewWithConfig creates a new workflow engine with custom configuration.
func NewWithConfig(store service.Storage, gateway Gateway, config Config) *Engine {
	defaults := DefaultConfig()
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	return &Engine{
		store:   store,
		gateway: gateway,
		logger:  config.Logger,
		now:     config.Now,
		onStage: config.OnStage,
	}
}

// FindClaim returns the claim with the given id.
func (e *Engine) FindClaim(ctx context.Context, id string) (*model.Claim, error) {
	return e.store.FindClaim(ctx, id)
}

// ListClaims returns claims matching filter, newest first.
func (e *Engine) ListClaims(ctx context.Context, filter service.ClaimFilter) ([]model.Claim, error) {
	return e.store.ListClaims(ctx, filter)
}

// ApplyTransition moves a claim to the status the (role, status, intent)
// triple maps to. The claim is left unchanged on any error.
func (e *Engine) ApplyTransition(ctx context.Context, claimID string, actor model.Actor, intent Intent, payload Payload) (*model.Claim, error) {
	var from model.ClaimStatus
	claim, err := e.store.UpdateClaim(ctx, claimID, func(c *model.Claim) error {
		from = c.Status
		return e.transition(c, actor, intent, payload)
	})
	if err != nil {
		e.logger.Debug("Transition refused",
			"claim_id", claimID,
			"role", actor.Role,
			"intent", intent,
			"error", err)
		return nil, err
	}

	e.logger.Info("Claim transitioned",
		"claim_id", claimID,
		"role", actor.Role,
		"intent", intent,
		"from", from,
		"to", claim.Status)
	return claim, nil
}

// ApproveEstimate approves the claim's current estimate. It only changes status;
// which estimate is current is left alone.
func (e *Engine) ApproveEstimate(ctx context.Context, claimID string, actor model.Actor) (*model.Claim, error) {
	return e.ApplyTransition(ctx, claimID, actor, IntentApproveEstimate, Payload{})
}

// Reject moves a claim to Rejected and records the reason as an audit comment.
func (e *Engine) Reject(ctx context.Context, claimID string, actor model.Actor, reason string) (*model.Claim, error) {
	return e.ApplyTransition(ctx, claimID, actor, IntentReject, Payload{Reason: reason})
}

// AddComment appends a comment. Comments are accepted on terminal claims too.
func (e *Engine) AddComment(ctx context.Context, claimID string, actor model.Actor, text string) (*model.Claim, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("comment", "must not be empty")
	}

	return e.store.UpdateClaim(ctx, claimID, func(c *model.Claim) error {
		e.appendComment(c, actor.Role, actor.Name, text, e.stamp(c))
		return nil
	})
}

func (e *Engine) transition(c *model.Claim, actor model.Actor, intent Intent, payload Payload) error {
	if c.Status.IsTerminal() {
		return fmt.Errorf("%w: claim %s is %s", common.ErrTerminalState, c.ID, c.Status)
	}

	to, ok := nextStatus(actor.Role, c.Status, intent)
	if !ok {
		return &common.TransitionError{
			Role:   string(actor.Role),
			Status: string(c.Status),
			Intent: string(intent),
		}
	}

	var rejection string
	if intent == IntentReject {
		rejection = strings.TrimSpace(payload.Reason)
		if rejection == "" {
			return common.NewValidationError("reason", "must not be empty")
		}
	}

	c.Status = to
	ts := e.stamp(c)
	if intent == IntentReject {
		e.appendComment(c, model.RoleInsuranceAgent, actor.Name, "CLAIM REJECTED: "+rejection, ts)
	}
	return nil
}

// stamp advances UpdatedAt. Successive stamps on a claim are strictly increasing
// even if the clock stalls or steps back.
func (e *Engine) stamp(c *model.Claim) time.Time {
	now := e.now()
	if !now.After(c.UpdatedAt) {
		now = c.UpdatedAt.Add(time.Nanosecond)
	}
	c.UpdatedAt = now
	return now
}

func (e *Engine) appendComment(c *model.Claim, role model.Role, name, text string, at time.Time) {
	if strings.TrimSpace(name) == "" {
		name = string(role)
	}
	c.Comments = append(c.Comments, model.Comment{
		ID:         uuid.NewString(),
		AuthorRole: role,
		AuthorName: name,
		Text:       text,
		Timestamp:  at,
	})
}

func (e *Engine) notify(stage Stage, claim *model.Claim) {
	if e.onStage != nil {
		e.onStage(stage, claim.Clone())
	}
}
