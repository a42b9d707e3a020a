package engine

import (
	"context"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Gateway defines the contract for the AI damage assessment and shop search.
type Gateway interface {
	// AnalyzeDamage assesses damage from photos and a description.
	AnalyzeDamage(ctx context.Context, req model.DamageRequest) (model.Assessment, error)
	// FindRepairShops suggests shops near a location. An empty result means
	// no suggestions are available.
	FindRepairShops(ctx context.Context, location string) ([]model.RepairShopSuggestion, error)
}

// Stage marks a point in the intake flow a view may want to reflect.
type Stage string

// Intake stages.
const (
	StageAnalyzing Stage = "analyzing"
	StageAnalyzed  Stage = "analyzed"
)

// StageFunc observes intake progress. The claim passed in is a private copy.
type StageFunc func(stage Stage, claim *model.Claim)
