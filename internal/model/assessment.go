package model

import "github.com/shopspring/decimal"

// Fallback texts carried by a degraded assessment.
const (
	DegradedAssessmentText = "AI Analysis unavailable. Please review manually."
	DegradedEstimateText   = "Manual estimation required."
)

// DamageRequest is the input to an AI damage assessment.
type DamageRequest struct {
	Description string
	VehicleInfo string
	Images      []Image
}

// Assessment is the structured outcome of an AI damage assessment.
type Assessment struct {
	ConfidenceScore *int
	Text            string
	Estimate        Estimate
	Degraded        bool
}

// DegradedAssessment is the well-formed result used when analysis is unavailable.
// Both the text and the estimate carry manual review markers.
func DegradedAssessment() Assessment {
	return Assessment{
		Text: DegradedAssessmentText,
		Estimate: Estimate{
			TotalCost: decimal.Zero,
			LaborCost: decimal.Zero,
			PartsCost: decimal.Zero,
			Details:   DegradedEstimateText,
			Source:    SourceAI,
		},
		Degraded: true,
	}
}
