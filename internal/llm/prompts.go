package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/model"
)

const assessmentSystemPrompt = "You are an auto insurance damage appraiser. Respond with ONLY a JSON object matching the requested schema. Do not include markdown or commentary."

const shopSystemPrompt = "You recommend real auto body and collision repair shops. Respond with ONLY a JSON object matching the requested schema. Do not include markdown or commentary."

// maxShopSuggestions caps how many shops a search returns.
const maxShopSuggestions = 5

func buildAssessmentPrompt(req model.DamageRequest) string {
	var sb strings.Builder
	sb.WriteString("Assess the vehicle damage shown in the attached photos.\n\n")
	fmt.Fprintf(&sb, "Vehicle: %s\n", req.VehicleInfo)
	fmt.Fprintf(&sb, "Accident description: %s\n", req.Description)
	fmt.Fprintf(&sb, "Photos attached: %d\n\n", len(req.Images))
	sb.WriteString(`Estimate the repair cost in US dollars, splitting labor and parts.
Rate your confidence from 0 to 100.

Respond in this exact JSON format:
{
  "assessment": "Plain-language description of the visible damage",
  "estimate": {
    "total_cost": 0.00,
    "labor_cost": 0.00,
    "parts_cost": 0.00,
    "details": "Line items behind the estimate"
  },
  "confidence_score": 0
}`)
	return sb.String()
}

func buildShopPrompt(location string) string {
	return fmt.Sprintf(`Find up to %d well-reviewed auto body or collision repair shops near: %s

Respond in this exact JSON format:
{
  "shops": [
    {
      "name": "Shop name",
      "address": "Street address",
      "rating": 4.5,
      "website_uri": "https://example.com"
    }
  ]
}

Omit "rating" or "website_uri" when unknown. Return {"shops": []} if you know of none.`, maxShopSuggestions, location)
}
