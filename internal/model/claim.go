package model

import (
	"strconv"
	"time"
)

// Image is a single damage photo as submitted.
type Image struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Comment is one entry in a claim's activity feed.
type Comment struct {
	Timestamp  time.Time `json:"timestamp"`
	ID         string    `json:"id"`
	AuthorRole Role      `json:"author_role"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
}

// RepairShopSuggestion is a shop the AI gateway proposed for the repair.
type RepairShopSuggestion struct {
	Rating     *float64 `json:"rating,omitempty"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	WebsiteURI string   `json:"website_uri,omitempty"`
}

// Claim is the aggregate record tracking one damage claim through its lifecycle.
type Claim struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AIEstimate         *Estimate `json:"ai_estimate,omitempty"`
	AIConfidenceScore  *int      `json:"ai_confidence_score,omitempty"`
	CurrentEstimate    *Estimate `json:"current_estimate,omitempty"`
	RepairShopEstimate *Estimate `json:"repair_shop_estimate,omitempty"`
	AgentEstimate      *Estimate `json:"agent_estimate,omitempty"`

	ID                 string      `json:"id"`
	PolicyNumber       string      `json:"policy_number"`
	PolicyholderName   string      `json:"policyholder_name"`
	VehicleModel       string      `json:"vehicle_model"`
	AccidentDetails    string      `json:"accident_details"`
	IncidentLocation   string      `json:"incident_location,omitempty"`
	Status             ClaimStatus `json:"status"`
	AIDamageAssessment string      `json:"ai_damage_assessment,omitempty"`

	DamageImages   []Image                `json:"damage_images"`
	SuggestedShops []RepairShopSuggestion `json:"suggested_shops"`
	Comments       []Comment              `json:"comments"`

	VehicleYear int  `json:"vehicle_year"`
	AIDegraded  bool `json:"ai_degraded,omitempty"`
}

// VehicleInfo is the one-line vehicle description handed to the AI gateway.
func (c *Claim) VehicleInfo() string {
	return strconv.Itoa(c.VehicleYear) + " " + c.VehicleModel
}

// ResolveCurrentEstimate applies the estimate precedence rule:
// agent estimate, then repair shop estimate, then the AI estimate.
func (c *Claim) ResolveCurrentEstimate() *Estimate {
	switch {
	case c.AgentEstimate != nil:
		return c.AgentEstimate
	case c.RepairShopEstimate != nil:
		return c.RepairShopEstimate
	default:
		return c.AIEstimate
	}
}

// LastComment returns the most recent comment, or nil if there are none.
func (c *Claim) LastComment() *Comment {
	if len(c.Comments) == 0 {
		return nil
	}
	return &c.Comments[len(c.Comments)-1]
}

// Clone returns a deep copy that shares no mutable state with c.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	out := *c

	out.AIEstimate = cloneEstimate(c.AIEstimate)
	out.CurrentEstimate = cloneEstimate(c.CurrentEstimate)
	out.RepairShopEstimate = cloneEstimate(c.RepairShopEstimate)
	out.AgentEstimate = cloneEstimate(c.AgentEstimate)

	if c.AIConfidenceScore != nil {
		score := *c.AIConfidenceScore
		out.AIConfidenceScore = &score
	}

	if c.DamageImages != nil {
		out.DamageImages = make([]Image, len(c.DamageImages))
		for i, img := range c.DamageImages {
			out.DamageImages[i] = Image{
				MIMEType: img.MIMEType,
				Data:     append([]byte(nil), img.Data...),
			}
		}
	}

	if c.SuggestedShops != nil {
		out.SuggestedShops = make([]RepairShopSuggestion, len(c.SuggestedShops))
		for i, shop := range c.SuggestedShops {
			out.SuggestedShops[i] = shop
			if shop.Rating != nil {
				rating := *shop.Rating
				out.SuggestedShops[i].Rating = &rating
			}
		}
	}

	if c.Comments != nil {
		out.Comments = append([]Comment(nil), c.Comments...)
	}

	return &out
}
