package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/claimdesk/internal/model"
)

// ErrInvalidResponse marks a provider response that does not match the schema.
var ErrInvalidResponse = errors.New("invalid AI response")

// cleanMarkdownWrapper strips a ```json fence some models wrap JSON in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if newline := strings.IndexByte(content, '\n'); newline >= 0 {
		// Drop the language tag line, e.g. "json".
		content = content[newline+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

type assessmentPayload struct {
	Assessment      *string          `json:"assessment"`
	Estimate        *estimatePayload `json:"estimate"`
	ConfidenceScore *float64         `json:"confidence_score"`
}

type estimatePayload struct {
	TotalCost *decimal.Decimal `json:"total_cost"`
	LaborCost *decimal.Decimal `json:"labor_cost"`
	PartsCost *decimal.Decimal `json:"parts_cost"`
	Details   string           `json:"details"`
}

// parseAssessment turns provider text into an Assessment or fails.
func parseAssessment(content string) (model.Assessment, error) {
	var payload assessmentPayload
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &payload); err != nil {
		return model.Assessment{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if payload.Assessment == nil || strings.TrimSpace(*payload.Assessment) == "" {
		return model.Assessment{}, fmt.Errorf("%w: missing assessment", ErrInvalidResponse)
	}
	if payload.Estimate == nil {
		return model.Assessment{}, fmt.Errorf("%w: missing estimate", ErrInvalidResponse)
	}

	costs := []struct {
		value *decimal.Decimal
		name  string
	}{
		{payload.Estimate.TotalCost, "total_cost"},
		{payload.Estimate.LaborCost, "labor_cost"},
		{payload.Estimate.PartsCost, "parts_cost"},
	}
	for _, c := range costs {
		if c.value == nil {
			return model.Assessment{}, fmt.Errorf("%w: missing %s", ErrInvalidResponse, c.name)
		}
		if c.value.IsNegative() {
			return model.Assessment{}, fmt.Errorf("%w: negative %s", ErrInvalidResponse, c.name)
		}
	}

	assessment := model.Assessment{
		Text: strings.TrimSpace(*payload.Assessment),
		Estimate: model.Estimate{
			TotalCost: payload.Estimate.TotalCost.Round(2),
			LaborCost: payload.Estimate.LaborCost.Round(2),
			PartsCost: payload.Estimate.PartsCost.Round(2),
			Details:   strings.TrimSpace(payload.Estimate.Details),
			Source:    model.SourceAI,
		},
	}

	if payload.ConfidenceScore != nil {
		score := *payload.ConfidenceScore
		if math.IsNaN(score) || score < 0 || score > 100 {
			return model.Assessment{}, fmt.Errorf("%w: confidence_score %v out of range", ErrInvalidResponse, score)
		}
		rounded := int(math.Round(score))
		assessment.ConfidenceScore = &rounded
	}

	return assessment, nil
}

type shopsPayload struct {
	Shops *[]shopPayload `json:"shops"`
}

type shopPayload struct {
	Rating     *float64 `json:"rating"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	WebsiteURI string   `json:"website_uri"`
}

// parseShops turns provider text into shop suggestions or fails.
func parseShops(content string) ([]model.RepairShopSuggestion, error) {
	var payload shopsPayload
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if payload.Shops == nil {
		return nil, fmt.Errorf("%w: missing shops", ErrInvalidResponse)
	}

	shops := make([]model.RepairShopSuggestion, 0, len(*payload.Shops))
	for i, raw := range *payload.Shops {
		shop, err := validateShop(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: shop %d: %w", ErrInvalidResponse, i+1, err)
		}
		shops = append(shops, shop)
		if len(shops) == maxShopSuggestions {
			break
		}
	}
	return shops, nil
}

func validateShop(raw shopPayload) (model.RepairShopSuggestion, error) {
	shop := model.RepairShopSuggestion{
		Name:    strings.TrimSpace(raw.Name),
		Address: strings.TrimSpace(raw.Address),
	}
	if shop.Name == "" {
		return shop, errors.New("missing name")
	}
	if shop.Address == "" {
		return shop, errors.New("missing address")
	}

	if raw.Rating != nil {
		rating := *raw.Rating
		if math.IsNaN(rating) || rating < 0 || rating > 5 {
			return shop, fmt.Errorf("rating %v out of range", rating)
		}
		shop.Rating = &rating
	}

	if website := strings.TrimSpace(raw.WebsiteURI); website != "" {
		u, err := url.Parse(website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return shop, fmt.Errorf("website %q is not an absolute http(s) URL", website)
		}
		shop.WebsiteURI = website
	}

	return shop, nil
}
