package llm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimdesk/internal/model"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}

func TestParseAssessment(t *testing.T) {
	content := "```json\n" + `{
		"assessment": "  Rear bumper cracked  ",
		"estimate": {"total_cost": 1200, "labor_cost": 720.004, "parts_cost": 480, "details": "Bumper cover and paint"},
		"confidence_score": 84.6
	}` + "\n```"

	got, err := parseAssessment(content)
	require.NoError(t, err)

	assert.Equal(t, "Rear bumper cracked", got.Text)
	assert.True(t, got.Estimate.TotalCost.Equal(decimal.NewFromInt(1200)))
	assert.True(t, got.Estimate.LaborCost.Equal(decimal.NewFromInt(720)))
	assert.Equal(t, "Bumper cover and paint", got.Estimate.Details)
	assert.Equal(t, model.SourceAI, got.Estimate.Source)
	require.NotNil(t, got.ConfidenceScore)
	assert.Equal(t, 85, *got.ConfidenceScore)
	assert.False(t, got.Degraded)
}

func TestParseAssessment_OptionalConfidence(t *testing.T) {
	got, err := parseAssessment(`{"assessment":"Dent","estimate":{"total_cost":"450.00","labor_cost":"270","parts_cost":"180","details":""}}`)
	require.NoError(t, err)
	assert.Nil(t, got.ConfidenceScore)
	assert.True(t, got.Estimate.IsBalanced())
}

func TestParseAssessment_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "The car looks bad."},
		{"empty object", `{}`},
		{"blank assessment", `{"assessment":" ","estimate":{"total_cost":1,"labor_cost":1,"parts_cost":0}}`},
		{"missing estimate", `{"assessment":"Dent"}`},
		{"missing total", `{"assessment":"Dent","estimate":{"labor_cost":1,"parts_cost":0}}`},
		{"null labor", `{"assessment":"Dent","estimate":{"total_cost":1,"labor_cost":null,"parts_cost":0}}`},
		{"negative parts", `{"assessment":"Dent","estimate":{"total_cost":1,"labor_cost":2,"parts_cost":-1}}`},
		{"cost as word", `{"assessment":"Dent","estimate":{"total_cost":"lots","labor_cost":1,"parts_cost":0}}`},
		{"confidence too high", `{"assessment":"Dent","estimate":{"total_cost":1,"labor_cost":1,"parts_cost":0},"confidence_score":140}`},
		{"confidence negative", `{"assessment":"Dent","estimate":{"total_cost":1,"labor_cost":1,"parts_cost":0},"confidence_score":-3}`},
		{"wrong shape", `{"assessment":["Dent"],"estimate":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAssessment(tt.content)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestParseShops(t *testing.T) {
	got, err := parseShops(`{"shops":[
		{"name":" Main St Body ","address":"1 Main St","rating":4.5,"website_uri":"https://mainst.example.com"},
		{"name":"Oak Collision","address":"2 Oak Ave"}
	]}`)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Main St Body", got[0].Name)
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.5, *got[0].Rating, 0.0001)
	assert.Equal(t, "https://mainst.example.com", got[0].WebsiteURI)
	assert.Nil(t, got[1].Rating)
	assert.Empty(t, got[1].WebsiteURI)
}

func TestParseShops_EmptyAndCapped(t *testing.T) {
	empty, err := parseShops(`{"shops":[]}`)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	many, err := parseShops(`{"shops":[
		{"name":"A","address":"1"},{"name":"B","address":"2"},{"name":"C","address":"3"},
		{"name":"D","address":"4"},{"name":"E","address":"5"},{"name":"F","address":"6"}
	]}`)
	require.NoError(t, err)
	assert.Len(t, many, maxShopSuggestions)
}

func TestParseShops_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "Try Joe's Garage."},
		{"missing shops", `{"results":[]}`},
		{"missing name", `{"shops":[{"address":"1 Main"}]}`},
		{"missing address", `{"shops":[{"name":"Joe's"}]}`},
		{"rating above five", `{"shops":[{"name":"Joe's","address":"1 Main","rating":7}]}`},
		{"relative website", `{"shops":[{"name":"Joe's","address":"1 Main","website_uri":"joes.example.com"}]}`},
		{"ftp website", `{"shops":[{"name":"Joe's","address":"1 Main","website_uri":"ftp://joes.example.com"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseShops(tt.content)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestBuildPrompts(t *testing.T) {
	prompt := buildAssessmentPrompt(model.DamageRequest{
		Description: "Hit a pole",
		VehicleInfo: "2019 Honda Civic",
		Images:      []model.Image{{MIMEType: "image/png", Data: []byte{1}}},
	})
	assert.Contains(t, prompt, "Vehicle: 2019 Honda Civic")
	assert.Contains(t, prompt, "Accident description: Hit a pole")
	assert.Contains(t, prompt, "Photos attached: 1")
	assert.Contains(t, prompt, `"confidence_score"`)

	shops := buildShopPrompt("Springfield, IL")
	assert.Contains(t, shops, "near: Springfield, IL\n")
	assert.Contains(t, shops, `"website_uri"`)
}
