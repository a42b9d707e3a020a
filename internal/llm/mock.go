package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/claimdesk/internal/model"
)

// MockClient is an offline provider. It answers with deterministic JSON derived
// from keywords in the prompt, so the full parsing path is exercised.
type MockClient struct {
	AssessErr   error
	SearchErr   error
	assessCalls int
	searchCalls int
	mu          sync.Mutex
}

// NewMockClient creates a new mock provider.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// AssessDamage returns an assessment priced by the severity words in the prompt.
func (m *MockClient) AssessDamage(_ context.Context, prompt string, images []model.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessCalls++
	if m.AssessErr != nil {
		return "", m.AssessErr
	}

	lower := strings.ToLower(prompt)
	total, confidence, summary := 2000.0, 70, "Moderate body damage"
	switch {
	case strings.Contains(lower, "rollover") || strings.Contains(lower, "totaled"):
		total, confidence, summary = 9500, 60, "Severe structural damage, possible total loss"
	case strings.Contains(lower, "rear") || strings.Contains(lower, "bumper"):
		total, confidence, summary = 1200, 85, "Rear bumper cover cracked, minor trunk lid deformation"
	case strings.Contains(lower, "scratch") || strings.Contains(lower, "dent"):
		total, confidence, summary = 450, 90, "Surface scratches and a shallow door dent"
	}

	labor := total * 0.6
	payload := map[string]any{
		"assessment": fmt.Sprintf("%s. Reviewed %d photo(s).", summary, len(images)),
		"estimate": map[string]any{
			"total_cost": total,
			"labor_cost": labor,
			"parts_cost": total - labor,
			"details":    "Mock appraisal",
		},
		"confidence_score": confidence,
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(out) + "\n```", nil
}

// SearchShops returns two shops named after the location in the prompt.
func (m *MockClient) SearchShops(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if m.SearchErr != nil {
		return "", m.SearchErr
	}

	area := "Downtown"
	if _, after, ok := strings.Cut(prompt, "near: "); ok {
		if line, _, _ := strings.Cut(after, "\n"); strings.TrimSpace(line) != "" {
			area = strings.TrimSpace(line)
		}
	}

	payload := map[string]any{
		"shops": []map[string]any{
			{"name": area + " Collision Center", "address": "100 Main St, " + area, "rating": 4.7, "website_uri": "https://collision.example.com"},
			{"name": area + " Auto Body", "address": "250 Oak Ave, " + area, "rating": 4.2},
		},
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Calls reports how many assessment and search requests were made.
func (m *MockClient) Calls() (assess, search int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assessCalls, m.searchCalls
}

// Close implements Client.
func (m *MockClient) Close() error {
	return nil
}
