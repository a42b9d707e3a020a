package engine

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/claimdesk/internal/model"
)

// MockGateway is a test implementation of the Gateway interface.
// It returns deterministic assessments based on the accident description.
type MockGateway struct {
	AnalyzeErr   error
	ShopsErr     error
	Assessment   *model.Assessment
	Shops        []model.RepairShopSuggestion
	analyzeCalls []model.DamageRequest
	shopCalls    []string
	mu           sync.Mutex
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// AnalyzeDamage returns the configured assessment, or one derived from keywords
// in the description.
func (m *MockGateway) AnalyzeDamage(_ context.Context, req model.DamageRequest) (model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.analyzeCalls = append(m.analyzeCalls, req)
	if m.AnalyzeErr != nil {
		return model.Assessment{}, m.AnalyzeErr
	}
	if m.Assessment != nil {
		return *m.Assessment, nil
	}

	description := strings.ToLower(req.Description)
	var total int64
	var confidence int
	switch {
	case strings.Contains(description, "total") || strings.Contains(description, "rollover"):
		total, confidence = 9500, 60
	case strings.Contains(description, "rear") || strings.Contains(description, "bumper"):
		total, confidence = 1200, 85
	case strings.Contains(description, "scratch") || strings.Contains(description, "dent"):
		total, confidence = 450, 90
	default:
		total, confidence = 2000, 70
	}

	return model.Assessment{
		Text: "Visible damage consistent with the description on the " + req.VehicleInfo +
			". Reviewed " + pluralImages(len(req.Images)) + ".",
		Estimate:        model.NewEstimate(decimal.NewFromInt(total), "Mock assessment", model.SourceAI),
		ConfidenceScore: &confidence,
	}, nil
}

// FindRepairShops returns the configured shops, or two shops named after the location.
func (m *MockGateway) FindRepairShops(_ context.Context, location string) ([]model.RepairShopSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shopCalls = append(m.shopCalls, location)
	if m.ShopsErr != nil {
		return nil, m.ShopsErr
	}
	if m.Shops != nil {
		return append([]model.RepairShopSuggestion{}, m.Shops...), nil
	}

	area := strings.TrimSpace(location)
	if area == "" {
		area = "Downtown"
	}
	high, mid := 4.7, 4.2
	return []model.RepairShopSuggestion{
		{Name: area + " Collision Center", Address: "100 Main St, " + area, Rating: &high, WebsiteURI: "https://collision.example.com"},
		{Name: area + " Auto Body", Address: "250 Oak Ave, " + area, Rating: &mid},
	}, nil
}

// AnalyzeCalls returns the damage requests received so far.
func (m *MockGateway) AnalyzeCalls() []model.DamageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.DamageRequest(nil), m.analyzeCalls...)
}

// ShopCalls returns the locations searched so far.
func (m *MockGateway) ShopCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.shopCalls...)
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return strconv.Itoa(n) + " images"
}
