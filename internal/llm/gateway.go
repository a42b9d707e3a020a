package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Veraticus/claimdesk/internal/model"
)

// ErrNoClient is reported in logs when the gateway has no provider configured.
var ErrNoClient = errors.New("no AI provider configured")

// Gateway adapts a provider Client to the workflow engine. Each call makes at
// most one provider attempt and never returns an error.
type Gateway struct {
	client  Client
	cache   *suggestionCache
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewGateway wraps client. A nil client yields a gateway that always degrades,
// which is how missing credentials surface.
func NewGateway(client Client, cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client:  client,
		cache:   newSuggestionCache(cfg.CacheTTL),
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
	}
}

// AnalyzeDamage assesses damage photos. On any failure it returns the degraded
// manual review assessment instead of an error.
func (g *Gateway) AnalyzeDamage(ctx context.Context, req model.DamageRequest) (model.Assessment, error) {
	assessment, err := g.analyze(ctx, req)
	if err != nil {
		g.logger.Warn("Damage analysis degraded to manual review",
			"vehicle", req.VehicleInfo,
			"images", len(req.Images),
			"error", err)
		return model.DegradedAssessment(), nil
	}

	if !assessment.Estimate.IsBalanced() {
		g.logger.Warn("AI estimate labor and parts do not sum to total",
			"total", assessment.Estimate.TotalCost.String(),
			"labor", assessment.Estimate.LaborCost.String(),
			"parts", assessment.Estimate.PartsCost.String())
	}
	return assessment, nil
}

func (g *Gateway) analyze(ctx context.Context, req model.DamageRequest) (model.Assessment, error) {
	if g.client == nil {
		return model.Assessment{}, ErrNoClient
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return model.Assessment{}, fmt.Errorf("rate limiter: %w", err)
	}

	content, err := g.client.AssessDamage(ctx, buildAssessmentPrompt(req), req.Images)
	if err != nil {
		return model.Assessment{}, err
	}
	return parseAssessment(content)
}

// FindRepairShops suggests shops near location. On any failure it returns an
// empty slice instead of an error.
func (g *Gateway) FindRepairShops(ctx context.Context, location string) ([]model.RepairShopSuggestion, error) {
	if strings.TrimSpace(location) == "" {
		return []model.RepairShopSuggestion{}, nil
	}

	if cached, ok := g.cache.get(location); ok {
		g.logger.Debug("Using cached shop suggestions", "location", location, "count", len(cached))
		return cached, nil
	}

	shops, err := g.searchShops(ctx, location)
	if err != nil {
		g.logger.Warn("Repair shop search returned no suggestions",
			"location", location,
			"error", err)
		return []model.RepairShopSuggestion{}, nil
	}

	g.cache.set(location, shops)
	return shops, nil
}

func (g *Gateway) searchShops(ctx context.Context, location string) ([]model.RepairShopSuggestion, error) {
	if g.client == nil {
		return nil, ErrNoClient
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	content, err := g.client.SearchShops(ctx, buildShopPrompt(location))
	if err != nil {
		return nil, err
	}
	return parseShops(content)
}

// Close releases the provider client and background resources.
func (g *Gateway) Close() error {
	g.cache.Close()
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
