package llm

import (
	"context"

	"github.com/Veraticus/claimdesk/internal/model"
)

// Client defines the interface for AI providers. Implementations return the
// provider's raw text; the Gateway owns parsing and validation.
type Client interface {
	// AssessDamage sends the prompt together with the damage photos.
	AssessDamage(ctx context.Context, prompt string, images []model.Image) (string, error)
	// SearchShops asks for repair shops near a location.
	SearchShops(ctx context.Context, prompt string) (string, error)
	Close() error
}
