package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claimdesk/internal/model"
)

func TestSuggestionCache(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	cache := newSuggestionCache(10 * time.Minute)
	defer cache.Close()
	cache.now = func() time.Time { return now }

	rating := 4.1
	cache.set("Springfield,  IL", []model.RepairShopSuggestion{{Name: "Joe's", Address: "1 Main", Rating: &rating}})

	got, ok := cache.get("springfield, il")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Joe's", got[0].Name)

	rating = 1
	got, _ = cache.get("Springfield, IL")
	assert.InDelta(t, 4.1, *got[0].Rating, 0.0001, "cache must hold its own copy")

	_, ok = cache.get("Shelbyville")
	assert.False(t, ok)

	now = now.Add(11 * time.Minute)
	_, ok = cache.get("Springfield, IL")
	assert.False(t, ok, "expired entries are not served")
	assert.Equal(t, 1, cache.size())

	cache.evictExpired()
	assert.Zero(t, cache.size())
}

func TestSuggestionCache_DefaultTTLAndClose(t *testing.T) {
	cache := newSuggestionCache(0)
	assert.Equal(t, defaultCacheTTL, cache.ttl)

	cache.Close()
	cache.Close()
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "new york, ny", locationKey("  New   York,\tNY "))
	assert.Equal(t, "", locationKey("   "))
}
