package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/config"
	"github.com/Veraticus/claimdesk/internal/llm"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/storage"
)

// initStorage opens the configured claim store. Both backends are in-memory
// and discarded on Close.
func initStorage(ctx context.Context) (service.Storage, error) {
	backend, err := config.StorageBackend(viper.GetViper())
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStorage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		return store, nil
	default:
		return storage.NewMemoryStorage(), nil
	}
}

// createGateway builds the AI gateway from configuration. Missing credentials
// or a client that cannot be built are not fatal: the gateway then degrades
// every assessment to manual review.
func createGateway(ctx context.Context) (*llm.Gateway, error) {
	cfg, err := config.LoadLLMConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "gateway", "provider", cfg.Provider)

	if !config.HasCredentials(cfg) {
		logger.Warn("No AI provider credentials configured; assessments will require manual review")
		return llm.NewGateway(nil, cfg, logger), nil
	}

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		common.LogError(logger, err, "Failed to create AI client; assessments will require manual review", nil)
		return llm.NewGateway(nil, cfg, logger), nil
	}

	return llm.NewGateway(client, cfg, logger), nil
}

// loadImages reads damage photos from disk, sniffing each file's MIME type.
func loadImages(paths []string) ([]model.Image, error) {
	images := make([]model.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(config.ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("%s is not an image (detected %s)", path, mimeType)
		}
		images = append(images, model.Image{MIMEType: mimeType, Data: data})
	}
	return images, nil
}

func closeQuietly(name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		slog.Error("Failed to close "+name, "error", err)
	}
}
