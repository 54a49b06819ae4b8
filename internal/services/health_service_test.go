package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"licensed/internal/license"
	"licensed/internal/store"
)

func TestHealthCheckBanner(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewHealthService(store.NewMemoryStore(), logger)

	resp := svc.HealthCheck(context.Background())
	assert.Equal(t, "Unseen Elementz License Server v1.0.0", resp.Message)
	assert.Equal(t, "online", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadinessCheckCountsRecords(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seed := license.Snapshot{
		"K1": {Active: true, Seats: 1},
		"K2": {Active: false, Seats: 1},
	}
	svc := NewHealthService(store.NewMemoryStoreWith(seed), logger)

	resp := svc.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, 2, resp.Records)
}

func TestLivenessCheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewHealthService(store.NewMemoryStore(), logger)

	resp := svc.LivenessCheck(context.Background())
	assert.Equal(t, "alive", resp.Status)
}
