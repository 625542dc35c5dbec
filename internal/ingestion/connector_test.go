package ingestion

import (
	"context"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

type fakeLiveConnector struct{}

func (fakeLiveConnector) Name() string { return "safe-test-live" }
func (fakeLiveConnector) Live() bool   { return true }
func (fakeLiveConnector) FetchMatchData(context.Context, string) (*models.Snapshot, error) {
	return nil, nil
}

func configLive(allowed, real bool) config.LiveIOConfig {
	return config.LiveIOConfig{LiveIOAllowed: allowed, RealProviderLive: real}
}
