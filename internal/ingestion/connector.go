// Package ingestion defines the adapter boundary: connectors produce
// normalized, validated snapshots of match facts. Recorded connectors are
// always available; live connectors are opt-in via explicit configuration.
package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Connector fetches one snapshot of match facts. Implementations must
// respect ctx cancellation; live implementations must bound every call
// with a timeout.
type Connector interface {
	Name() string
	// Live reports whether the connector performs non-recorded IO.
	Live() bool
	FetchMatchData(ctx context.Context, matchID string) (*models.Snapshot, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Connector)
)

// Register adds a connector to the registry. Later registrations with the
// same name win; intended for test overrides.
func Register(c Connector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

// ConnectorSafe returns the named connector only when policy allows it:
// recorded connectors always, live connectors only when both
// live_io_allowed and real_provider_live are set.
func ConnectorSafe(name string, live config.LiveIOConfig) (Connector, error) {
	registryMu.RLock()
	c, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("connector %q not registered", name)
	}
	if c.Live() && !(live.LiveIOAllowed && live.RealProviderLive) {
		return nil, fmt.Errorf("connector %q is live and live IO is not allowed", name)
	}
	return c, nil
}

// Names returns registered connector names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
