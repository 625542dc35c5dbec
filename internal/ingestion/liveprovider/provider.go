// Package liveprovider implements the live ingestion connector. It is only
// reachable when live IO is explicitly allowed; shadow runs default to
// recorded snapshots.
package liveprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fasterangels/shadowpipe/internal/ingestion"
	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Connector fetches live fixture snapshots from the provider HTTP API.
// Safe for concurrent use; batch runs fetch through one shared instance.
type Connector struct {
	cfg    config.LiveIOConfig
	client *http.Client

	mu      sync.Mutex // guards baseURL; also serializes mirror resolution
	baseURL string
}

// New creates the live connector. When only a mirror URL is configured the
// real base URL is resolved lazily on first fetch.
func New(cfg config.LiveIOConfig) *Connector {
	return &Connector{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

func (c *Connector) Name() string { return "live_provider" }
func (c *Connector) Live() bool   { return true }

// fixturePayload is the provider wire format. Parsing is strict: unknown
// fields or missing required values reject the payload instead of guessing.
type fixturePayload struct {
	MatchID     string  `json:"match_id"`
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	Competition string  `json:"competition"`
	KickoffUTC  string  `json:"kickoff_utc"`
	Status      string  `json:"status"`
	OddsHome    float64 `json:"odds_home"`
	OddsDraw    float64 `json:"odds_draw"`
	OddsAway    float64 `json:"odds_away"`
	OddsOver25  float64 `json:"odds_over_25,omitempty"`
	OddsUnder25 float64 `json:"odds_under_25,omitempty"`
	OddsGG      float64 `json:"odds_gg,omitempty"`
	OddsNG      float64 `json:"odds_ng,omitempty"`
}

// FetchMatchData fetches and validates one live snapshot. Every call is
// bounded by the configured fetch timeout.
func (c *Connector) FetchMatchData(ctx context.Context, matchID string) (*models.Snapshot, error) {
	base, err := c.resolveBaseURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("live provider base URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/fixtures/%s", base, url.PathEscape(matchID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build fixture request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fixture %s: %w", matchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture %s: provider returned status %d", matchID, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	var payload fixturePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", matchID, err)
	}

	snapshot, err := payloadToSnapshot(&payload, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := ingestion.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func payloadToSnapshot(p *fixturePayload, observedAt time.Time) (*models.Snapshot, error) {
	kickoff, err := time.Parse(time.RFC3339, p.KickoffUTC)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: invalid kickoff_utc %q: %w", p.MatchID, p.KickoffUTC, err)
	}
	s := &models.Snapshot{
		SourceRef:     "live_provider",
		MatchID:       p.MatchID,
		HomeTeam:      p.HomeTeam,
		AwayTeam:      p.AwayTeam,
		Competition:   p.Competition,
		KickoffUTC:    kickoff.UTC(),
		ObservedAtUTC: observedAt,
		Status:        p.Status,
		Odds1X2:       models.Odds1X2{Home: p.OddsHome, Draw: p.OddsDraw, Away: p.OddsAway},
		Live:          true,
	}
	if p.OddsOver25 > 0 && p.OddsUnder25 > 0 {
		s.OddsOU25 = &models.OddsOU25{Over: p.OddsOver25, Under: p.OddsUnder25}
	}
	if p.OddsGG > 0 && p.OddsNG > 0 {
		s.OddsGGNG = &models.OddsGGNG{GG: p.OddsGG, NG: p.OddsNG}
	}
	return s, nil
}

// resolveBaseURL returns the configured base URL, resolving the mirror once
// when only a mirror is configured. Concurrent fetchers resolve at most one
// mirror; the rest wait and reuse the result.
func (c *Connector) resolveBaseURL(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.baseURL != "" {
		return c.baseURL, nil
	}
	if c.cfg.ProviderBaseURL != "" {
		c.baseURL = c.cfg.ProviderBaseURL
		return c.baseURL, nil
	}
	if c.cfg.MirrorURL == "" {
		return "", fmt.Errorf("neither provider_base_url nor mirror_url configured")
	}
	resolved, err := resolveMirror(ctx, c.cfg.MirrorURL, c.cfg.FetchTimeout)
	if err != nil {
		return "", err
	}
	c.baseURL = resolved
	return c.baseURL, nil
}
