package storage

import (
	"context"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// ReferenceStore is the canonical reference data store. Read-only from the
// pipeline's perspective; upserts happen only via the seed process.
type ReferenceStore interface {
	// UpsertCompetition inserts the competition if absent. Idempotent.
	UpsertCompetition(ctx context.Context, c models.Competition) (inserted bool, err error)

	// UpsertTeam inserts the team if absent. Idempotent.
	UpsertTeam(ctx context.Context, t models.Team) (inserted bool, err error)

	// UpsertAlias inserts the alias if absent, keyed by (team_id, alias_norm).
	UpsertAlias(ctx context.Context, a models.TeamAlias) (inserted bool, err error)

	// UpsertMatch inserts the match if absent. Idempotent.
	UpsertMatch(ctx context.Context, m models.Match) (inserted bool, err error)

	// FindTeamsByAlias returns all teams whose alias set contains aliasNorm.
	FindTeamsByAlias(ctx context.Context, aliasNorm string) ([]models.Team, error)

	// FindMatches returns matches for the team pair (order-insensitive)
	// with kickoff inside [from, to).
	FindMatches(ctx context.Context, teamA, teamB string, from, to time.Time) ([]models.Match, error)

	// GetMatch returns the match by id, or nil when absent.
	GetMatch(ctx context.Context, id string) (*models.Match, error)

	// Close releases the underlying connection.
	Close() error
}

// OutcomeStore records realized outcomes of past decisions and serves the
// KPI aggregation reads.
type OutcomeStore interface {
	// RecordOutcome appends one realized decision outcome.
	RecordOutcome(ctx context.Context, o models.DecisionOutcome) error

	// ListOutcomes returns outcomes evaluated inside [from, to).
	ListOutcomes(ctx context.Context, from, to time.Time) ([]models.DecisionOutcome, error)

	// LastDecisions returns the most recent decision set recorded for a
	// match, or nil when the match has no prior run. Used by the stability
	// guardrail only.
	LastDecisions(ctx context.Context, matchID string) ([]models.MarketDecision, error)

	// RecordDecisions stores the decision set of a run for later guardrail
	// comparison.
	RecordDecisions(ctx context.Context, matchID string, decisions []models.MarketDecision) error

	Close() error
}
