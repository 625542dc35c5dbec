package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Ensure PostgresOutcomeStorage implements OutcomeStore
var _ OutcomeStore = (*PostgresOutcomeStorage)(nil)

// PostgresOutcomeStorage stores realized decision outcomes and per-match
// decision history for the stability guardrail.
type PostgresOutcomeStorage struct {
	db *sql.DB
}

// NewPostgresOutcomeStorage opens a PostgreSQL connection and ensures the
// outcome schema exists.
func NewPostgresOutcomeStorage(cfg *config.PostgresConfig) (*PostgresOutcomeStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresOutcomeStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL outcome storage initialized successfully")
	return s, nil
}

func (s *PostgresOutcomeStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS decision_outcomes (
		id SERIAL PRIMARY KEY,
		match_id VARCHAR(100) NOT NULL,
		market VARCHAR(20) NOT NULL,
		pick VARCHAR(50) NOT NULL,
		hit BOOLEAN NOT NULL,
		evaluated_at_utc TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decision_history (
		match_id VARCHAR(100) PRIMARY KEY,
		decisions JSONB NOT NULL,
		recorded_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_decision_outcomes_evaluated_at ON decision_outcomes(evaluated_at_utc);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// RecordOutcome appends one realized decision outcome.
func (s *PostgresOutcomeStorage) RecordOutcome(ctx context.Context, o models.DecisionOutcome) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO decision_outcomes (match_id, market, pick, hit, evaluated_at_utc)
	VALUES ($1, $2, $3, $4, $5)
	`, o.MatchID, string(o.Market), o.Pick, o.Hit, o.EvaluatedAtUTC)
	if err != nil {
		return fmt.Errorf("failed to record outcome for match %s: %w", o.MatchID, err)
	}
	return nil
}

// ListOutcomes returns outcomes evaluated inside [from, to).
func (s *PostgresOutcomeStorage) ListOutcomes(ctx context.Context, from, to time.Time) ([]models.DecisionOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT match_id, market, pick, hit, evaluated_at_utc
	FROM decision_outcomes
	WHERE evaluated_at_utc >= $1 AND evaluated_at_utc < $2
	ORDER BY evaluated_at_utc, match_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.DecisionOutcome
	for rows.Next() {
		var o models.DecisionOutcome
		var market string
		if err := rows.Scan(&o.MatchID, &market, &o.Pick, &o.Hit, &o.EvaluatedAtUTC); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Market = models.Market(market)
		o.EvaluatedAtUTC = o.EvaluatedAtUTC.UTC()
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// LastDecisions returns the most recent decision set recorded for a match.
func (s *PostgresOutcomeStorage) LastDecisions(ctx context.Context, matchID string) ([]models.MarketDecision, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
	SELECT decisions FROM decision_history WHERE match_id = $1
	`, matchID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision history for match %s: %w", matchID, err)
	}
	var decisions []models.MarketDecision
	if err := json.Unmarshal(raw, &decisions); err != nil {
		return nil, fmt.Errorf("failed to decode decision history for match %s: %w", matchID, err)
	}
	return decisions, nil
}

// RecordDecisions stores the decision set of a run, replacing any prior set
// for the same match.
func (s *PostgresOutcomeStorage) RecordDecisions(ctx context.Context, matchID string, decisions []models.MarketDecision) error {
	raw, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("failed to encode decisions for match %s: %w", matchID, err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO decision_history (match_id, decisions, recorded_at) VALUES ($1, $2, NOW())
	ON CONFLICT (match_id) DO UPDATE SET decisions = EXCLUDED.decisions, recorded_at = NOW()
	`, matchID, raw)
	if err != nil {
		return fmt.Errorf("failed to record decisions for match %s: %w", matchID, err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresOutcomeStorage) Close() error {
	return s.db.Close()
}
