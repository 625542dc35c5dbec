package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Ensure PostgresReferenceStorage implements ReferenceStore
var _ ReferenceStore = (*PostgresReferenceStorage)(nil)

// PostgresReferenceStorage stores canonical reference data (competitions,
// teams, aliases, matches) in PostgreSQL.
type PostgresReferenceStorage struct {
	db *sql.DB
}

// NewPostgresReferenceStorage opens a PostgreSQL connection and ensures the
// reference schema exists.
func NewPostgresReferenceStorage(cfg *config.PostgresConfig) (*PostgresReferenceStorage, error) {
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

	s := &PostgresReferenceStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL reference storage initialized successfully")
	return s, nil
}

func (s *PostgresReferenceStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS competitions (
		id VARCHAR(100) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		country VARCHAR(100) NOT NULL,
		tier INT NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS teams (
		id VARCHAR(100) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		country VARCHAR(100) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS team_aliases (
		team_id VARCHAR(100) NOT NULL REFERENCES teams(id),
		alias_norm VARCHAR(200) NOT NULL,
		PRIMARY KEY (team_id, alias_norm)
	);

	CREATE TABLE IF NOT EXISTS matches (
		id VARCHAR(100) PRIMARY KEY,
		competition_id VARCHAR(100) NOT NULL REFERENCES competitions(id),
		home_team_id VARCHAR(100) NOT NULL REFERENCES teams(id),
		away_team_id VARCHAR(100) NOT NULL REFERENCES teams(id),
		kickoff_utc TIMESTAMP NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'SCHEDULED'
	);

	CREATE INDEX IF NOT EXISTS idx_team_aliases_alias_norm ON team_aliases(alias_norm);
	CREATE INDEX IF NOT EXISTS idx_matches_kickoff ON matches(kickoff_utc);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// UpsertCompetition inserts the competition if absent.
func (s *PostgresReferenceStorage) UpsertCompetition(ctx context.Context, c models.Competition) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO competitions (id, name, country, tier) VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO NOTHING
	`, c.ID, c.Name, c.Country, c.Tier)
	if err != nil {
		return false, fmt.Errorf("failed to upsert competition %s: %w", c.ID, err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// UpsertTeam inserts the team if absent.
func (s *PostgresReferenceStorage) UpsertTeam(ctx context.Context, t models.Team) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO teams (id, name, country) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO NOTHING
	`, t.ID, t.Name, t.Country)
	if err != nil {
		return false, fmt.Errorf("failed to upsert team %s: %w", t.ID, err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// UpsertAlias inserts the alias if absent, keyed by (team_id, alias_norm).
func (s *PostgresReferenceStorage) UpsertAlias(ctx context.Context, a models.TeamAlias) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO team_aliases (team_id, alias_norm) VALUES ($1, $2)
	ON CONFLICT (team_id, alias_norm) DO NOTHING
	`, a.TeamID, a.AliasNorm)
	if err != nil {
		return false, fmt.Errorf("failed to upsert alias %s/%s: %w", a.TeamID, a.AliasNorm, err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// UpsertMatch inserts the match if absent.
func (s *PostgresReferenceStorage) UpsertMatch(ctx context.Context, m models.Match) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO matches (id, competition_id, home_team_id, away_team_id, kickoff_utc, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
	`, m.ID, m.CompetitionID, m.HomeTeamID, m.AwayTeamID, m.KickoffUTC, m.Status)
	if err != nil {
		return false, fmt.Errorf("failed to upsert match %s: %w", m.ID, err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// FindTeamsByAlias returns all teams whose alias set contains aliasNorm.
func (s *PostgresReferenceStorage) FindTeamsByAlias(ctx context.Context, aliasNorm string) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT t.id, t.name, t.country
	FROM teams t
	JOIN team_aliases a ON a.team_id = t.id
	WHERE a.alias_norm = $1
	ORDER BY t.id
	`, aliasNorm)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams by alias: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Country); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// FindMatches returns matches for the team pair (order-insensitive) inside
// the kickoff window [from, to).
func (s *PostgresReferenceStorage) FindMatches(ctx context.Context, teamA, teamB string, from, to time.Time) ([]models.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, competition_id, home_team_id, away_team_id, kickoff_utc, status
	FROM matches
	WHERE kickoff_utc >= $3 AND kickoff_utc < $4
	  AND ((home_team_id = $1 AND away_team_id = $2) OR (home_team_id = $2 AND away_team_id = $1))
	ORDER BY id
	`, teamA, teamB, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.CompetitionID, &m.HomeTeamID, &m.AwayTeamID, &m.KickoffUTC, &m.Status); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.KickoffUTC = m.KickoffUTC.UTC()
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch returns the match by id, or nil when absent.
func (s *PostgresReferenceStorage) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var m models.Match
	err := s.db.QueryRowContext(ctx, `
	SELECT id, competition_id, home_team_id, away_team_id, kickoff_utc, status
	FROM matches WHERE id = $1
	`, id).Scan(&m.ID, &m.CompetitionID, &m.HomeTeamID, &m.AwayTeamID, &m.KickoffUTC, &m.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	m.KickoffUTC = m.KickoffUTC.UTC()
	return &m, nil
}

// Close closes the database connection.
func (s *PostgresReferenceStorage) Close() error {
	return s.db.Close()
}
