package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Ensure in-memory stores implement the interfaces
var (
	_ ReferenceStore = (*MemoryReferenceStorage)(nil)
	_ OutcomeStore   = (*MemoryOutcomeStorage)(nil)
)

// MemoryReferenceStorage is an in-memory ReferenceStore for tests and
// recorded-fixture runs without a database.
type MemoryReferenceStorage struct {
	mu           sync.RWMutex
	competitions map[string]models.Competition
	teams        map[string]models.Team
	aliases      map[string]map[string]struct{} // team_id -> alias_norm set
	matches      map[string]models.Match
}

// NewMemoryReferenceStorage creates an empty in-memory reference store.
func NewMemoryReferenceStorage() *MemoryReferenceStorage {
	return &MemoryReferenceStorage{
		competitions: make(map[string]models.Competition),
		teams:        make(map[string]models.Team),
		aliases:      make(map[string]map[string]struct{}),
		matches:      make(map[string]models.Match),
	}
}

func (s *MemoryReferenceStorage) UpsertCompetition(_ context.Context, c models.Competition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.competitions[c.ID]; ok {
		return false, nil
	}
	s.competitions[c.ID] = c
	return true, nil
}

func (s *MemoryReferenceStorage) UpsertTeam(_ context.Context, t models.Team) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; ok {
		return false, nil
	}
	s.teams[t.ID] = t
	return true, nil
}

func (s *MemoryReferenceStorage) UpsertAlias(_ context.Context, a models.TeamAlias) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.aliases[a.TeamID]
	if !ok {
		set = make(map[string]struct{})
		s.aliases[a.TeamID] = set
	}
	if _, ok := set[a.AliasNorm]; ok {
		return false, nil
	}
	set[a.AliasNorm] = struct{}{}
	return true, nil
}

func (s *MemoryReferenceStorage) UpsertMatch(_ context.Context, m models.Match) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; ok {
		return false, nil
	}
	s.matches[m.ID] = m
	return true, nil
}

func (s *MemoryReferenceStorage) FindTeamsByAlias(_ context.Context, aliasNorm string) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teams []models.Team
	for teamID, set := range s.aliases {
		if _, ok := set[aliasNorm]; ok {
			if t, ok := s.teams[teamID]; ok {
				teams = append(teams, t)
			}
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s *MemoryReferenceStorage) FindMatches(_ context.Context, teamA, teamB string, from, to time.Time) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []models.Match
	for _, m := range s.matches {
		pair := (m.HomeTeamID == teamA && m.AwayTeamID == teamB) || (m.HomeTeamID == teamB && m.AwayTeamID == teamA)
		if !pair {
			continue
		}
		if m.KickoffUTC.Before(from) || !m.KickoffUTC.Before(to) {
			continue
		}
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (s *MemoryReferenceStorage) GetMatch(_ context.Context, id string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemoryReferenceStorage) Close() error { return nil }

// MemoryOutcomeStorage is an in-memory OutcomeStore for tests and
// database-less runs.
type MemoryOutcomeStorage struct {
	mu       sync.RWMutex
	outcomes []models.DecisionOutcome
	history  map[string][]models.MarketDecision
}

// NewMemoryOutcomeStorage creates an empty in-memory outcome store.
func NewMemoryOutcomeStorage() *MemoryOutcomeStorage {
	return &MemoryOutcomeStorage{history: make(map[string][]models.MarketDecision)}
}

func (s *MemoryOutcomeStorage) RecordOutcome(_ context.Context, o models.DecisionOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
	return nil
}

func (s *MemoryOutcomeStorage) ListOutcomes(_ context.Context, from, to time.Time) ([]models.DecisionOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DecisionOutcome
	for _, o := range s.outcomes {
		if o.EvaluatedAtUTC.Before(from) || !o.EvaluatedAtUTC.Before(to) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EvaluatedAtUTC.Equal(out[j].EvaluatedAtUTC) {
			return out[i].EvaluatedAtUTC.Before(out[j].EvaluatedAtUTC)
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

func (s *MemoryOutcomeStorage) LastDecisions(_ context.Context, matchID string) ([]models.MarketDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history[matchID], nil
}

func (s *MemoryOutcomeStorage) RecordDecisions(_ context.Context, matchID string, decisions []models.MarketDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]models.MarketDecision, len(decisions))
	copy(cp, decisions)
	s.history[matchID] = cp
	return nil
}

func (s *MemoryOutcomeStorage) Close() error { return nil }
