// Package resolver maps loosely specified match references (team names plus
// a kickoff window) onto canonical match identities. Ambiguity and absence
// are first-class outcomes, never errors.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

const defaultWindowHours = 72

// MatchResolution is the total outcome of a resolution attempt. Exactly one
// of RESOLVED, AMBIGUOUS or NOT_FOUND.
type MatchResolution struct {
	Status  models.ResolverStatus
	MatchID string
	Notes   []string
}

// Resolver resolves match references against a reference store. Pure read;
// no side effects.
type Resolver struct {
	store storage.ReferenceStore
}

// New creates a resolver over the given reference store.
func New(store storage.ReferenceStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps ref to a canonical match id. Team texts are normalized with
// the same function used to seed team aliases; candidates are matches whose
// kickoff falls in the window and whose team pair matches order-insensitively.
func (r *Resolver) Resolve(ctx context.Context, ref models.MatchRef) MatchResolution {
	var notes []string

	homeTeams, homeNotes := r.resolveTeam(ctx, ref.HomeText)
	for _, n := range homeNotes {
		notes = append(notes, "HOME_"+n)
	}
	awayTeams, awayNotes := r.resolveTeam(ctx, ref.AwayText)
	for _, n := range awayNotes {
		notes = append(notes, "AWAY_"+n)
	}

	if len(homeTeams) > 1 || len(awayTeams) > 1 {
		return MatchResolution{Status: models.ResolverAmbiguous, Notes: notes}
	}
	if len(homeTeams) == 0 || len(awayTeams) == 0 {
		return MatchResolution{Status: models.ResolverNotFound, Notes: notes}
	}

	from, to := kickoffWindow(ref, &notes)

	candidates, err := r.store.FindMatches(ctx, homeTeams[0].ID, awayTeams[0].ID, from, to)
	if err != nil {
		// Store failures surface as NOT_FOUND with a diagnostic note so the
		// contract stays total.
		notes = append(notes, fmt.Sprintf("STORE_ERROR (%v)", err))
		return MatchResolution{Status: models.ResolverNotFound, Notes: notes}
	}

	if ref.CompetitionID != "" {
		filtered := candidates[:0]
		for _, m := range candidates {
			if m.CompetitionID == ref.CompetitionID {
				filtered = append(filtered, m)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		notes = append(notes, "NO_MATCH_IN_WINDOW")
		return MatchResolution{Status: models.ResolverNotFound, Notes: notes}
	case 1:
		return MatchResolution{Status: models.ResolverResolved, MatchID: candidates[0].ID, Notes: notes}
	default:
		notes = append(notes, fmt.Sprintf("MULTIPLE_MATCHES_IN_WINDOW (%d matches)", len(candidates)))
		for _, m := range candidates {
			notes = append(notes, fmt.Sprintf("CANDIDATE_MATCH %s (kickoff %s)", m.ID, m.KickoffUTC.UTC().Format(time.RFC3339)))
		}
		return MatchResolution{Status: models.ResolverAmbiguous, Notes: notes}
	}
}

func (r *Resolver) resolveTeam(ctx context.Context, text string) ([]models.Team, []string) {
	norm := models.NormalizeAlias(text)
	if norm == "" {
		return nil, []string{"TEAM_TEXT_EMPTY"}
	}
	teams, err := r.store.FindTeamsByAlias(ctx, norm)
	if err != nil {
		return nil, []string{fmt.Sprintf("STORE_ERROR (%v)", err)}
	}
	switch len(teams) {
	case 0:
		return nil, []string{"TEAM_NOT_FOUND"}
	case 1:
		return teams, nil
	default:
		return teams, []string{fmt.Sprintf("TEAM_AMBIGUOUS (%d teams)", len(teams))}
	}
}

func kickoffWindow(ref models.MatchRef, notes *[]string) (time.Time, time.Time) {
	hours := ref.WindowHours
	if hours <= 0 {
		hours = defaultWindowHours
	}
	delta := time.Duration(hours) * time.Hour
	hint := ref.KickoffHintUTC
	if hint.IsZero() {
		hint = time.Now().UTC()
		*notes = append(*notes, "NO_KICKOFF_HINT_USING_BOUNDED_WINDOW")
	}
	return hint.Add(-delta), hint.Add(delta)
}
