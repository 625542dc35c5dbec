package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fasterangels/shadowpipe/internal/analyzer"
	"github.com/fasterangels/shadowpipe/internal/evaluation"
	"github.com/fasterangels/shadowpipe/internal/ingestion"
	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
	"github.com/fasterangels/shadowpipe/internal/report"
	"github.com/fasterangels/shadowpipe/internal/resolver"
)

// batchWorkers bounds sibling parallelism inside one batch run.
const batchWorkers = 4

// Notifier receives out-of-band alerts (guardrail firings, gate rejections).
// A nil Notifier is valid and means no notifications.
type Notifier interface {
	Notify(text string)
}

// Request describes one match to run through the pipeline. Final goals are
// set only for FINAL matches; they settle play decisions into recorded
// outcomes after analysis.
type Request struct {
	ConnectorName  string
	MatchID        string
	Markets        []models.Market // empty means the policy's market set
	Status         string
	FinalHomeGoals *int
	FinalAwayGoals *int
}

// Pipeline runs shadow analyses. Safe for concurrent use.
type Pipeline struct {
	cfg        *config.Config
	policy     RunPolicy
	resolver   *resolver.Resolver
	analyzer   *analyzer.Analyzer
	outcomes   storage.OutcomeStore
	notifier   Notifier
	appVersion string
	log        *slog.Logger
}

// New builds a pipeline over the given stores. The run policy is captured
// from cfg once, here.
func New(cfg *config.Config, refs storage.ReferenceStore, outcomes storage.OutcomeStore, notifier Notifier, appVersion string, log *slog.Logger) (*Pipeline, error) {
	an, err := analyzer.New(cfg.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:        cfg,
		policy:     PolicyFromConfig(cfg),
		resolver:   resolver.New(refs),
		analyzer:   an,
		outcomes:   outcomes,
		notifier:   notifier,
		appVersion: appVersion,
		log:        log,
	}, nil
}

// Policy returns the active run policy.
func (p *Pipeline) Policy() RunPolicy {
	return p.policy
}

// Run executes the full pipeline for one match and always returns a complete
// report; failures are absorbed into the report's error fields.
func (p *Pipeline) Run(ctx context.Context, req Request) *models.PipelineReport {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID, "match_id", req.MatchID, "connector", req.ConnectorName)

	markets := req.Markets
	if len(markets) == 0 {
		markets = p.policy.Markets
	}

	if err := p.policy.Authorize(1, markets); err != nil {
		log.Warn("Activation gate rejected run", "error", err)
		p.notify(fmt.Sprintf("shadow run rejected: %v", err))
		return p.finish(log, p.errorReport(runID, req.MatchID, models.ErrActivationRejected, err.Error()))
	}
	if req.MatchID == "" {
		return p.finish(log, p.errorReport(runID, req.MatchID, models.ErrMissingMatchID, "match_id is required"))
	}

	log.Info("Pipeline state", "state", models.StateIngesting)
	snapshot, errKind, detail := p.ingest(ctx, req)
	if errKind != "" {
		log.Warn("Ingestion failed", "error_kind", errKind, "detail", detail)
		return p.finish(log, p.errorReport(runID, req.MatchID, errKind, detail))
	}

	log.Info("Pipeline state", "state", models.StateResolving)
	resolution := p.resolver.Resolve(ctx, models.MatchRef{
		HomeText:       snapshot.HomeTeam,
		AwayText:       snapshot.AwayTeam,
		KickoffHintUTC: snapshot.KickoffUTC,
	})
	rep := p.baseReport(runID, req.MatchID)
	rep.Resolver = models.ResolverReport{
		Status:  resolution.Status,
		MatchID: resolution.MatchID,
		Notes:   notesOrEmpty(resolution.Notes),
	}

	// AMBIGUOUS and NOT_FOUND are successful runs with no decisions; the
	// report explains why through the resolver notes. Checksums are stamped
	// over the empty decision set so every successful report carries them.
	if resolution.Status != models.ResolverResolved {
		log.Info("Resolution short-circuit", "status", resolution.Status)
		rep.Analysis = models.AnalysisReport{
			LogicVersion:     p.cfg.Analyzer.LogicVersion,
			SnapshotChecksum: evaluation.MustChecksum(snapshot),
			Decisions:        []models.MarketDecision{},
		}
		rep.Evaluation = evaluation.Evaluate(rep.Analysis.Decisions, nil, p.cfg.Analyzer)
		rep.Evaluation.KPIs = p.kpis(ctx, log)
		rep.Audit = p.audit(snapshot, 1)
		return p.finish(log, p.validated(log, rep))
	}

	log.Info("Pipeline state", "state", models.StateAnalyzing)
	analysis := p.analyzer.Decide(snapshot, markets)
	rep.Analysis = models.AnalysisReport{
		LogicVersion:     analysis.LogicVersion,
		SnapshotChecksum: evaluation.MustChecksum(snapshot),
		Decisions:        decisionsOrEmpty(analysis.Decisions),
	}

	log.Info("Pipeline state", "state", models.StateEvaluating)
	rep.Evaluation = p.evaluate(ctx, log, resolution.MatchID, analysis.Decisions)
	p.settle(ctx, log, resolution.MatchID, analysis.Decisions, req)
	rep.Evaluation.KPIs = p.kpis(ctx, log)

	log.Info("Pipeline state", "state", models.StateAuditing)
	rep.Audit = p.audit(snapshot, 1)
	p.writeArtifacts(log, snapshot)

	return p.finish(log, p.validated(log, rep))
}

// Batch runs several matches under one activation decision. The gate sees the
// whole batch before any ingestion; match failures are isolated per report.
// Reports come back sorted by match id.
func (p *Pipeline) Batch(ctx context.Context, reqs []Request) []*models.PipelineReport {
	sorted := make([]Request, len(reqs))
	copy(sorted, reqs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MatchID < sorted[j].MatchID })

	batchMarkets := p.policy.Markets
	for _, r := range sorted {
		batchMarkets = append(batchMarkets, r.Markets...)
	}
	if err := p.policy.Authorize(len(sorted), batchMarkets); err != nil {
		p.log.Warn("Activation gate rejected batch", "matches", len(sorted), "error", err)
		p.notify(fmt.Sprintf("shadow batch of %d rejected: %v", len(sorted), err))
		reports := make([]*models.PipelineReport, len(sorted))
		for i, r := range sorted {
			reports[i] = p.errorReport(uuid.NewString(), r.MatchID, models.ErrActivationRejected, err.Error())
		}
		return reports
	}

	reports := make([]*models.PipelineReport, len(sorted))
	sem := make(chan struct{}, batchWorkers)
	var wg sync.WaitGroup
	for i, r := range sorted {
		wg.Add(1)
		go func(i int, r Request) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			reports[i] = p.Run(ctx, r)
		}(i, r)
	}
	wg.Wait()
	return reports
}

func (p *Pipeline) ingest(ctx context.Context, req Request) (*models.Snapshot, models.ErrorKind, string) {
	connector, err := ingestion.ConnectorSafe(req.ConnectorName, p.cfg.LiveIO)
	if err != nil {
		return nil, models.ErrConnectorNotFound, err.Error()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.LiveIO.FetchTimeout)
	defer cancel()
	snapshot, err := connector.FetchMatchData(fetchCtx, req.MatchID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.ErrIngestionTimeout, err.Error()
		}
		return nil, models.ErrNoSnapshot, err.Error()
	}
	if snapshot == nil {
		return nil, models.ErrNoSnapshot, fmt.Sprintf("connector %s returned no snapshot for %s", req.ConnectorName, req.MatchID)
	}
	if err := ingestion.ValidateSnapshot(snapshot); err != nil {
		return nil, models.ErrValidation, err.Error()
	}
	return snapshot, "", ""
}

func (p *Pipeline) evaluate(ctx context.Context, log *slog.Logger, matchID string, decisions []models.MarketDecision) models.EvaluationReport {
	var prior []models.MarketDecision
	if p.outcomes != nil {
		var err error
		prior, err = p.outcomes.LastDecisions(ctx, matchID)
		if err != nil {
			log.Warn("Failed to load prior decisions, guardrail disabled for this run", "error", err)
			prior = nil
		}
	}

	eval := evaluation.Evaluate(decisions, prior, p.cfg.Analyzer)
	if eval.Stability.GuardrailTriggered {
		log.Warn("Stability guardrail triggered", "notes", eval.Stability.Notes)
		p.notify(fmt.Sprintf("stability guardrail triggered for %s: %v", matchID, eval.Stability.Notes))
	}

	if p.outcomes != nil {
		if err := p.outcomes.RecordDecisions(ctx, matchID, decisions); err != nil {
			log.Warn("Failed to record decisions", "error", err)
		}
	}
	return eval
}

// finalStatus reports whether a request status marks the match as played to
// completion. FINAL is the canonical value; FINISHED is accepted as an alias
// some feeds use.
func finalStatus(status string) bool {
	return status == "FINAL" || status == "FINISHED"
}

// kpis aggregates the current-day evaluation record for the report. Runs
// after settlement so a just-settled match counts toward its own report.
func (p *Pipeline) kpis(ctx context.Context, log *slog.Logger) *models.EvaluationRecord {
	if p.outcomes == nil {
		return nil
	}
	record, err := evaluation.Aggregate(ctx, p.outcomes, models.PeriodDay, time.Now().UTC())
	if err != nil {
		log.Warn("Failed to aggregate KPIs for report", "error", err)
		return nil
	}
	return &record
}

// settle records realized outcomes for final matches with a known score.
// Best effort; a storage failure is logged, not surfaced.
func (p *Pipeline) settle(ctx context.Context, log *slog.Logger, matchID string, decisions []models.MarketDecision, req Request) {
	if p.outcomes == nil || !finalStatus(req.Status) || req.FinalHomeGoals == nil || req.FinalAwayGoals == nil {
		return
	}
	outcomes := evaluation.Settle(matchID, decisions, *req.FinalHomeGoals, *req.FinalAwayGoals, time.Now())
	for _, o := range outcomes {
		if err := p.outcomes.RecordOutcome(ctx, o); err != nil {
			log.Warn("Failed to record outcome", "market", o.Market, "error", err)
			continue
		}
		log.Info("Recorded outcome", "market", o.Market, "pick", o.Pick, "hit", o.Hit)
	}
}

// writeArtifacts refreshes the live-awareness artifacts next to the reports.
// Best effort; artifact failures never fail a run.
func (p *Pipeline) writeArtifacts(log *slog.Logger, snapshot *models.Snapshot) {
	dir := p.cfg.Report.ArtifactsDir
	if dir == "" {
		return
	}
	aw := report.BuildLiveAwareness([]*models.Snapshot{snapshot})
	if err := report.WriteLiveAwareness(dir, aw); err != nil {
		log.Warn("Failed to write live awareness artifacts", "error", err)
	}
}

func (p *Pipeline) audit(snapshot *models.Snapshot, matches int) models.AuditReport {
	return models.AuditReport{
		SnapshotsChecksum: evaluation.MustChecksum(snapshot),
		PolicyChecksum:    evaluation.MustChecksum(p.policy),
		MatchesCount:      matches,
	}
}

// validated applies schema validation per policy: strict mode turns a schema
// failure into an error report, otherwise it only logs.
func (p *Pipeline) validated(log *slog.Logger, rep *models.PipelineReport) *models.PipelineReport {
	err := report.Validate(rep)
	if err == nil {
		return rep
	}
	if p.policy.ValidateStrict {
		log.Error("Report failed schema validation", "error", err)
		return p.errorReport(rep.RunID, rep.MatchID, models.ErrSchemaValidation, err.Error())
	}
	log.Warn("Report failed schema validation", "error", err)
	return rep
}

func (p *Pipeline) finish(log *slog.Logger, rep *models.PipelineReport) *models.PipelineReport {
	state := models.StateDone
	if rep.Error != "" {
		state = models.StateError
	}
	log.Info("Pipeline state", "state", state, "error_kind", rep.Error)
	return rep
}

func (p *Pipeline) baseReport(runID, matchID string) *models.PipelineReport {
	return &models.PipelineReport{
		SchemaVersion: models.ReportSchemaVersion,
		CanonicalFlow: models.CanonicalFlow,
		GeneratedAt:   time.Now().UTC(),
		AppVersion:    p.appVersion,
		RunID:         runID,
		MatchID:       matchID,
		Resolver: models.ResolverReport{
			Status: models.ResolverNotFound,
			Notes:  []string{},
		},
		Analysis: models.AnalysisReport{
			LogicVersion: p.cfg.Analyzer.LogicVersion,
			Decisions:    []models.MarketDecision{},
		},
	}
}

// errorReport builds a complete, schema-valid report for a failed run.
func (p *Pipeline) errorReport(runID, matchID string, kind models.ErrorKind, detail string) *models.PipelineReport {
	rep := p.baseReport(runID, matchID)
	rep.Resolver.Notes = []string{"RUN_ABORTED"}
	rep.Audit = models.AuditReport{
		PolicyChecksum: evaluation.MustChecksum(p.policy),
	}
	rep.Error = kind
	rep.Detail = detail
	return rep
}

func (p *Pipeline) notify(text string) {
	if p.notifier != nil {
		p.notifier.Notify(text)
	}
}

func notesOrEmpty(notes []string) []string {
	if notes == nil {
		return []string{}
	}
	return notes
}

func decisionsOrEmpty(decisions []models.MarketDecision) []models.MarketDecision {
	if decisions == nil {
		return []models.MarketDecision{}
	}
	return decisions
}
