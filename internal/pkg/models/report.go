package models

import (
	"time"
)

// Report schema identity. Reports carry these on every run; validation
// rejects anything outside the allowed set.
const (
	ReportSchemaVersion = "report.v1"
	CanonicalFlow       = "/pipeline/shadow/run"
)

// ResolverStatus is the closed set of match resolution outcomes.
type ResolverStatus string

const (
	ResolverResolved  ResolverStatus = "RESOLVED"
	ResolverAmbiguous ResolverStatus = "AMBIGUOUS"
	ResolverNotFound  ResolverStatus = "NOT_FOUND"
)

// RunState is the pipeline orchestrator state machine.
type RunState string

const (
	StateIngesting  RunState = "INGESTING"
	StateResolving  RunState = "RESOLVING"
	StateAnalyzing  RunState = "ANALYZING"
	StateEvaluating RunState = "EVALUATING"
	StateAuditing   RunState = "AUDITING"
	StateDone       RunState = "DONE"
	StateError      RunState = "ERROR"
)

// ErrorKind is the closed set of run-level error codes surfaced in reports
// and API responses.
type ErrorKind string

const (
	ErrValidation           ErrorKind = "VALIDATION_ERROR"
	ErrActivationRejected   ErrorKind = "ACTIVATION_GATE_REJECTED"
	ErrSchemaValidation     ErrorKind = "SCHEMA_VALIDATION_ERROR"
	ErrConnectorNotFound    ErrorKind = "CONNECTOR_NOT_FOUND"
	ErrNoSnapshot           ErrorKind = "NO_SNAPSHOT"
	ErrAnalyzeNotSupported  ErrorKind = "ANALYZE_ENDPOINT_NOT_SUPPORTED"
	ErrMissingMatchID       ErrorKind = "MISSING_MATCH_ID"
	ErrIngestionTimeout     ErrorKind = "INGESTION_TIMEOUT"
)

// ResolverReport embeds the resolver outcome in the pipeline report.
type ResolverReport struct {
	Status  ResolverStatus `json:"status"`
	MatchID string         `json:"match_id,omitempty"`
	Notes   []string       `json:"notes"`
}

// AnalysisReport holds the analyzer output for one run.
type AnalysisReport struct {
	LogicVersion     string           `json:"logic_version"`
	SnapshotChecksum string           `json:"snapshot_checksum"`
	Decisions        []MarketDecision `json:"decisions"`
}

// Checksums are content hashes over normalized payloads; equal inputs yield
// equal checksums across runs.
type Checksums struct {
	EvaluationReportChecksum string `json:"evaluation_report_checksum"`
	ProposalChecksum         string `json:"proposal_checksum"`
	OutputHash               string `json:"output_hash"`
}

// Stability carries the audit-only guardrail verdict. Guardrail firing never
// changes a decision.
type Stability struct {
	GuardrailTriggered bool     `json:"guardrail_triggered"`
	Notes              []string `json:"notes,omitempty"`
}

// EvaluationReport holds checksums, KPIs and stability for one run.
type EvaluationReport struct {
	Checksums Checksums         `json:"checksums"`
	KPIs      *EvaluationRecord `json:"kpis,omitempty"`
	Stability Stability         `json:"stability"`
}

// AuditReport summarizes the audit stage of one run.
type AuditReport struct {
	SnapshotsChecksum string `json:"snapshots_checksum"`
	PolicyChecksum    string `json:"policy_checksum"`
	MatchesCount      int    `json:"matches_count"`
}

// PipelineReport is the run output. Created fresh per run, never mutated
// after emission; callers never observe a partial report.
type PipelineReport struct {
	SchemaVersion string           `json:"schema_version"`
	CanonicalFlow string           `json:"canonical_flow"`
	GeneratedAt   time.Time        `json:"generated_at"`
	AppVersion    string           `json:"app_version"`
	RunID         string           `json:"run_id"`
	MatchID       string           `json:"match_id"`
	Resolver      ResolverReport   `json:"resolver"`
	Analysis      AnalysisReport   `json:"analysis"`
	Evaluation    EvaluationReport `json:"evaluation"`
	Audit         AuditReport      `json:"audit"`
	Error         ErrorKind        `json:"error,omitempty"`
	Detail        string           `json:"detail,omitempty"`
}

// Period is an aggregation window for evaluation KPIs.
type Period string

const (
	PeriodDay   Period = "DAY"
	PeriodWeek  Period = "WEEK"
	PeriodMonth Period = "MONTH"
)

// EvaluationRecord aggregates realized decision outcomes for a period.
// Recomputed on demand, never incrementally mutated.
type EvaluationRecord struct {
	ReferenceDateUTC time.Time `json:"reference_date_utc"`
	Period           Period    `json:"period"`
	Hits             int       `json:"hits"`
	Misses           int       `json:"misses"`
	HitRate          float64   `json:"hit_rate"`
	MissRate         float64   `json:"miss_rate"`
}

// DecisionOutcome is one realized outcome of a past market decision,
// the unit KPI aggregation reads.
type DecisionOutcome struct {
	MatchID        string    `json:"match_id"`
	Market         Market    `json:"market"`
	Pick           string    `json:"pick"`
	Hit            bool      `json:"hit"`
	EvaluatedAtUTC time.Time `json:"evaluated_at_utc"`
}
