// Package report owns the emitted report contract: JSON schema validation of
// pipeline reports and the live-awareness artifacts written next to them.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// pipelineReportSchema pins the report.v1 contract. Consumers parse reports
// by this schema; loosening it is a breaking change.
const pipelineReportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://fasterangels.github.io/shadowpipe/report.v1.json",
  "type": "object",
  "required": [
    "schema_version",
    "canonical_flow",
    "generated_at",
    "app_version",
    "run_id",
    "resolver",
    "analysis",
    "evaluation",
    "audit"
  ],
  "properties": {
    "schema_version": {"enum": ["report.v1"]},
    "canonical_flow": {"enum": ["/pipeline/shadow/run"]},
    "generated_at": {"type": "string", "format": "date-time"},
    "app_version": {"type": "string"},
    "run_id": {"type": "string", "minLength": 1},
    "match_id": {"type": "string"},
    "resolver": {
      "type": "object",
      "required": ["status", "notes"],
      "properties": {
        "status": {"enum": ["RESOLVED", "AMBIGUOUS", "NOT_FOUND"]},
        "match_id": {"type": "string"},
        "notes": {"type": "array", "items": {"type": "string"}}
      }
    },
    "analysis": {
      "type": "object",
      "required": ["logic_version", "snapshot_checksum", "decisions"],
      "properties": {
        "logic_version": {"type": "string"},
        "snapshot_checksum": {"type": "string"},
        "decisions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["market", "decision", "reasons"],
            "properties": {
              "market": {"type": "string"},
              "decision": {"type": "string"},
              "separation": {"type": "number"},
              "confidence": {"type": "number", "minimum": 0, "maximum": 1},
              "risk": {"type": "number", "minimum": 0},
              "reasons": {
                "type": "array",
                "minItems": 1,
                "items": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "evaluation": {
      "type": "object",
      "required": ["checksums", "stability"],
      "properties": {
        "checksums": {
          "type": "object",
          "required": ["evaluation_report_checksum", "proposal_checksum", "output_hash"]
        },
        "kpis": {
          "type": "object",
          "required": ["period", "hits", "misses"],
          "properties": {
            "period": {"enum": ["DAY", "WEEK", "MONTH"]},
            "hits": {"type": "integer", "minimum": 0},
            "misses": {"type": "integer", "minimum": 0}
          }
        },
        "stability": {
          "type": "object",
          "required": ["guardrail_triggered"]
        }
      }
    },
    "audit": {
      "type": "object",
      "required": ["snapshots_checksum", "policy_checksum", "matches_count"],
      "properties": {
        "matches_count": {"type": "integer", "minimum": 0}
      }
    },
    "error": {"type": "string"},
    "detail": {"type": "string"}
  }
}`

var compiledSchema = jsonschema.MustCompileString("report.v1.json", pipelineReportSchema)

// Validate checks a pipeline report against the report.v1 schema. The report
// is round-tripped through JSON so validation sees exactly what consumers see.
func Validate(r *models.PipelineReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("report schema: %w", err)
	}
	return nil
}
