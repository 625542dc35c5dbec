package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

// Aggregate recomputes the hit/miss KPIs over one period around
// referenceDate. Bounds are UTC calendar bounds: day starts at 00:00,
// week at ISO Monday, month at the first day. Aggregation is a pure read;
// re-running it with the same stored outcomes yields the same record.
func Aggregate(ctx context.Context, store storage.OutcomeStore, period models.Period, referenceDate time.Time) (models.EvaluationRecord, error) {
	from, to, err := periodBounds(period, referenceDate.UTC())
	if err != nil {
		return models.EvaluationRecord{}, err
	}

	outcomes, err := store.ListOutcomes(ctx, from, to)
	if err != nil {
		return models.EvaluationRecord{}, fmt.Errorf("list outcomes: %w", err)
	}

	record := models.EvaluationRecord{
		ReferenceDateUTC: from,
		Period:           period,
	}
	for _, o := range outcomes {
		if o.Hit {
			record.Hits++
		} else {
			record.Misses++
		}
	}
	if total := record.Hits + record.Misses; total > 0 {
		record.HitRate = float64(record.Hits) / float64(total)
		record.MissRate = float64(record.Misses) / float64(total)
	}
	return record, nil
}

func periodBounds(period models.Period, ref time.Time) (time.Time, time.Time, error) {
	switch period {
	case models.PeriodDay:
		from := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 0, 1), nil
	case models.PeriodWeek:
		day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday numbers Sunday as 0; shift to a Monday start.
		offset := (int(day.Weekday()) + 6) % 7
		from := day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7), nil
	case models.PeriodMonth:
		from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown aggregation period %q", period)
	}
}
