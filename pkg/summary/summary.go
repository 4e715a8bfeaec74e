// Package summary turns the counters of a run into the figures reported at
// the end of it.
package summary

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/waftester/a11ycorpus/pkg/harness"
	"github.com/waftester/a11ycorpus/pkg/ui"
)

// Summary is the report of one run.
type Summary struct {
	RunID  string         `json:"run_id"`
	Totals harness.Totals `json:"totals"`
	// Denominator is Total minus Invalid: the cases that encode a
	// requirement.
	Denominator int64   `json:"denominator"`
	FoundPct    float64 `json:"found_pct"`
	LegacyPct   float64 `json:"legacy_pct"`
	// CorpusSize is the number of fixture files on disk, zero if unknown.
	CorpusSize int `json:"corpus_size,omitempty"`
}

// Compute derives the summary of t. Percentages are rounded half up to two
// decimals; a zero denominator reports 0%.
func Compute(t harness.Totals) Summary {
	d := t.Total - t.Invalid
	return Summary{
		RunID:       uuid.NewString(),
		Totals:      t,
		Denominator: d,
		FoundPct:    percent(t.Found, d),
		LegacyPct:   percent(t.Legacy(), d),
	}
}

func percent(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	// Round half up on n/d scaled to hundredths of a percent, in integers.
	return float64((n*20000+d)/(2*d)) / 100
}

// String is the one-line human form of s.
func (s Summary) String() string {
	return fmt.Sprintf("Found %d %s out of %d (%.2f%%), legacy %d (%.2f%%), invalid %d out of %d",
		s.Totals.Found, plural(s.Totals.Found, "barrier", "barriers"), s.Denominator, s.FoundPct,
		s.Totals.Legacy(), s.LegacyPct, s.Totals.Invalid, s.Totals.Total)
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Log emits s as one structured record.
func (s Summary) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		slog.String("run_id", s.RunID),
		slog.Int64("total", s.Totals.Total),
		slog.Int64("found", s.Totals.Found),
		slog.Int64("denominator", s.Denominator),
		slog.Float64("found_pct", s.FoundPct),
		slog.Int64("legacy_error", s.Totals.LegacyError),
		slog.Int64("legacy_warning", s.Totals.LegacyWarning),
		slog.Float64("legacy_pct", s.LegacyPct),
		slog.Int64("invalid", s.Totals.Invalid),
	}
	if s.CorpusSize > 0 {
		attrs = append(attrs, slog.Int("corpus", s.CorpusSize))
	}
	logger.Info(s.String(), attrs...)
}

// Render returns s as a table for terminals.
func (s Summary) Render() string {
	rows := [][2]string{
		{"Found", ui.RateStyle(s.FoundPct).Render(fmt.Sprintf("%d / %d (%.2f%%)", s.Totals.Found, s.Denominator, s.FoundPct))},
		{"Legacy", fmt.Sprintf("%d / %d (%.2f%%)", s.Totals.Legacy(), s.Denominator, s.LegacyPct)},
		{"  error", fmt.Sprintf("%d", s.Totals.LegacyError)},
		{"  warning", fmt.Sprintf("%d", s.Totals.LegacyWarning)},
		{"Invalid", fmt.Sprintf("%d / %d", s.Totals.Invalid, s.Totals.Total)},
		{"Not found", fmt.Sprintf("%d", s.Totals.Other())},
	}
	if s.CorpusSize > 0 {
		rows = append(rows, [2]string{"Corpus", fmt.Sprintf("%d fixtures", s.CorpusSize)})
	}
	rows = append(rows, [2]string{"Run", s.RunID})
	return ui.Table("Summary", rows)
}
