package summary

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "a11ycorpus"

// WriteTextfile writes s in the Prometheus text format to path, for the
// node exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string, s Summary) error {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"run_id": s.RunID}

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		reg.MustRegister(g)
	}

	gauge("cases", "Test cases verified.", float64(s.Totals.Total))
	gauge("cases_found", "Cases whose known failure the rules reported.", float64(s.Totals.Found))
	gauge("cases_invalid", "Cases that encode no requirement.", float64(s.Totals.Invalid))
	gauge("cases_legacy_error", "Cases flagged as errors by legacy tooling.", float64(s.Totals.LegacyError))
	gauge("cases_legacy_warning", "Cases flagged as warnings by legacy tooling.", float64(s.Totals.LegacyWarning))
	gauge("found_percent", "Found cases out of requirement cases.", s.FoundPct)
	gauge("legacy_percent", "Legacy-flagged cases out of requirement cases.", s.LegacyPct)
	if s.CorpusSize > 0 {
		gauge("corpus_fixtures", "Fixture files in the corpus.", float64(s.CorpusSize))
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
