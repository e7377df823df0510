// Package dataset turns an enriched snapshot into a labelled training set:
// one example per record that has both a plot and a return on investment,
// with the return bucketed into an outcome class.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"moviefuse/pkg/enrich"
	"moviefuse/pkg/table"
)

// Outcome class labels, ordered from worst to best return.
const (
	OutcomeLoseMoney = "lose_money"
	OutcomeMediocre  = "make_mediocre_returns"
	OutcomeSuccess   = "be_a_box_office_success"
)

// Example is one labelled training record.
type Example struct {
	Plot    string
	ROI     float64
	Outcome string
}

// Labeler buckets a return-on-investment ratio into an outcome class.
// BreakEvenROI must be below SuccessROI; config validation enforces that.
type Labeler struct {
	BreakEvenROI float64
	SuccessROI   float64
}

// Label classifies a single ratio.
func (l Labeler) Label(roi float64) string {
	switch {
	case roi < l.BreakEvenROI:
		return OutcomeLoseMoney
	case roi < l.SuccessROI:
		return OutcomeMediocre
	default:
		return OutcomeSuccess
	}
}

// Build extracts labelled examples from an enriched snapshot. Records
// missing either the plot or the roi column are dropped; the survivors are
// shuffled deterministically by seed so repeated builds from the same
// snapshot produce the same ordering.
func Build(t *table.Table, labeler Labeler, seed int64) []Example {
	var examples []Example
	for _, id := range t.IDs() {
		plot := t.Cell(id, "plot")
		roiCell := t.Cell(id, enrich.ColROI)
		if plot.IsNull() || roiCell.IsNull() {
			continue
		}
		roi, ok := roiCell.Float()
		if !ok {
			continue
		}
		examples = append(examples, Example{
			Plot:    plot.Value(),
			ROI:     roi,
			Outcome: labeler.Label(roi),
		})
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
	return examples
}

// WriteFile emits the examples as a plot,roi,outcome CSV.
func WriteFile(path string, examples []Example) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dataset directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"plot", "roi", "outcome"}); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}
	for _, ex := range examples {
		record := []string{ex.Plot, strconv.FormatFloat(ex.ROI, 'g', -1, 64), ex.Outcome}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write dataset record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dataset file: %w", err)
	}
	return f.Close()
}
