// Package quality builds drift and sanity reports over a slice of historical
// feature data: per-column missingness, numeric summaries, and a PSI drift
// score splitting the sample at a time quantile.
package quality

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config tunes the report.
type Config struct {
	// DriftQuantile splits rows into reference (older) and recent slices by
	// event-time quantile.
	DriftQuantile float64
	// PSIBins is the bin count for the PSI score.
	PSIBins int
}

func DefaultConfig() Config {
	return Config{DriftQuantile: 0.8, PSIBins: 12}
}

// Frame is a column-oriented slice of feature data. Columns are aligned by
// row index; NaN marks a missing cell. EventTimes, when present, must align
// with the columns and enables the drift split.
type Frame struct {
	Columns    map[string][]float64
	EventTimes []time.Time
}

// Metric is one named report entry with optional structured detail.
type Metric struct {
	Name  string                 `json:"name"`
	Value float64                `json:"value"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// Report is the full quality report for one dataset.
type Report struct {
	Dataset string   `json:"dataset"`
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Metrics []Metric `json:"metrics"`
}

// BuildReport computes missingness, numeric summary and (when event times are
// present) per-column PSI drift. Columns are scored concurrently.
func BuildReport(ctx context.Context, dataset string, frame Frame, cfg Config) (Report, error) {
	rows := 0
	names := make([]string, 0, len(frame.Columns))
	for name, col := range frame.Columns {
		names = append(names, name)
		if len(col) > rows {
			rows = len(col)
		}
	}
	sort.Strings(names)

	report := Report{
		Dataset: dataset,
		Rows:    rows,
		Columns: len(names),
	}

	report.Metrics = append(report.Metrics, missingness(names, frame))
	report.Metrics = append(report.Metrics, numericSummary(names, frame))

	if len(frame.EventTimes) > 0 {
		drift, err := driftScores(ctx, names, frame, cfg)
		if err != nil {
			return Report{}, err
		}
		report.Metrics = append(report.Metrics, drift)
	}

	report.Metrics = append(report.Metrics, Metric{
		Name:  "generated_at",
		Value: 1,
		Meta:  map[string]interface{}{"ts": time.Now().UTC().Format(time.RFC3339)},
	})

	return report, nil
}

func missingness(names []string, frame Frame) Metric {
	meta := make(map[string]interface{}, len(names))
	maxFrac := 0.0
	for _, name := range names {
		col := frame.Columns[name]
		if len(col) == 0 {
			continue
		}
		missing := 0
		for _, x := range col {
			if math.IsNaN(x) {
				missing++
			}
		}
		frac := float64(missing) / float64(len(col))
		meta[name] = frac
		if frac > maxFrac {
			maxFrac = frac
		}
	}
	return Metric{Name: "missingness_max", Value: maxFrac, Meta: meta}
}

func numericSummary(names []string, frame Frame) Metric {
	meta := make(map[string]interface{}, len(names))
	for _, name := range names {
		col := dropNaN(frame.Columns[name])
		if len(col) == 0 {
			continue
		}
		min, max, mean, std := describe(col)
		meta[name] = map[string]interface{}{
			"min": min, "max": max, "mean": mean, "std": std,
		}
	}
	return Metric{Name: "numeric_summary", Value: 1, Meta: meta}
}

func describe(xs []float64) (min, max, mean, std float64) {
	min, max = xs[0], xs[0]
	sum := 0.0
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
		sum += x
	}
	mean = sum / float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	std = math.Sqrt(variance / float64(len(xs)))
	return min, max, mean, std
}

func driftScores(ctx context.Context, names []string, frame Frame, cfg Config) (Metric, error) {
	cut := timeQuantile(frame.EventTimes, cfg.DriftQuantile)

	scores := make([]float64, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			col := frame.Columns[name]
			var ref, recent []float64
			for j, x := range col {
				if j >= len(frame.EventTimes) {
					break
				}
				if frame.EventTimes[j].After(cut) {
					recent = append(recent, x)
				} else {
					ref = append(ref, x)
				}
			}
			scores[i] = PSI(ref, recent, cfg.PSIBins)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Metric{}, fmt.Errorf("drift scores: %w", err)
	}

	meta := make(map[string]interface{}, len(names))
	maxScore := 0.0
	for i, name := range names {
		meta[name] = scores[i]
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}
	return Metric{Name: "drift_psi_top", Value: maxScore, Meta: meta}, nil
}

func timeQuantile(times []time.Time, q float64) time.Time {
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	if len(sorted) == 0 {
		return time.Time{}
	}
	pos := int(math.Floor(q * float64(len(sorted)-1)))
	return sorted[pos]
}
