package quality

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"fortio.org/assert"
)

func TestPSIStableDistribution(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	a := make([]float64, 2000)
	b := make([]float64, 2000)
	for i := range a {
		a[i] = r.NormFloat64()
		b[i] = r.NormFloat64()
	}

	score := PSI(a, b, 10)
	if score > 0.1 {
		t.Errorf("same distribution should score near zero, got %f", score)
	}
}

func TestPSIShiftedDistribution(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	a := make([]float64, 2000)
	b := make([]float64, 2000)
	for i := range a {
		a[i] = r.NormFloat64()
		b[i] = r.NormFloat64() + 3
	}

	score := PSI(a, b, 10)
	if score < 0.5 {
		t.Errorf("shifted distribution should score high, got %f", score)
	}
}

func TestPSIEmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, PSI(nil, []float64{1, 2}, 10))
	assert.Equal(t, 0.0, PSI([]float64{1, 2}, nil, 10))
	assert.Equal(t, 0.0, PSI([]float64{1}, []float64{2}, 0))
}

func TestBuildReport(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 100
	frame := Frame{
		Columns: map[string][]float64{
			"purchases": make([]float64, n),
			"age":       make([]float64, n),
		},
		EventTimes: make([]time.Time, n),
	}
	for i := 0; i < n; i++ {
		frame.EventTimes[i] = base.Add(time.Duration(i) * time.Hour)
		frame.Columns["age"][i] = 30
		frame.Columns["purchases"][i] = float64(i)
	}
	// Poke some missing cells into one column.
	frame.Columns["age"][3] = math.NaN()
	frame.Columns["age"][7] = math.NaN()

	report, err := BuildReport(context.Background(), "user_features", frame, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "user_features", report.Dataset)
	assert.Equal(t, n, report.Rows)
	assert.Equal(t, 2, report.Columns)

	byName := make(map[string]Metric, len(report.Metrics))
	for _, m := range report.Metrics {
		byName[m.Name] = m
	}

	miss, ok := byName["missingness_max"]
	if !ok {
		t.Fatal("missingness_max metric missing")
	}
	assert.Equal(t, 0.02, miss.Value)

	if _, ok := byName["numeric_summary"]; !ok {
		t.Error("numeric_summary metric missing")
	}
	if _, ok := byName["drift_psi_top"]; !ok {
		t.Error("drift_psi_top metric missing")
	}
	if _, ok := byName["generated_at"]; !ok {
		t.Error("generated_at metric missing")
	}

	// purchases trend upward over time, age is constant.
	drift := byName["drift_psi_top"]
	scores := drift.Meta
	if scores["purchases"].(float64) <= scores["age"].(float64) {
		t.Errorf("trending column should out-score the constant one: %v", scores)
	}
}

func TestBuildReportWithoutEventTimes(t *testing.T) {
	frame := Frame{Columns: map[string][]float64{"x": {1, 2, 3}}}
	report, err := BuildReport(context.Background(), "d", frame, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range report.Metrics {
		if m.Name == "drift_psi_top" {
			t.Error("drift metric requires event times")
		}
	}
}
