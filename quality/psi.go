package quality

import (
	"math"
	"sort"
)

// PSI computes a coarse population-stability-index score between a reference
// sample and a recent sample. Bin edges come from quantiles of the reference;
// probabilities are clipped before taking logs so empty bins do not blow up.
func PSI(reference, recent []float64, bins int) float64 {
	reference = dropNaN(reference)
	recent = dropNaN(recent)
	if len(reference) == 0 || len(recent) == 0 || bins <= 0 {
		return 0
	}

	sorted := make([]float64, len(reference))
	copy(sorted, reference)
	sort.Float64s(sorted)

	edges := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		edges[i] = quantile(sorted, float64(i)/float64(bins))
	}
	edges[0] -= 1e-9
	edges[bins] += 1e-9

	pa := histogram(reference, edges)
	pb := histogram(recent, edges)

	normalize(pa)
	normalize(pb)

	score := 0.0
	for i := 0; i < bins; i++ {
		a := clip(pa[i])
		b := clip(pb[i])
		score += (b - a) * math.Log(b/a)
	}
	return score
}

func dropNaN(xs []float64) []float64 {
	out := xs[:0:0]
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// quantile interpolates linearly on an already-sorted sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func histogram(xs []float64, edges []float64) []float64 {
	counts := make([]float64, len(edges)-1)
	for _, x := range xs {
		if x < edges[0] || x > edges[len(edges)-1] {
			continue
		}
		// Upper-inclusive on the last bin, matching the widened top edge.
		idx := sort.SearchFloat64s(edges[1:], x)
		if idx >= len(counts) {
			idx = len(counts) - 1
		}
		counts[idx]++
	}
	return counts
}

func normalize(counts []float64) {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total < 1 {
		total = 1
	}
	for i := range counts {
		counts[i] /= total
	}
}

func clip(p float64) float64 {
	if p < 1e-6 {
		return 1e-6
	}
	if p > 1 {
		return 1
	}
	return p
}
