package engine

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/entolab/isympred/internal/model"
)

// Sigmoid parameters for the abundance term: midpoint at 5% total relative
// abundance, slope 0.3.
const (
	sigmoidK  = 0.3
	sigmoidX0 = 5.0
)

// probability maps a function summary's aggregated signals to a bounded
// existence probability. Multiplicative by design: any single weak signal
// pulls the estimate down.
//
//	base_prob       = 1 / (1 + exp(-k (total_ra - x0)))
//	confidence      = 0.9  + mean_confidence * 0.2
//	host            = 0.95 + (mean_host_match - 1.0) * 0.1
//	evidence        = 0.95 + (mean_evidence_weight - 1.0) * 0.1
//	taxa            = 1.0  + log10(taxa_count + 1) * 0.05
//
// The product is clamped to [0, 1]. A non-finite result indicates an
// internal defect and is returned as an error rather than clamped away.
func probability(s *model.FunctionSummary) (float64, error) {
	baseProb := 1.0 / (1.0 + math.Exp(-sigmoidK*(s.TotalRelAbundance-sigmoidX0)))

	confidenceFactor := 0.9 + s.MeanConfidence*0.2
	hostFactor := 0.95 + (s.MeanHostMatch-1.0)*0.1
	evidenceFactor := 0.95 + (s.MeanEvidenceWeight-1.0)*0.1
	taxaFactor := 1.0 + math.Log10(float64(s.TaxaCount)+1)*0.05

	p := baseProb * confidenceFactor * hostFactor * evidenceFactor * taxaFactor
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, eris.Errorf("engine: non-finite probability for function %q (total_ra=%v taxa=%d)",
			s.Function, s.TotalRelAbundance, s.TaxaCount)
	}

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, nil
}
