// Package engine converts an abundance table plus a reference record store
// into scored symbiont candidates and ranked per-function summaries.
package engine

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/evidence"
	"github.com/entolab/isympred/internal/hostctx"
	"github.com/entolab/isympred/internal/model"
	"github.com/entolab/isympred/internal/taxonomy"
)

// Engine is a single-run predictor over an immutable reference index and an
// optional host context. Safe for reuse across runs; all state is read-only
// after construction.
type Engine struct {
	idx     *taxonomy.Index
	weigher *hostctx.Weigher
}

// Result holds the two output tables and run statistics.
type Result struct {
	Summaries  []model.FunctionSummary
	Candidates []model.ScoredCandidate
	Stats      model.RunStats
}

// New builds an Engine over the given reference records. A nil weigher is
// treated as no host context.
func New(records []*model.ReferenceRecord, weigher *hostctx.Weigher) *Engine {
	if weigher == nil {
		weigher = hostctx.NewWeigher(nil)
	}
	idx := taxonomy.NewIndex(records)
	species, genus := idx.Len()
	zap.L().Info("engine: reference index built",
		zap.Int("records", len(records)),
		zap.Int("species_keys", species),
		zap.Int("genus_keys", genus),
	)
	return &Engine{idx: idx, weigher: weigher}
}

// Predict scores every abundance row against the reference index and rolls
// the surviving candidates up into per-function summaries. Unmatched rows
// count toward the abundance total but contribute to no function.
func (e *Engine) Predict(rows []model.AbundanceRow) (*Result, error) {
	var total float64
	for _, row := range rows {
		if row.Abundance < 0 {
			zap.L().Warn("engine: negative abundance, skipping row",
				zap.String("taxon", row.TaxonLabel),
				zap.Float64("abundance", row.Abundance),
			)
			continue
		}
		total += row.Abundance
	}
	if total <= 0 {
		return nil, eris.New("engine: total abundance is zero")
	}

	stats := model.RunStats{TotalRows: len(rows), TotalAbundance: total}
	var candidates []model.ScoredCandidate

	for _, row := range rows {
		if row.Abundance <= 0 {
			continue
		}
		row.RelAbundancePct = row.Abundance / total * 100

		matches := e.idx.Match(row)
		if len(matches) == 0 {
			stats.UnmatchedRows++
			continue
		}
		stats.MatchedRows++

		base := baseScore(matches[0].MatchWeight, row.RelAbundancePct)
		for _, m := range matches {
			m.Row = row

			hostLevel, hostWeight := e.weigher.Weigh(m.Record)
			evLevel := m.Record.EvidenceLevel
			if evLevel == 0 {
				evLevel = evidence.DefaultLevel
			}
			evWeight := evidence.Weight(evLevel)

			candidates = append(candidates, model.ScoredCandidate{
				Match:           m,
				BaseScore:       base,
				HostMatchLevel:  hostLevel,
				HostMatchWeight: hostWeight,
				EvidenceLevel:   evLevel,
				EvidenceWeight:  evWeight,
				FinalScore:      finalScore(base, hostWeight, evWeight),
			})
		}
	}

	summaries, err := summarize(candidates)
	if err != nil {
		return nil, err
	}

	sortCandidates(candidates)

	stats.Candidates = len(candidates)
	stats.Functions = len(summaries)

	return &Result{
		Summaries:  summaries,
		Candidates: candidates,
		Stats:      stats,
	}, nil
}

// functionAccum collects per-function aggregates while iterating candidates.
type functionAccum struct {
	scoreSum    float64
	confSum     float64
	hostSum     float64
	evidenceSum float64
	n           int
	// raByTaxon holds each contributing row's relative abundance, keyed by
	// taxon label so a row feeding several records of one function counts
	// once.
	raByTaxon map[string]float64
	dominant  model.ScoredCandidate
}

// summarize rolls scored candidates up into one summary per function and
// attaches the existence probability.
func summarize(candidates []model.ScoredCandidate) ([]model.FunctionSummary, error) {
	accums := make(map[string]*functionAccum)

	for _, c := range candidates {
		fn := c.Match.Record.Function
		acc, ok := accums[fn]
		if !ok {
			acc = &functionAccum{raByTaxon: make(map[string]float64), dominant: c}
			accums[fn] = acc
		}

		acc.scoreSum += c.FinalScore
		acc.confSum += c.Match.MatchWeight
		acc.hostSum += c.HostMatchWeight
		acc.evidenceSum += c.EvidenceWeight
		acc.n++
		acc.raByTaxon[c.Match.Row.TaxonLabel] = c.Match.Row.RelAbundancePct

		if c.FinalScore > acc.dominant.FinalScore ||
			(c.FinalScore == acc.dominant.FinalScore && c.Match.DisplayName < acc.dominant.Match.DisplayName) {
			acc.dominant = c
		}
	}

	summaries := make([]model.FunctionSummary, 0, len(accums))
	for fn, acc := range accums {
		var raSum float64
		for _, ra := range acc.raByTaxon {
			raSum += ra
		}

		s := model.FunctionSummary{
			Function:            fn,
			FinalScoreSum:       acc.scoreSum,
			TotalRelAbundance:   raSum,
			MeanConfidence:      acc.confSum / float64(acc.n),
			MeanHostMatch:       acc.hostSum / float64(acc.n),
			MeanEvidenceWeight:  acc.evidenceSum / float64(acc.n),
			TaxaCount:           len(acc.raByTaxon),
			DominantContributor: acc.dominant.Match.DisplayName,
		}

		p, err := probability(&s)
		if err != nil {
			return nil, err
		}
		s.Probability = p

		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].FinalScoreSum != summaries[j].FinalScoreSum {
			return summaries[i].FinalScoreSum > summaries[j].FinalScoreSum
		}
		return summaries[i].Function < summaries[j].Function
	})

	return summaries, nil
}

// sortCandidates orders detail rows by final score, then abundance, then
// name, then function, so identical inputs always produce identical output.
func sortCandidates(candidates []model.ScoredCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Match.Row.RelAbundancePct != b.Match.Row.RelAbundancePct {
			return a.Match.Row.RelAbundancePct > b.Match.Row.RelAbundancePct
		}
		if a.Match.DisplayName != b.Match.DisplayName {
			return a.Match.DisplayName < b.Match.DisplayName
		}
		return a.Match.Record.Function < b.Match.Record.Function
	})
}
