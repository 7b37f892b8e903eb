package taxonomy

import (
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/model"
)

// Taxon match weights. Matching stops at genus; family and order ranks are
// reserved for host matching.
const (
	WeightSpecies = 1.0
	WeightGenus   = 0.6
)

// Index is a read-only lookup of reference records keyed by species binomial
// and by genus. Built once per run.
type Index struct {
	species map[string][]*model.ReferenceRecord
	genus   map[string][]*model.ReferenceRecord
}

// NewIndex parses every record's taxonomy label and files it under its genus
// and, when identifiable, its species binomial. Records whose label cannot be
// parsed down to genus are skipped with a warning.
func NewIndex(records []*model.ReferenceRecord) *Index {
	idx := &Index{
		species: make(map[string][]*model.ReferenceRecord),
		genus:   make(map[string][]*model.ReferenceRecord),
	}

	for _, rec := range records {
		l, err := Parse(rec.TaxonLabel)
		if err != nil || l.Genus == "" {
			zap.L().Warn("taxonomy: reference record has no usable genus, skipping",
				zap.String("taxon_label", rec.TaxonLabel),
				zap.String("function", rec.Function),
			)
			continue
		}

		idx.genus[l.Genus] = append(idx.genus[l.Genus], rec)
		if sp := l.SpeciesName(); sp != "" {
			idx.species[sp] = append(idx.species[sp], rec)
		}
	}
	return idx
}

// Len returns the number of species and genus keys in the index.
func (idx *Index) Len() (species, genus int) {
	return len(idx.species), len(idx.genus)
}

// Match finds the reference records matching an abundance row at the finest
// rank available. Species-level matches carry weight 1.0, genus-level 0.6.
// Rows matching no record at genus or finer are Unmatched and yield no
// results.
func (idx *Index) Match(row model.AbundanceRow) []model.MatchResult {
	l, err := Parse(row.TaxonLabel)
	if err != nil || l.Genus == "" {
		return nil
	}

	var (
		records []*model.ReferenceRecord
		rank    model.RankLevel
		weight  float64
		display string
	)

	if sp := l.SpeciesName(); sp != "" {
		if recs, ok := idx.species[sp]; ok {
			records, rank, weight, display = recs, model.RankSpecies, WeightSpecies, sp
		}
	}
	if records == nil {
		if recs, ok := idx.genus[l.Genus]; ok {
			records, rank, weight, display = recs, model.RankGenus, WeightGenus, l.Genus+" (sp.)"
		}
	}
	if records == nil {
		return nil
	}

	results := make([]model.MatchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, model.MatchResult{
			Row:         row,
			Record:      rec,
			Rank:        rank,
			MatchWeight: weight,
			DisplayName: display,
		})
	}
	return results
}
