// Package evidence derives literature-evidence quality levels and their score
// weights from reference record metadata.
package evidence

import (
	"strings"

	"github.com/entolab/isympred/internal/model"
)

// DefaultLevel is assumed when a record store predates the evidence_level
// column.
const DefaultLevel = 2

// levelWeights maps evidence level to its score multiplier. Part of the
// documented contract; never varies per run.
var levelWeights = map[int]float64{
	5: 1.5,
	4: 1.3,
	3: 1.15,
	2: 1.0,
	1: 0.8,
}

// topJournals is the curated allow-list of high-impact venues, lowercased.
// Matching is case-insensitive exact-or-prefix.
var topJournals = []string{
	"nature",
	"science",
	"cell",
	"pnas",
	"proceedings of the national academy of sciences",
	"isme journal",
	"microbiome",
	"mbio",
	"plos biology",
	"current biology",
}

// Classify derives the 1-5 evidence level for a record from its metadata:
// base 1, +1 for a Symbiont record type, +2 for a genome accession, +1 for a
// high-impact venue, clamped to [1, 5].
func Classify(rec *model.ReferenceRecord) int {
	level := 1

	if rec.RecordType == model.RecordTypeSymbiont {
		level++
	}
	if HasGenome(rec.GenomeID) {
		level += 2
	}
	if IsTopJournal(rec.Journal) {
		level++
	}

	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return level
}

// Weight returns the score multiplier for an evidence level. Levels outside
// 1-5 fall back to the default level's weight.
func Weight(level int) float64 {
	if w, ok := levelWeights[level]; ok {
		return w
	}
	return levelWeights[DefaultLevel]
}

// HasGenome reports whether a genome accession field carries a real value.
func HasGenome(genomeID string) bool {
	v := strings.ToLower(strings.TrimSpace(genomeID))
	switch v {
	case "", "none", "nan", "null", "na", "n/a":
		return false
	}
	return true
}

// IsTopJournal matches a journal name against the allow-list,
// case-insensitively, exact or by prefix ("Nature Microbiology" matches
// "nature").
func IsTopJournal(journal string) bool {
	j := strings.ToLower(strings.TrimSpace(journal))
	if j == "" {
		return false
	}
	for _, top := range topJournals {
		if j == top || strings.HasPrefix(j, top+" ") {
			return true
		}
	}
	return false
}
