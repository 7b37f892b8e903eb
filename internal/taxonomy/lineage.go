// Package taxonomy parses hierarchical taxonomy labels and matches community
// taxa against reference records by rank.
package taxonomy

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Lineage holds the ordered rank segments of a taxonomy label. Absent ranks
// are empty strings; the '*' placeholder from the reference format is
// normalized to absent.
type Lineage struct {
	Domain  string
	Phylum  string
	Class   string
	Order   string
	Family  string
	Genus   string
	Species string
}

// rank prefixes in QIIME/SILVA order, e.g. "d__Bacteria; ...; g__Buchnera; s__Buchnera aphidicola".
var rankPrefixes = []struct {
	prefix string
	set    func(*Lineage, string)
}{
	{"d__", func(l *Lineage, v string) { l.Domain = v }},
	{"k__", func(l *Lineage, v string) { l.Domain = v }},
	{"p__", func(l *Lineage, v string) { l.Phylum = v }},
	{"c__", func(l *Lineage, v string) { l.Class = v }},
	{"o__", func(l *Lineage, v string) { l.Order = v }},
	{"f__", func(l *Lineage, v string) { l.Family = v }},
	{"g__", func(l *Lineage, v string) { l.Genus = v }},
	{"s__", func(l *Lineage, v string) { l.Species = v }},
}

// placeholder epithets that never identify a species.
var invalidEpithets = map[string]bool{
	"*":            true,
	"sp":           true,
	"sp.":          true,
	"none":         true,
	"unknown":      true,
	"unclassified": true,
	"uncultured":   true,
	"metagenome":   true,
}

// Parse splits a hierarchical taxonomy label into ranked segments. Missing
// trailing ranks are tolerated; an empty or prefix-free label is an error.
func Parse(label string) (Lineage, error) {
	var l Lineage

	label = strings.TrimSpace(label)
	if label == "" {
		return l, eris.New("taxonomy: empty label")
	}

	found := false
	for _, seg := range strings.Split(label, ";") {
		seg = strings.TrimSpace(seg)
		for _, r := range rankPrefixes {
			if rest, ok := strings.CutPrefix(seg, r.prefix); ok {
				found = true
				if v := strings.TrimSpace(rest); v != "" && v != "*" {
					r.set(&l, v)
				}
				break
			}
		}
	}
	if !found {
		return l, eris.Errorf("taxonomy: no rank prefixes in label %q", label)
	}
	return l, nil
}

// SpeciesName returns the canonical binomial for the lineage, or "" when the
// species epithet is absent or a placeholder. The genus is prepended when the
// stored species field is a bare epithet.
func (l Lineage) SpeciesName() string {
	if l.Genus == "" || l.Species == "" {
		return ""
	}
	sp := strings.TrimSpace(l.Species)
	lower := strings.ToLower(sp)
	if invalidEpithets[lower] || strings.Contains(lower, "unclassified") || strings.Contains(lower, "uncultured") {
		return ""
	}
	if strings.Contains(sp, l.Genus) {
		return sp
	}
	return l.Genus + " " + sp
}
