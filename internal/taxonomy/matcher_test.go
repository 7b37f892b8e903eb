package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entolab/isympred/internal/model"
)

func testRecords() []*model.ReferenceRecord {
	return []*model.ReferenceRecord{
		{
			TaxonLabel: "d__Bacteria; p__Proteobacteria; g__Buchnera; s__Buchnera aphidicola",
			Function:   "Nutrition provisioning",
			Host:       "Acyrthosiphon pisum",
		},
		{
			TaxonLabel: "d__Bacteria; p__Proteobacteria; g__Wolbachia; s__*",
			Function:   "Reproductive manipulation",
			Host:       model.GeneralHost,
		},
		{
			TaxonLabel: "d__Bacteria; p__Proteobacteria; g__Wolbachia; s__*",
			Function:   "Defense",
			Host:       model.GeneralHost,
		},
		{
			TaxonLabel: "no rank prefixes here",
			Function:   "Ignored",
			Host:       model.GeneralHost,
		},
	}
}

func TestNewIndex_SkipsUnparseable(t *testing.T) {
	idx := NewIndex(testRecords())
	species, genus := idx.Len()

	assert.Equal(t, 1, species)
	assert.Equal(t, 2, genus)
}

func TestMatch_SpeciesLevel(t *testing.T) {
	idx := NewIndex(testRecords())

	row := model.AbundanceRow{TaxonLabel: "d__Bacteria; g__Buchnera; s__Buchnera aphidicola", Abundance: 100}
	results := idx.Match(row)
	require.Len(t, results, 1)

	assert.Equal(t, model.RankSpecies, results[0].Rank)
	assert.Equal(t, WeightSpecies, results[0].MatchWeight)
	assert.Equal(t, "Buchnera aphidicola", results[0].DisplayName)
	assert.Equal(t, "Nutrition provisioning", results[0].Record.Function)
}

func TestMatch_GenusFallback(t *testing.T) {
	idx := NewIndex(testRecords())

	// Species epithet is a placeholder, so the match degrades to genus and
	// fans out over every record for that genus.
	row := model.AbundanceRow{TaxonLabel: "d__Bacteria; g__Wolbachia; s__sp.", Abundance: 50}
	results := idx.Match(row)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Equal(t, model.RankGenus, r.Rank)
		assert.Equal(t, WeightGenus, r.MatchWeight)
		assert.Equal(t, "Wolbachia (sp.)", r.DisplayName)
	}
}

func TestMatch_UnknownSpeciesKnownGenus(t *testing.T) {
	idx := NewIndex(testRecords())

	// A concrete species absent from the index still matches at genus level.
	row := model.AbundanceRow{TaxonLabel: "g__Buchnera; s__Buchnera intestini"}
	results := idx.Match(row)
	require.Len(t, results, 1)
	assert.Equal(t, model.RankGenus, results[0].Rank)
}

func TestMatch_Unmatched(t *testing.T) {
	idx := NewIndex(testRecords())

	assert.Nil(t, idx.Match(model.AbundanceRow{TaxonLabel: "g__Lactobacillus"}))
	assert.Nil(t, idx.Match(model.AbundanceRow{TaxonLabel: "malformed label"}))
	assert.Nil(t, idx.Match(model.AbundanceRow{TaxonLabel: ""}))
	assert.Nil(t, idx.Match(model.AbundanceRow{TaxonLabel: "d__Bacteria; p__Firmicutes"}))
}
