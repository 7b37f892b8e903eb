package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entolab/isympred/internal/hostctx"
	"github.com/entolab/isympred/internal/model"
)

func aphidProfile() *model.HostProfile {
	return &model.HostProfile{
		InputName: "Acyrthosiphon pisum",
		Order:     "Hemiptera",
		Family:    "Aphididae",
		Genus:     "Acyrthosiphon",
		Species:   "Acyrthosiphon pisum",
	}
}

func buchneraRecord() *model.ReferenceRecord {
	return &model.ReferenceRecord{
		TaxonLabel:    "d__Bacteria; p__Proteobacteria; g__Buchnera; s__Buchnera aphidicola",
		Function:      "Nutrition provisioning",
		Host:          "Acyrthosiphon pisum",
		HostOrder:     "Hemiptera",
		HostFamily:    "Aphididae",
		RecordType:    model.RecordTypeSymbiont,
		GenomeID:      "GCF_000009605.1",
		Journal:       "Nature",
		EvidenceLevel: 5,
	}
}

func wolbachiaRecord() *model.ReferenceRecord {
	return &model.ReferenceRecord{
		TaxonLabel:    "d__Bacteria; p__Proteobacteria; g__Wolbachia; s__*",
		Function:      "Reproductive manipulation",
		Host:          model.GeneralHost,
		RecordType:    model.RecordTypeSymbiont,
		EvidenceLevel: 3,
	}
}

func TestPredict_ScenarioSpeciesExactHost(t *testing.T) {
	// Buchnera aphidicola at 10% relative abundance: species-level match,
	// species-exact host, evidence level 5.
	e := New([]*model.ReferenceRecord{buchneraRecord()}, hostctx.NewWeigher(aphidProfile()))

	rows := []model.AbundanceRow{
		{TaxonLabel: "g__Buchnera; s__Buchnera aphidicola", Abundance: 100},
		{TaxonLabel: "g__Lactobacillus; s__*", Abundance: 900},
	}
	res, err := e.Predict(rows)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.Equal(t, model.RankSpecies, c.Match.Rank)
	assert.Equal(t, model.HostMatchSpecies, c.HostMatchLevel)
	assert.Equal(t, 1.5, c.HostMatchWeight)
	assert.Equal(t, 5, c.EvidenceLevel)
	assert.Equal(t, 1.5, c.EvidenceWeight)
	assert.InDelta(t, 104.1, c.BaseScore, 0.1)
	assert.InDelta(t, 234.3, c.FinalScore, 0.2)
	assert.InDelta(t, c.BaseScore*c.HostMatchWeight*c.EvidenceWeight, c.FinalScore, 1e-9)
}

func TestPredict_ScenarioGenusGeneralHost(t *testing.T) {
	// Wolbachia sp. at 5% relative abundance: genus-level match, General
	// host record, evidence level 3.
	e := New([]*model.ReferenceRecord{wolbachiaRecord()}, nil)

	rows := []model.AbundanceRow{
		{TaxonLabel: "g__Wolbachia; s__sp.", Abundance: 50},
		{TaxonLabel: "g__Lactobacillus; s__*", Abundance: 950},
	}
	res, err := e.Predict(rows)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.Equal(t, model.RankGenus, c.Match.Rank)
	assert.Equal(t, 0.6, c.Match.MatchWeight)
	assert.Equal(t, model.HostMatchGeneral, c.HostMatchLevel)
	assert.InDelta(t, 46.7, c.BaseScore, 0.1)
	assert.InDelta(t, 53.7, c.FinalScore, 0.1)
}

func TestPredict_ScenarioGenusHostMismatch(t *testing.T) {
	// 2% relative abundance, genus match, mismatched host, evidence level 2.
	rec := &model.ReferenceRecord{
		TaxonLabel:    "d__Bacteria; g__Sodalis; s__*",
		Function:      "Nutrition provisioning",
		Host:          "Glossina morsitans",
		HostOrder:     "Diptera",
		HostFamily:    "Glossinidae",
		RecordType:    model.RecordTypeSymbiont,
		EvidenceLevel: 2,
	}
	e := New([]*model.ReferenceRecord{rec}, hostctx.NewWeigher(aphidProfile()))

	rows := []model.AbundanceRow{
		{TaxonLabel: "g__Sodalis", Abundance: 20},
		{TaxonLabel: "g__Lactobacillus", Abundance: 980},
	}
	res, err := e.Predict(rows)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.Equal(t, model.HostMatchMismatch, c.HostMatchLevel)
	assert.Equal(t, 0.8, c.HostMatchWeight)
	assert.InDelta(t, 28.6, c.BaseScore, 0.1)
	assert.InDelta(t, 22.9, c.FinalScore, 0.1)
}

func TestPredict_MissingEvidenceLevelDefaults(t *testing.T) {
	rec := wolbachiaRecord()
	rec.EvidenceLevel = 0 // older record stores predate the column

	e := New([]*model.ReferenceRecord{rec}, nil)
	res, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Wolbachia", Abundance: 10},
		{TaxonLabel: "g__Lactobacillus", Abundance: 90},
	})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	assert.Equal(t, 2, res.Candidates[0].EvidenceLevel)
	assert.Equal(t, 1.0, res.Candidates[0].EvidenceWeight)
}

func TestPredict_WeightInvariants(t *testing.T) {
	records := []*model.ReferenceRecord{buchneraRecord(), wolbachiaRecord()}
	e := New(records, hostctx.NewWeigher(aphidProfile()))

	res, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Buchnera; s__Buchnera aphidicola", Abundance: 300},
		{TaxonLabel: "g__Wolbachia", Abundance: 200},
		{TaxonLabel: "g__Lactobacillus", Abundance: 500},
	})
	require.NoError(t, err)

	for _, c := range res.Candidates {
		assert.GreaterOrEqual(t, c.HostMatchWeight, 0.8)
		assert.LessOrEqual(t, c.HostMatchWeight, 1.5)
		assert.GreaterOrEqual(t, c.EvidenceWeight, 0.8)
		assert.LessOrEqual(t, c.EvidenceWeight, 1.5)
		assert.InDelta(t, c.BaseScore*c.HostMatchWeight*c.EvidenceWeight, c.FinalScore, 1e-9)
	}
	for _, s := range res.Summaries {
		assert.GreaterOrEqual(t, s.Probability, 0.0)
		assert.LessOrEqual(t, s.Probability, 1.0)
	}
}

func TestPredict_UnmatchedAbundanceAccounting(t *testing.T) {
	e := New([]*model.ReferenceRecord{wolbachiaRecord()}, nil)

	// The unmatched and unparseable rows dilute the matched row's relative
	// abundance but contribute to no function.
	res, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Wolbachia", Abundance: 25},
		{TaxonLabel: "g__Lactobacillus", Abundance: 50},
		{TaxonLabel: "not a taxonomy label", Abundance: 25},
	})
	require.NoError(t, err)

	require.Len(t, res.Candidates, 1)
	assert.InDelta(t, 25.0, res.Candidates[0].Match.Row.RelAbundancePct, 1e-9)
	assert.Equal(t, 2, res.Stats.UnmatchedRows)
	assert.Equal(t, 1, res.Stats.MatchedRows)
	assert.InDelta(t, 100.0, res.Stats.TotalAbundance, 1e-9)
}

func TestPredict_ZeroTotalAbundance(t *testing.T) {
	e := New([]*model.ReferenceRecord{wolbachiaRecord()}, nil)

	_, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Wolbachia", Abundance: 0},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total abundance is zero")
}

func TestPredict_Idempotent(t *testing.T) {
	records := []*model.ReferenceRecord{buchneraRecord(), wolbachiaRecord()}
	rows := []model.AbundanceRow{
		{TaxonLabel: "g__Buchnera; s__Buchnera aphidicola", Abundance: 120},
		{TaxonLabel: "g__Wolbachia", Abundance: 340},
		{TaxonLabel: "g__Lactobacillus", Abundance: 540},
	}

	e := New(records, hostctx.NewWeigher(aphidProfile()))
	first, err := e.Predict(rows)
	require.NoError(t, err)
	second, err := e.Predict(rows)
	require.NoError(t, err)

	assert.Equal(t, first.Candidates, second.Candidates)
	assert.Equal(t, first.Summaries, second.Summaries)
}

func TestPredict_NoHostAllWeightsNeutral(t *testing.T) {
	records := []*model.ReferenceRecord{buchneraRecord(), wolbachiaRecord()}
	e := New(records, nil)

	res, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Buchnera; s__Buchnera aphidicola", Abundance: 40},
		{TaxonLabel: "g__Wolbachia", Abundance: 60},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Candidates)

	for _, c := range res.Candidates {
		assert.Equal(t, model.HostMatchGeneral, c.HostMatchLevel)
		assert.Equal(t, 1.0, c.HostMatchWeight)
	}
}

func TestPredict_MultiFunctionFanout(t *testing.T) {
	defense := wolbachiaRecord()
	defense.Function = "Defense"
	records := []*model.ReferenceRecord{wolbachiaRecord(), defense}

	e := New(records, nil)
	res, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Wolbachia", Abundance: 30},
		{TaxonLabel: "g__Lactobacillus", Abundance: 70},
	})
	require.NoError(t, err)

	// One row, two documented functions: two candidates, two summaries,
	// each carrying the row's full relative abundance.
	assert.Len(t, res.Candidates, 2)
	require.Len(t, res.Summaries, 2)
	for _, s := range res.Summaries {
		assert.InDelta(t, 30.0, s.TotalRelAbundance, 1e-9)
		assert.Equal(t, 1, s.TaxaCount)
		assert.Equal(t, "Wolbachia (sp.)", s.DominantContributor)
	}
}

func TestPredict_SummaryOrderingAndDominant(t *testing.T) {
	records := []*model.ReferenceRecord{buchneraRecord(), wolbachiaRecord()}
	// A second nutrition contributor, weaker than Buchnera.
	records = append(records, &model.ReferenceRecord{
		TaxonLabel:    "d__Bacteria; g__Serratia; s__*",
		Function:      "Nutrition provisioning",
		Host:          model.GeneralHost,
		RecordType:    model.RecordTypeSymbiont,
		EvidenceLevel: 2,
	})

	e := New(records, hostctx.NewWeigher(aphidProfile()))
	res, err := e.Predict([]model.AbundanceRow{
		{TaxonLabel: "g__Buchnera; s__Buchnera aphidicola", Abundance: 500},
		{TaxonLabel: "g__Serratia", Abundance: 100},
		{TaxonLabel: "g__Wolbachia", Abundance: 50},
		{TaxonLabel: "g__Lactobacillus", Abundance: 350},
	})
	require.NoError(t, err)
	require.Len(t, res.Summaries, 2)

	nutrition := res.Summaries[0]
	assert.Equal(t, "Nutrition provisioning", nutrition.Function)
	assert.Equal(t, "Buchnera aphidicola", nutrition.DominantContributor)
	assert.Equal(t, 2, nutrition.TaxaCount)
	assert.InDelta(t, 60.0, nutrition.TotalRelAbundance, 1e-9)

	// Summaries ranked by final score sum, candidates by final score.
	assert.GreaterOrEqual(t, nutrition.FinalScoreSum, res.Summaries[1].FinalScoreSum)
	for i := 1; i < len(res.Candidates); i++ {
		assert.GreaterOrEqual(t, res.Candidates[i-1].FinalScore, res.Candidates[i].FinalScore)
	}
}
