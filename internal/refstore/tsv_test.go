package refstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entolab/isympred/internal/model"
)

const sampleTSV = "taxonomy\tfunction\thost\thost_order\thost_family\tsymbiont\tgenome_id\tjournal\tdescription\tevidence\tevidence_level\n" +
	"d__Bacteria; g__Buchnera; s__Buchnera aphidicola\tNutrition provisioning\tAcyrthosiphon pisum\tHemiptera\tAphididae\tSymbiont\tGCF_000009605.1\tNature\tEssential amino acid synthesis\t10.1000/x1\t5\n" +
	"d__Bacteria; g__Wolbachia; s__*\tReproductive manipulation\tGeneral\t\t\tSymbiont\t\t\t\t\t3\n" +
	"d__Bacteria; g__Serratia; s__*\tDefense\tAcyrthosiphon pisum\tHemiptera\tAphididae\tOther\t\tCurrent Biology\t\t10.1000/x2\tbogus\n" +
	"\tNutrition provisioning\tGeneral\t\t\t\t\t\t\t\t2\n"

func writeTSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "record_db.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTSVStore_Load(t *testing.T) {
	var _ Store = &TSVStore{}

	s := NewTSV(writeTSV(t, sampleTSV))
	records, err := s.Load(context.Background())
	require.NoError(t, err)

	// The row with an empty taxonomy is dropped.
	require.Len(t, records, 3)

	buchnera := records[0]
	assert.Equal(t, "Nutrition provisioning", buchnera.Function)
	assert.Equal(t, "Acyrthosiphon pisum", buchnera.Host)
	assert.Equal(t, "Aphididae", buchnera.HostFamily)
	assert.Equal(t, model.RecordTypeSymbiont, buchnera.RecordType)
	assert.Equal(t, "GCF_000009605.1", buchnera.GenomeID)
	assert.Equal(t, 5, buchnera.EvidenceLevel)

	assert.Equal(t, model.RecordTypeOther, records[2].RecordType)
	// "bogus" is unparsable, left for the engine to default.
	assert.Equal(t, 0, records[2].EvidenceLevel)
}

func TestTSVStore_Load_HeaderAliases(t *testing.T) {
	content := "Taxon\tFunctions\tHost Species\tRecord Type\tDOI\tLevel\n" +
		"g__Wolbachia; s__*\tDefense\tGeneral\tSymbiont\t10.1000/x3\t4\n"
	s := NewTSV(writeTSV(t, content))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Defense", records[0].Function)
	assert.Equal(t, "10.1000/x3", records[0].Citation)
	assert.Equal(t, 4, records[0].EvidenceLevel)
}

func TestTSVStore_Load_MissingRequiredColumn(t *testing.T) {
	s := NewTSV(writeTSV(t, "taxonomy\thost\ng__Wolbachia\tGeneral\n"))
	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "function"`)
}

func TestTSVStore_Load_FileMissing(t *testing.T) {
	s := NewTSV(filepath.Join(t.TempDir(), "nope.tsv"))
	_, err := s.Load(context.Background())
	require.Error(t, err)
}

func TestTSVStore_ReplaceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record_db.tsv")
	s := NewTSV(path)

	records := []*model.ReferenceRecord{
		{
			TaxonLabel:    "d__Bacteria; g__Buchnera; s__Buchnera aphidicola",
			Function:      "Nutrition provisioning",
			Host:          "Acyrthosiphon pisum",
			HostOrder:     "Hemiptera",
			HostFamily:    "Aphididae",
			RecordType:    model.RecordTypeSymbiont,
			GenomeID:      "GCF_000009605.1",
			Journal:       "Nature",
			Citation:      "10.1000/x1",
			EvidenceLevel: 5,
		},
		{
			TaxonLabel: "d__Bacteria; g__Wolbachia; s__*",
			Function:   "Reproductive manipulation",
			Host:       model.GeneralHost,
			RecordType: model.RecordTypeSymbiont,
		},
	}

	n, err := s.Replace(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, records[0].TaxonLabel, loaded[0].TaxonLabel)
	assert.Equal(t, records[0].EvidenceLevel, loaded[0].EvidenceLevel)
	assert.Equal(t, records[1].Host, loaded[1].Host)
	assert.Equal(t, 0, loaded[1].EvidenceLevel)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestOpen_DefaultsToTSV(t *testing.T) {
	s, err := Open(context.Background(), "", "record_db.tsv")
	require.NoError(t, err)
	_, ok := s.(*TSVStore)
	assert.True(t, ok)
}
