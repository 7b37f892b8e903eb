package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entolab/isympred/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		rec      model.ReferenceRecord
		expected int
	}{
		{
			"other record, no signals",
			model.ReferenceRecord{RecordType: model.RecordTypeOther},
			1,
		},
		{
			"symbiont only",
			model.ReferenceRecord{RecordType: model.RecordTypeSymbiont},
			2,
		},
		{
			"symbiont with genome",
			model.ReferenceRecord{RecordType: model.RecordTypeSymbiont, GenomeID: "GCF_000009605.1"},
			4,
		},
		{
			"symbiont with top journal",
			model.ReferenceRecord{RecordType: model.RecordTypeSymbiont, Journal: "Nature Microbiology"},
			3,
		},
		{
			"all signals",
			model.ReferenceRecord{RecordType: model.RecordTypeSymbiont, GenomeID: "GCF_000009605.1", Journal: "Science"},
			5,
		},
		{
			"genome without symbiont type",
			model.ReferenceRecord{RecordType: model.RecordTypeOther, GenomeID: "GCA_001274515.1"},
			3,
		},
		{
			"placeholder genome ignored",
			model.ReferenceRecord{RecordType: model.RecordTypeSymbiont, GenomeID: "None"},
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(&tt.rec))
		})
	}
}

func TestWeight(t *testing.T) {
	assert.Equal(t, 1.5, Weight(5))
	assert.Equal(t, 1.3, Weight(4))
	assert.Equal(t, 1.15, Weight(3))
	assert.Equal(t, 1.0, Weight(2))
	assert.Equal(t, 0.8, Weight(1))

	// Out-of-range levels fall back to the default weight.
	assert.Equal(t, 1.0, Weight(0))
	assert.Equal(t, 1.0, Weight(7))
}

func TestWeightBounds(t *testing.T) {
	for level := 1; level <= 5; level++ {
		w := Weight(level)
		assert.GreaterOrEqual(t, w, 0.8)
		assert.LessOrEqual(t, w, 1.5)
	}
}

func TestIsTopJournal(t *testing.T) {
	assert.True(t, IsTopJournal("Nature"))
	assert.True(t, IsTopJournal("nature communications"))
	assert.True(t, IsTopJournal("SCIENCE"))
	assert.True(t, IsTopJournal("Science Advances"))
	assert.True(t, IsTopJournal("Cell Host & Microbe"))
	assert.True(t, IsTopJournal("ISME Journal"))

	assert.False(t, IsTopJournal(""))
	assert.False(t, IsTopJournal("Journal of Insect Physiology"))
	// Prefix matching requires a word boundary.
	assert.False(t, IsTopJournal("Cellular Microbiology"))
	assert.False(t, IsTopJournal("Natures Best"))
}

func TestHasGenome(t *testing.T) {
	assert.True(t, HasGenome("GCF_000009605.1"))
	assert.False(t, HasGenome(""))
	assert.False(t, HasGenome("  "))
	assert.False(t, HasGenome("none"))
	assert.False(t, HasGenome("NaN"))
	assert.False(t, HasGenome("N/A"))
}
