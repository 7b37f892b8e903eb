package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.tsv")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadTable_NormalizesRaggedRows(t *testing.T) {
	path := writeTable(t, []byte(
		"Genus\tHost\tFunction\n"+
			"Buchnera\tAcyrthosiphon pisum\tNutrition\textra\tcolumns\n"+
			"Wolbachia\tGeneral\n"))

	rows, err := ReadTable(path, TableOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Over-wide rows are truncated to the header width, short rows padded.
	assert.Equal(t, []string{"Buchnera", "Acyrthosiphon pisum", "Nutrition"}, rows[1])
	assert.Equal(t, []string{"Wolbachia", "General", ""}, rows[2])
}

func TestReadTable_NoQuoteHandling(t *testing.T) {
	path := writeTable(t, []byte(
		"Genus\tDescription\n"+
			"Sodalis\t\"unbalanced quote in free text\n"))

	rows, err := ReadTable(path, TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, `"unbalanced quote in free text`, rows[1][1])
}

func TestReadTable_Charset(t *testing.T) {
	// "Présence" in windows-1252: é is a single 0xE9 byte.
	raw := append([]byte("Genus\tDescription\nRegiella\tPr"), 0xE9)
	raw = append(raw, []byte("sence\n")...)
	path := writeTable(t, raw)

	rows, err := ReadTable(path, TableOptions{Charset: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "Présence", rows[1][1])
}

func TestReadTable_UnknownCharset(t *testing.T) {
	path := writeTable(t, []byte("a\tb\n"))
	_, err := ReadTable(path, TableOptions{Charset: "no-such-charset"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}

func TestReadTable_Empty(t *testing.T) {
	path := writeTable(t, nil)
	_, err := ReadTable(path, TableOptions{})
	require.Error(t, err)
}
