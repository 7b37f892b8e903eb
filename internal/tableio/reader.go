// Package tableio reads abundance tables and writes the two prediction
// output tables as tab-separated files.
package tableio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/model"
)

// ReadAbundance parses a tab-separated abundance table: taxonomy labels in
// the first column, counts or proportions in the second. A header row is
// detected by the second field failing to parse as a number. Rows with an
// unparsable abundance are dropped with a warning.
func ReadAbundance(path string) ([]model.AbundanceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tableio: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	raw, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "tableio: parse %s", path)
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("tableio: %s is empty", path)
	}

	start := 0
	if len(raw[0]) < 2 {
		return nil, eris.Errorf("tableio: %s needs at least two columns", path)
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(raw[0][1]), 64); err != nil {
		start = 1
	}

	var rows []model.AbundanceRow
	var dropped int
	for i, fields := range raw[start:] {
		if len(fields) < 2 {
			dropped++
			continue
		}
		label := strings.TrimSpace(fields[0])
		ab, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil || label == "" {
			dropped++
			zap.L().Warn("tableio: dropping abundance row",
				zap.String("file", filepath.Base(path)),
				zap.Int("line", start+i+1),
			)
			continue
		}
		rows = append(rows, model.AbundanceRow{TaxonLabel: label, Abundance: ab})
	}

	if len(rows) == 0 {
		return nil, eris.Errorf("tableio: %s contains no usable rows", path)
	}
	zap.L().Info("tableio: loaded abundance table",
		zap.String("file", filepath.Base(path)),
		zap.Int("rows", len(rows)),
		zap.Int("dropped", dropped),
	)
	return rows, nil
}
