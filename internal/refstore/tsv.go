package refstore

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/model"
)

// tsvColumns is the canonical column order written by Replace. Readers are
// tolerant of extra columns and alternative orderings.
var tsvColumns = []string{
	"taxonomy", "function", "host", "host_order", "host_family",
	"symbiont", "genome_id", "journal", "description", "evidence",
	"evidence_level",
}

// headerAliases maps column spellings seen in curated spreadsheets to the
// canonical names.
var headerAliases = map[string]string{
	"taxon":        "taxonomy",
	"taxon_label":  "taxonomy",
	"functions":    "function",
	"host_species": "host",
	"record_type":  "symbiont",
	"type":         "symbiont",
	"genome":       "genome_id",
	"citation":     "evidence",
	"doi":          "evidence",
	"level":        "evidence_level",
}

// TSVStore reads and writes reference records as a tab-separated file.
type TSVStore struct {
	path string
}

// NewTSV returns a store over the TSV file at path. The file is opened
// lazily on Load.
func NewTSV(path string) *TSVStore {
	return &TSVStore{path: path}
}

// Migrate is a no-op for the flat-file backend.
func (s *TSVStore) Migrate(context.Context) error { return nil }

func (s *TSVStore) Close() error { return nil }

// Load parses the TSV file into records. Rows missing a required field
// (taxonomy, function, host) are dropped with a warning; a header missing a
// required column fails the whole load.
func (s *TSVStore) Load(_ context.Context) ([]*model.ReferenceRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "refstore: open %s", s.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "refstore: parse %s", s.path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("refstore: %s is empty", s.path)
	}

	cols, err := indexHeader(rows[0])
	if err != nil {
		return nil, eris.Wrapf(err, "refstore: %s", s.path)
	}

	var records []*model.ReferenceRecord
	var dropped int
	for i, row := range rows[1:] {
		rec := recordFromRow(row, cols)
		if !rec.Valid() {
			dropped++
			zap.L().Warn("refstore: dropping record with missing required field",
				zap.String("file", filepath.Base(s.path)),
				zap.Int("line", i+2),
			)
			continue
		}
		records = append(records, rec)
	}

	zap.L().Info("refstore: loaded TSV",
		zap.String("file", filepath.Base(s.path)),
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped),
	)
	return records, nil
}

// Replace writes all records to a temp file and renames it over the target,
// so a crash mid-write never truncates the reference database.
func (s *TSVStore) Replace(_ context.Context, records []*model.ReferenceRecord) (int, error) {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".refstore-*.tsv")
	if err != nil {
		return 0, eris.Wrap(err, "refstore: create temp file")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	w.Comma = '\t'

	if err := w.Write(tsvColumns); err != nil {
		tmp.Close()
		return 0, eris.Wrap(err, "refstore: write header")
	}
	for _, rec := range records {
		if err := w.Write(rowFromRecord(rec)); err != nil {
			tmp.Close()
			return 0, eris.Wrap(err, "refstore: write record")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return 0, eris.Wrap(err, "refstore: flush")
	}
	if err := tmp.Close(); err != nil {
		return 0, eris.Wrap(err, "refstore: close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return 0, eris.Wrapf(err, "refstore: rename over %s", s.path)
	}
	return len(records), nil
}

// indexHeader maps canonical column names to field positions.
func indexHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"taxonomy", "function", "host"} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

func recordFromRow(row []string, cols map[string]int) *model.ReferenceRecord {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	return &model.ReferenceRecord{
		TaxonLabel:    field("taxonomy"),
		Function:      field("function"),
		Host:          field("host"),
		HostOrder:     field("host_order"),
		HostFamily:    field("host_family"),
		RecordType:    parseRecordType(field("symbiont")),
		GenomeID:      field("genome_id"),
		Journal:       field("journal"),
		Description:   field("description"),
		Citation:      field("evidence"),
		EvidenceLevel: parseEvidenceLevel(field("evidence_level")),
	}
}

func rowFromRecord(rec *model.ReferenceRecord) []string {
	level := ""
	if rec.EvidenceLevel > 0 {
		level = strconv.Itoa(rec.EvidenceLevel)
	}
	return []string{
		rec.TaxonLabel, rec.Function, rec.Host, rec.HostOrder, rec.HostFamily,
		string(rec.RecordType), rec.GenomeID, rec.Journal, rec.Description,
		rec.Citation, level,
	}
}

// parseRecordType folds the spellings curators use for the symbiont flag.
// An empty field defaults to Symbiont since that is what the store curates.
func parseRecordType(s string) model.RecordType {
	switch strings.ToLower(s) {
	case "", "symbiont", "yes", "y", "true", "1":
		return model.RecordTypeSymbiont
	default:
		return model.RecordTypeOther
	}
}

// parseEvidenceLevel returns 0 for a missing or unparsable level; the engine
// substitutes its default downstream.
func parseEvidenceLevel(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		zap.L().Warn("refstore: unparsable evidence_level", zap.String("value", s))
		return 0
	}
	level := int(v)
	if level < 1 || level > 5 {
		zap.L().Warn("refstore: evidence_level out of range", zap.String("value", s))
		return 0
	}
	return level
}
