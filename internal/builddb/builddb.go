// Package builddb turns curated symbiont spreadsheets into the normalized
// reference records the prediction engine consumes: taxonomy labels in QIIME
// form, one record per function tag, evidence levels derived from the
// record's provenance.
package builddb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/evidence"
	"github.com/entolab/isympred/internal/fetcher"
	"github.com/entolab/isympred/internal/model"
)

// Options configures a build pass over one source file.
type Options struct {
	Mapping   ColumnMapping // nil means DefaultMapping
	SheetName string        // XLSX only
	SkipRows  int           // XLSX only
	Charset   string        // delimited text only
}

// Build reads a curated source file (.xlsx or delimited text) and returns
// deduplicated reference records. Rows without a symbiont genus are dropped;
// a header without one fails the build.
func Build(path string, opts Options) ([]*model.ReferenceRecord, error) {
	var rows [][]string
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		rows, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{
			SheetName: opts.SheetName,
			SkipRows:  opts.SkipRows,
		})
	} else {
		rows, err = fetcher.ReadTable(path, fetcher.TableOptions{Charset: opts.Charset})
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("builddb: %s has no data rows", path)
	}

	mapping := opts.Mapping
	if mapping == nil {
		mapping = DefaultMapping()
	}
	cols := mapping.resolve(rows[0])
	if _, ok := cols["symbiont_genus"]; !ok {
		return nil, eris.Errorf("builddb: %s has no symbiont genus column", path)
	}

	var records []*model.ReferenceRecord
	seen := make(map[model.ReferenceRecord]bool)
	var skipped int
	for _, row := range rows[1:] {
		recs, ok := buildRecords(row, cols)
		if !ok {
			skipped++
			continue
		}
		for _, rec := range recs {
			if seen[*rec] {
				continue
			}
			seen[*rec] = true
			records = append(records, rec)
		}
	}

	zap.L().Info("builddb: built reference records",
		zap.String("source", path),
		zap.Int("rows", len(rows)-1),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped),
	)
	return records, nil
}

// buildRecords converts one source row into zero or more records, one per
// function tag.
func buildRecords(row []string, cols map[string]int) ([]*model.ReferenceRecord, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	genus := cleanRank(field("symbiont_genus"))
	if genus == "*" {
		return nil, false
	}

	host := field("host_species")
	if host == "" {
		host = model.GeneralHost
	}

	base := model.ReferenceRecord{
		TaxonLabel:  qiimeLabel(row, cols, genus),
		Host:        host,
		HostOrder:   field("host_order"),
		HostFamily:  field("host_family"),
		RecordType:  parseRecordType(field("record_type")),
		GenomeID:    cleanOptional(field("genome_id")),
		Journal:     field("journal"),
		Description: field("function_desc"),
		Citation:    field("doi"),
	}
	base.EvidenceLevel = evidence.Classify(&base)

	tags := splitFunctionTags(field("function_tags"))
	if len(tags) == 0 {
		// No function tag column or no usable tags: fall back to the
		// free-text function description as a single tag.
		desc := field("function_desc")
		if desc == "" {
			return nil, false
		}
		tags = []string{desc}
	}

	records := make([]*model.ReferenceRecord, 0, len(tags))
	for _, tag := range tags {
		rec := base
		rec.Function = tag
		records = append(records, &rec)
	}
	return records, true
}

// qiimeLabel builds the d__/p__/c__/o__/f__/g__/s__ taxonomy string for one
// row. Class and family are never present in the sources, so they carry the
// '*' placeholder.
func qiimeLabel(row []string, cols map[string]int, genus string) string {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	domain := cleanRank(field("symbiont_domain"))
	phylum := cleanRank(field("symbiont_phylum"))
	if domain == "*" && phylum != "*" {
		domain = "Bacteria"
	}
	order := cleanRank(field("symbiont_order"))

	species := speciesFromName(genus, field("symbiont_name"))

	return fmt.Sprintf("d__%s; p__%s; c__*; o__%s; f__*; g__%s; s__%s",
		domain, phylum, order, genus, species)
}

var nonAlpha = regexp.MustCompile(`[^a-zA-Z\-_]`)

// invalidEpithets are placeholder species epithets that mean "unknown".
var invalidEpithets = map[string]bool{
	"sp": true, "spp": true, "none": true, "unknown": true,
	"nan": true, "null": true,
}

// speciesFromName recovers a binomial from the free-text symbiont name when
// its first word agrees with the genus and its second word is a real
// epithet. Anything else degrades to the '*' placeholder.
func speciesFromName(genus, rawName string) string {
	parts := strings.Fields(rawName)
	if len(parts) < 2 {
		return "*"
	}
	potGenus := nonAlpha.ReplaceAllString(parts[0], "")
	epithet := nonAlpha.ReplaceAllString(parts[1], "")
	if !strings.EqualFold(potGenus, genus) {
		return "*"
	}
	lower := strings.ToLower(strings.TrimSuffix(epithet, "."))
	if lower == "" || invalidEpithets[lower] {
		return "*"
	}
	return genus + " " + epithet
}

// cleanRank normalizes a rank cell to its value or the '*' placeholder.
func cleanRank(s string) string {
	switch strings.ToLower(s) {
	case "", "none", "nan", "unknown", "null", "*":
		return "*"
	}
	return s
}

// cleanOptional blanks the placeholder spellings for optional fields.
func cleanOptional(s string) string {
	switch strings.ToLower(s) {
	case "none", "nan", "null", "na":
		return ""
	}
	return s
}

func parseRecordType(s string) model.RecordType {
	if strings.EqualFold(strings.TrimSpace(s), "symbiont") || strings.TrimSpace(s) == "" {
		return model.RecordTypeSymbiont
	}
	return model.RecordTypeOther
}

// splitFunctionTags explodes a comma-separated tag cell, dropping
// placeholder values.
func splitFunctionTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		switch strings.ToLower(tag) {
		case "", "none", "nan", "null":
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
