package builddb

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ColumnMapping maps canonical field names to the column headings curators
// use in their spreadsheets. Matching is exact after trimming.
type ColumnMapping map[string][]string

// DefaultMapping covers the headings seen across the curated source
// spreadsheets collected so far.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		"record_type":     {"Record Type", "Record_Type"},
		"symbiont_domain": {"Classification", "Domain", "Kingdom"},
		"symbiont_phylum": {"Symbiont Phylum", "Symbiont_Phylum"},
		"symbiont_order":  {"Symbiont Order", "Symbiont_Order"},
		"symbiont_genus":  {"Symbiont Genus", "Symbiont_Genus", "Genus"},
		"symbiont_name":   {"Symbiont Name", "Symbiont_Name", "Species"},
		"host_order":      {"Order", "Host Order"},
		"host_family":     {"Family", "Host Family"},
		"host_species":    {"Insect Species", "Insect_Species", "Host"},
		"function_tags":   {"Function Tag", "Function_Tag"},
		"function_desc":   {"Function", "Function Description", "Description"},
		"doi":             {"doi", "DOI", "Doi"},
		"genome_id":       {"Genome ID", "Genome_ID", "GenomeID"},
		"journal":         {"Journal", "journal"},
	}
}

// mappingFile is the YAML shape for custom column mappings.
type mappingFile struct {
	Columns map[string][]string `yaml:"columns"`
}

// LoadMapping reads a YAML mapping file and overlays it on the defaults.
// Custom headings are tried before the built-in ones.
func LoadMapping(path string) (ColumnMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "builddb: read mapping %s", path)
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, eris.Wrapf(err, "builddb: parse mapping %s", path)
	}

	mapping := DefaultMapping()
	for field, headings := range mf.Columns {
		if _, known := mapping[field]; !known {
			return nil, eris.Errorf("builddb: mapping %s names unknown field %q", path, field)
		}
		mapping[field] = append(append([]string{}, headings...), mapping[field]...)
	}
	return mapping, nil
}

// resolve locates each canonical field in the header row. Missing optional
// fields simply stay unmapped.
func (m ColumnMapping) resolve(header []string) map[string]int {
	byHeading := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := byHeading[h]; !dup {
			byHeading[h] = i
		}
	}

	cols := make(map[string]int, len(m))
	for field, headings := range m {
		for _, h := range headings {
			if i, ok := byHeading[h]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}
