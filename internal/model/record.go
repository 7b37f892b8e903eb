// Package model defines the typed records exchanged between the prediction
// engine, the reference record store, and the output writers.
package model

import "strings"

// RecordType classifies a reference record's relationship claim.
type RecordType string

const (
	RecordTypeSymbiont RecordType = "Symbiont"
	RecordTypeOther    RecordType = "Other"
)

// GeneralHost is the sentinel host value for records with no host specificity.
const GeneralHost = "General"

// ReferenceRecord is one curated symbiont-function relationship loaded from
// the reference store. Immutable after load.
type ReferenceRecord struct {
	TaxonLabel    string     `json:"taxon_label"`
	Function      string     `json:"function"`
	Host          string     `json:"host"`
	HostOrder     string     `json:"host_order,omitempty"`
	HostFamily    string     `json:"host_family,omitempty"`
	RecordType    RecordType `json:"record_type"`
	GenomeID      string     `json:"genome_id,omitempty"`
	Journal       string     `json:"journal,omitempty"`
	Description   string     `json:"description,omitempty"`
	Citation      string     `json:"citation,omitempty"`
	EvidenceLevel int        `json:"evidence_level"`
}

// IsGeneral reports whether the record carries the "General" host sentinel.
func (r *ReferenceRecord) IsGeneral() bool {
	return strings.EqualFold(strings.TrimSpace(r.Host), GeneralHost)
}

// Valid reports whether the record carries all required fields.
// Records failing this check are rejected at load time.
func (r *ReferenceRecord) Valid() bool {
	return strings.TrimSpace(r.TaxonLabel) != "" &&
		strings.TrimSpace(r.Host) != "" &&
		strings.TrimSpace(r.Function) != ""
}
