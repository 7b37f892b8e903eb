package model

// AbundanceRow is one line of the input community table: a hierarchical
// taxonomy label and its observed read count.
type AbundanceRow struct {
	TaxonLabel string  `json:"taxon_label"`
	Abundance  float64 `json:"abundance"`
	// RelAbundancePct is the row's share of the sample total, as a
	// percentage. Filled in by the engine before scoring.
	RelAbundancePct float64 `json:"relative_abundance_pct"`
}

// HostProfile is the resolved taxonomy of the user-supplied host. A nil
// profile disables host-specific weighting.
type HostProfile struct {
	InputName string `json:"input_name"`
	Order     string `json:"order"`
	Family    string `json:"family"`
	Genus     string `json:"genus"`
	Species   string `json:"species"`
}
