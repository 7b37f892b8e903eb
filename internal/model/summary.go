package model

// FunctionSummary aggregates all scored candidates sharing one function tag.
// Recomputed fully each run.
type FunctionSummary struct {
	Function            string  `json:"function"`
	FinalScoreSum       float64 `json:"final_score_sum"`
	TotalRelAbundance   float64 `json:"total_relative_abundance_pct"`
	MeanConfidence      float64 `json:"mean_confidence"`
	MeanHostMatch       float64 `json:"mean_host_match"`
	MeanEvidenceWeight  float64 `json:"mean_evidence_weight"`
	TaxaCount           int     `json:"taxa_count"`
	Probability         float64 `json:"probability"`
	DominantContributor string  `json:"dominant_contributor"`
}

// RunStats summarizes one prediction pass for logging and the run log.
type RunStats struct {
	TotalRows      int     `json:"total_rows"`
	MatchedRows    int     `json:"matched_rows"`
	UnmatchedRows  int     `json:"unmatched_rows"`
	TotalAbundance float64 `json:"total_abundance"`
	Candidates     int     `json:"candidates"`
	Functions      int     `json:"functions"`
}
