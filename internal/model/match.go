package model

// RankLevel is the taxonomic rank at which an abundance row matched a
// reference record.
type RankLevel string

const (
	RankSpecies   RankLevel = "Species"
	RankGenus     RankLevel = "Genus"
	RankFamily    RankLevel = "Family"
	RankOrder     RankLevel = "Order"
	RankUnmatched RankLevel = "Unmatched"
)

// HostMatchLevel is the taxonomic distance between the user host and a
// record's declared host.
type HostMatchLevel string

const (
	HostMatchSpecies  HostMatchLevel = "Species"
	HostMatchGenus    HostMatchLevel = "Genus"
	HostMatchFamily   HostMatchLevel = "Family"
	HostMatchOrder    HostMatchLevel = "Order"
	HostMatchGeneral  HostMatchLevel = "General"
	HostMatchMismatch HostMatchLevel = "Mismatch"
)

// MatchResult pairs an abundance row with one reference record it matched,
// at a given rank. Unmatched pairs never become MatchResults.
type MatchResult struct {
	Row         AbundanceRow     `json:"row"`
	Record      *ReferenceRecord `json:"record"`
	Rank        RankLevel        `json:"rank"`
	MatchWeight float64          `json:"taxon_match_weight"`
	// DisplayName is the simplified taxon name used in output tables,
	// e.g. "Buchnera aphidicola" or "Wolbachia (sp.)".
	DisplayName string `json:"display_name"`
}

// ScoredCandidate is a fully weighted (taxon, function, record) combination.
// Immutable once computed.
type ScoredCandidate struct {
	Match           MatchResult    `json:"match"`
	BaseScore       float64        `json:"base_score"`
	HostMatchLevel  HostMatchLevel `json:"host_match_level"`
	HostMatchWeight float64        `json:"host_match_weight"`
	EvidenceLevel   int            `json:"evidence_level"`
	EvidenceWeight  float64        `json:"evidence_weight"`
	FinalScore      float64        `json:"final_score"`
}
