package engine

import "math"

// scoreScale turns log-compressed abundance into a readable 0-200ish range.
const scoreScale = 100.0

// baseScore computes the taxon contribution score from its match weight and
// relative abundance percentage. The +1 keeps zero abundance finite; the log
// keeps a single dominant taxon from swamping everything else.
func baseScore(matchWeight, relAbundancePct float64) float64 {
	return matchWeight * math.Log10(relAbundancePct+1) * scoreScale
}

// finalScore applies the host-match and evidence multipliers to a base score.
func finalScore(base, hostWeight, evidenceWeight float64) float64 {
	return base * hostWeight * evidenceWeight
}
