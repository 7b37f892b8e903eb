package tableio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/entolab/isympred/internal/model"
)

// maxDescriptionLen caps the description carried into the detail table.
const maxDescriptionLen = 100

// FunctionsPath derives the summary table path from an output base path,
// e.g. "out.tsv" becomes "out_functions.tsv".
func FunctionsPath(base string) string {
	return suffixPath(base, "_functions")
}

// CandidatesPath derives the detail table path from an output base path.
func CandidatesPath(base string) string {
	return suffixPath(base, "_potential_symbionts")
}

func suffixPath(base, suffix string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".tsv"
	}
	if strings.HasSuffix(stem, suffix) {
		return stem + ext
	}
	return stem + suffix + ext
}

var functionColumns = []string{
	"Function", "Final_Score_Sum", "Total_RA_Pct", "Mean_Confidence",
	"Mean_Host_Match", "Mean_Evidence_Weight", "Taxa_Count", "Probability",
	"Dominant_Contributor",
}

var candidateColumns = []string{
	"Symbiont_Taxon", "Predicted_Function", "Final_Score", "Base_Score",
	"Host_Match_Weight", "Host_Match_Level", "Evidence_Level",
	"Evidence_Weight", "Match_Level", "Relative_Abundance_Pct",
	"DB_Host_Context", "DB_Description", "DB_Evidence",
}

// WriteFunctions writes the per-function summary table.
func WriteFunctions(path string, summaries []model.FunctionSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Function,
			round(s.FinalScoreSum, 1),
			round(s.TotalRelAbundance, 3),
			round(s.MeanConfidence, 2),
			round(s.MeanHostMatch, 2),
			round(s.MeanEvidenceWeight, 2),
			strconv.Itoa(s.TaxaCount),
			round(s.Probability, 3),
			s.DominantContributor,
		})
	}
	return writeTSV(path, functionColumns, rows)
}

// WriteCandidates writes the per-taxon detail table.
func WriteCandidates(path string, candidates []model.ScoredCandidate) error {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			c.Match.DisplayName,
			c.Match.Record.Function,
			round(c.FinalScore, 1),
			round(c.BaseScore, 1),
			round(c.HostMatchWeight, 2),
			string(c.HostMatchLevel),
			strconv.Itoa(c.EvidenceLevel),
			round(c.EvidenceWeight, 2),
			string(c.Match.Rank),
			round(c.Match.Row.RelAbundancePct, 4),
			c.Match.Record.Host,
			truncate(c.Match.Record.Description, maxDescriptionLen),
			c.Match.Record.Citation,
		})
	}
	return writeTSV(path, candidateColumns, rows)
}

// RenderSummaries formats the top summaries as an aligned console table.
func RenderSummaries(summaries []model.FunctionSummary, limit int) string {
	if len(summaries) == 0 {
		return "no functions predicted\n"
	}
	if limit <= 0 || limit > len(summaries) {
		limit = len(summaries)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %12s %12s %6s %12s\n",
		"Function", "Score", "Total RA%", "Taxa", "Probability")
	for _, s := range summaries[:limit] {
		fmt.Fprintf(&b, "%-40s %12s %12s %6d %12s\n",
			truncate(s.Function, 40),
			round(s.FinalScoreSum, 1),
			round(s.TotalRelAbundance, 3),
			s.TaxaCount,
			round(s.Probability, 3),
		)
	}
	return b.String()
}

func writeTSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "tableio: create %s", path)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		f.Close()
		return eris.Wrapf(err, "tableio: write header %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return eris.Wrapf(err, "tableio: write row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return eris.Wrapf(err, "tableio: flush %s", path)
	}
	return eris.Wrapf(f.Close(), "tableio: close %s", path)
}

func round(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
