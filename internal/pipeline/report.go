package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jdiegots/congreso-2025/internal"
)

// Summary is the run record written to summary.json. The JSON keys are the
// original output contract and are consumed downstream by name.
type Summary struct {
	SessionsCSV          string   `json:"votaciones_csv"`
	VoteChunks           []string `json:"votos_chunks"`
	ReportsDir           string   `json:"reports_dir"`
	Sessions             int      `json:"votaciones"`
	Votes                int      `json:"votos"`
	UnmatchedDeputies    int      `json:"unmatched_diputados_distintos"`
	AmbiguousDeputies    int      `json:"ambiguous_diputados_distintos"`
	UnmatchedInitiatives int      `json:"unmatched_iniciativas_distintas"`
	AmbiguousInitiatives int      `json:"ambiguous_iniciativas_distintas"`
	ParseFailures        int      `json:"parse_errors"`
}

var initiativeReportHeader = []string{
	"zip", "xml", "fecha", "sesion", "numero",
	"titulo_punto", "texto_expediente", "best_score", "second_best",
}

func WriteReports(dir string, diag *Diagnostics) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	deputyHeader := []string{"diputado_xml_norm", "veces"}
	if err := writeCSV(filepath.Join(dir, "unmatched_diputados.csv"), deputyHeader, countRows(diag.UnmatchedDeputies)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "ambiguous_diputados.csv"), deputyHeader, countRows(diag.AmbiguousDeputies)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "unmatched_iniciativas.csv"), initiativeReportHeader, sampleRows(diag.UnmatchedInitiatives())); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "ambiguous_iniciativas.csv"), initiativeReportHeader, sampleRows(diag.AmbiguousInitiatives())); err != nil {
		return err
	}

	return writeCSV(filepath.Join(dir, "parse_errors.csv"), []string{"zip", "xml", "error"}, failureRows(diag.ParseFailures))
}

func failureRows(failures []internal.ParseFailure) [][]string {
	out := make([][]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, []string{f.Zip, f.XML, f.Error})
	}
	return out
}

func WriteStats(path string, stats map[string]*internal.VoteTotals) error {
	blob, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(blob, '\n'), 0o644)
}

func WriteSummary(path string, s Summary) error {
	blob, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(blob, '\n'), 0o644)
}

// countRows sorts a counter map by count descending, key ascending on ties.
func countRows(counts map[string]int) [][]string {
	type kv struct {
		key   string
		count int
	}
	rows := make([]kv, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, kv{key: k, count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.key, strconv.Itoa(r.count)})
	}
	return out
}

func sampleRows(samples []InitiativeSample) [][]string {
	out := make([][]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, []string{
			s.Zip, s.XML, s.Date, s.Session, s.Number,
			s.Title, s.Matter, s.BestScore, s.SecondBest,
		})
	}
	return out
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
