package pipeline

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdiegots/congreso-2025/internal"
	"github.com/jdiegots/congreso-2025/internal/config"
)

const malformedBallotXML = `<Resultado><Informacion><Sesion>1`

func testConfig(zipsDir, outDir string) config.Config {
	return config.Config{
		ZipsDir:             zipsDir,
		OutputDir:           outDir,
		VoteChunkSize:       3,
		MatchHighThreshold:  0.85,
		MatchMidThreshold:   0.70,
		MatchGapThreshold:   0.05,
		MatchAmbiguousFloor: 0.60,
		CandidateAnchorMax:  2000,
		CandidatePruneAt:    1500,
		CandidateShortlist:  800,
	}
}

func writeZip(t *testing.T, dir string, members map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range []string{"0001.xml", "0002.xml"} {
		content, ok := members[name]
		if !ok {
			continue
		}
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "votes.zip"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testFixture(t *testing.T) ([]internal.DeputyRecord, []internal.InitiativeRecord, string) {
	t.Helper()
	zipsDir := t.TempDir()
	writeZip(t, zipsDir, map[string]string{
		"0001.xml": sampleBallotXML,
		"0002.xml": malformedBallotXML,
	})

	deputies := []internal.DeputyRecord{
		{ID: "1", Name: "Ana García"},
		{ID: "2", Name: "Pérez Gómez, Juan"},
		{ID: "3", Name: "López Ruiz, María"},
		{ID: "4", Name: "López Ruiz, María"},
	}
	initiatives := []internal.InitiativeRecord{
		{ID: "A", Title: "Ley 9/2025, de 3 de diciembre, de Movilidad Sostenible"},
		{ID: "B", Title: "Proyecto de Ley de Presupuestos Generales del Estado"},
	}
	return deputies, initiatives, zipsDir
}

func TestBuildSmoke(t *testing.T) {
	deputies, initiatives, zipsDir := testFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	svc := NewBuildService(testConfig(zipsDir, outDir), deputies, initiatives)
	res, err := svc.Run()
	if err != nil {
		t.Fatal(err)
	}

	s := res.Summary
	if s.Sessions != 1 || s.Votes != 2 || s.ParseFailures != 1 {
		t.Fatalf("summary: %+v", s)
	}
	if len(s.VoteChunks) != 1 || s.VoteChunks[0] != "votos_0.csv" {
		t.Fatalf("chunks: %v", s.VoteChunks)
	}

	rows := readCSV(t, filepath.Join(outDir, "votaciones.csv"))
	if len(rows) != 2 {
		t.Fatalf("votaciones rows: %d", len(rows))
	}
	row := rows[1]
	if row[0] != "1" || row[1] != "votes.zip__0001.xml__S19_V3_2025-12-03" {
		t.Fatalf("row: %v", row)
	}
	if row[6] != "2025-12-03" {
		t.Fatalf("fecha: %q", row[6])
	}
	if row[15] != "A" || row[16] != "ok" {
		t.Fatalf("initiative link: %v", row)
	}

	votes := readCSV(t, filepath.Join(outDir, "votos_0.csv"))
	if len(votes) != 3 {
		t.Fatalf("votos rows: %d", len(votes))
	}
	if votes[1][0] != "1" || votes[1][1] != "1" || votes[1][2] != "García, Ana" || votes[1][4] != "Sí" {
		t.Fatalf("vote row: %v", votes[1])
	}

	var stats map[string]internal.VoteTotals
	blob, err := os.ReadFile(filepath.Join(outDir, "stats_diputados.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(blob, &stats); err != nil {
		t.Fatal(err)
	}
	if stats["1"].Si != 1 || stats["2"].No != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	failures := readCSV(t, filepath.Join(outDir, "reports", "parse_errors.csv"))
	if len(failures) != 2 || failures[1][0] != "votes.zip" || failures[1][1] != "0002.xml" {
		t.Fatalf("parse errors: %v", failures)
	}
	if _, err := os.Stat(filepath.Join(outDir, "reports", "diagnostics.xlsx")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "summary.json")); err != nil {
		t.Fatal(err)
	}
}

func TestBuildDiagnostics(t *testing.T) {
	deputies, initiatives, zipsDir := testFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	ambiguous := `<Resultado>
  <Informacion><Sesion>20</Sesion><NumeroVotacion>1</NumeroVotacion><Fecha>04/12/2025</Fecha>
  <Titulo>Punto 1</Titulo><TextoExpediente>Asunto sin expediente conocido</TextoExpediente></Informacion>
  <Votaciones>
    <Votacion><Diputado>López Ruiz, María</Diputado><Grupo>GM</Grupo><Voto>Abstención</Voto></Votacion>
    <Votacion><Diputado>Desconocido, Pepe</Diputado><Grupo>GM</Grupo><Voto>No vota</Voto></Votacion>
  </Votaciones>
</Resultado>`
	writeZip(t, zipsDir, map[string]string{"0001.xml": ambiguous})
	svc := NewBuildService(testConfig(zipsDir, outDir), deputies, initiatives)
	res, err := svc.Run()
	if err != nil {
		t.Fatal(err)
	}

	diag := res.Diagnostics
	if diag.AmbiguousDeputies["maria lopez ruiz"] != 1 {
		t.Fatalf("ambiguous deputies: %+v", diag.AmbiguousDeputies)
	}
	if diag.UnmatchedDeputies["pepe desconocido"] != 1 {
		t.Fatalf("unmatched deputies: %+v", diag.UnmatchedDeputies)
	}
	// Ambiguous and unmatched deputies never reach the per-deputy tallies.
	blob, err := os.ReadFile(filepath.Join(outDir, "stats_diputados.json"))
	if err != nil {
		t.Fatal(err)
	}
	var stats map[string]internal.VoteTotals
	if err := json.Unmarshal(blob, &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats) != 0 {
		t.Fatalf("stats should be empty: %+v", stats)
	}
}

func TestBuildReproducible(t *testing.T) {
	deputies, initiatives, zipsDir := testFixture(t)

	outputs := make([][]byte, 2)
	for i := range outputs {
		outDir := filepath.Join(t.TempDir(), "out")
		svc := NewBuildService(testConfig(zipsDir, outDir), deputies, initiatives)
		if _, err := svc.Run(); err != nil {
			t.Fatal(err)
		}
		sessions, err := os.ReadFile(filepath.Join(outDir, "votaciones.csv"))
		if err != nil {
			t.Fatal(err)
		}
		votes, err := os.ReadFile(filepath.Join(outDir, "votos_0.csv"))
		if err != nil {
			t.Fatal(err)
		}
		summary, err := os.ReadFile(filepath.Join(outDir, "summary.json"))
		if err != nil {
			t.Fatal(err)
		}
		// Summary carries absolute paths; strip the per-run temp dir before
		// comparing.
		summary = bytes.ReplaceAll(summary, []byte(outDir), []byte("OUT"))
		outputs[i] = bytes.Join([][]byte{sessions, votes, summary}, []byte("\n--\n"))
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatal("re-running on unchanged inputs changed the output")
	}
}

func TestDiagnosticsMerge(t *testing.T) {
	a := NewDiagnostics()
	b := NewDiagnostics()
	a.DeputyOutcome(internal.MatchUnmatched, "pepe desconocido")
	b.DeputyOutcome(internal.MatchUnmatched, "pepe desconocido")
	b.DeputyOutcome(internal.MatchAmbiguous, "maria lopez ruiz")
	a.InitiativeOutcome(internal.MatchUnmatched, "asunto uno", InitiativeSample{Zip: "a.zip"})
	b.InitiativeOutcome(internal.MatchUnmatched, "asunto uno", InitiativeSample{Zip: "b.zip"})
	b.InitiativeOutcome(internal.MatchUnmatched, "asunto dos", InitiativeSample{Zip: "b.zip"})
	b.Failure("b.zip", "x.xml", "boom")

	a.Merge(b)
	if a.UnmatchedDeputies["pepe desconocido"] != 2 {
		t.Fatalf("got %+v", a.UnmatchedDeputies)
	}
	if a.AmbiguousDeputies["maria lopez ruiz"] != 1 {
		t.Fatalf("got %+v", a.AmbiguousDeputies)
	}
	samples := a.UnmatchedInitiatives()
	if len(samples) != 2 || samples[0].Zip != "a.zip" || samples[1].Zip != "b.zip" {
		t.Fatalf("got %+v", samples)
	}
	if len(a.ParseFailures) != 1 {
		t.Fatalf("got %+v", a.ParseFailures)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}
