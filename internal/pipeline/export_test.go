package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jdiegots/congreso-2025/internal"
)

func TestExportDiagnosticsXLSX(t *testing.T) {
	diag := NewDiagnostics()
	diag.DeputyOutcome(internal.MatchUnmatched, "pepe desconocido")
	diag.InitiativeOutcome(internal.MatchAmbiguous, "asunto", InitiativeSample{
		Zip: "votes.zip", XML: "0001.xml", Matter: "Asunto", BestScore: "0.640",
	})
	diag.Failure("votes.zip", "0002.xml", "xml parse: unexpected EOF")

	out := filepath.Join(t.TempDir(), "diagnostics.xlsx")
	if err := ExportDiagnosticsXLSX(diag, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 5 {
		t.Fatalf("sheets: %v", got)
	}
	cell, err := f.GetCellValue("unmatched_diputados", "A2")
	if err != nil {
		t.Fatal(err)
	}
	if cell != "pepe desconocido" {
		t.Fatalf("got %q", cell)
	}
}
