package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

func ExportDiagnosticsXLSX(diag *Diagnostics, outputPath string) error {
	f := excelize.NewFile()

	deputyHeader := []string{"diputado_xml_norm", "veces"}

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "unmatched_diputados"); err != nil {
		return err
	}
	writeSheet(f, "unmatched_diputados", deputyHeader, countRows(diag.UnmatchedDeputies))

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"ambiguous_diputados", deputyHeader, countRows(diag.AmbiguousDeputies)},
		{"unmatched_iniciativas", initiativeReportHeader, sampleRows(diag.UnmatchedInitiatives())},
		{"ambiguous_iniciativas", initiativeReportHeader, sampleRows(diag.AmbiguousInitiatives())},
		{"parse_errors", []string{"zip", "xml", "error"}, failureRows(diag.ParseFailures)},
	}
	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		writeSheet(f, s.name, s.header, s.rows)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) {
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
}
