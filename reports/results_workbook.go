// Package reports renders live results as downloadable spreadsheets.
package reports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/camden-git/electoralbackend/models"
)

const (
	ResultsSheet = "Resultados"
	SummarySheet = "Resumen"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var resultsHeader = []string{"Frente", "Siglas", "Votos", "Porcentaje"}

// WriteResultsWorkbook writes results as an xlsx workbook with one sheet per
// front totals and one with the acta summary.
func WriteResultsWorkbook(w io.Writer, results *models.LiveResults, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("failed to create percent style: %w", err)
	}

	if err := writeResultsSheet(f, results.Results, headerStyle, percentStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(f, results.Summary, generatedAt, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, rows []models.FrontResult, headerStyle, percentStyle int) error {
	if err := f.SetSheetRow(ResultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(ResultsSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	var total int64
	for _, r := range rows {
		total += r.TotalVotes
	}

	colorStyles := map[string]int{}
	for i, r := range rows {
		row := i + 2
		share := 0.0
		if total > 0 {
			share = float64(r.TotalVotes) / float64(total)
		}
		cell := fmt.Sprintf("A%d", row)
		values := []interface{}{r.Name, r.Acronym, r.TotalVotes, share}
		if err := f.SetSheetRow(ResultsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := f.SetCellStyle(ResultsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), percentStyle); err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}

		style, ok := colorStyles[r.Color]
		if !ok {
			var err error
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{strings.ToUpper(r.Color)}, Pattern: 1},
				Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
			})
			if err != nil {
				return fmt.Errorf("failed to create colour style for %s: %w", r.Color, err)
			}
			colorStyles[r.Color] = style
		}
		if err := f.SetCellStyle(ResultsSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), style); err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}
	}

	for col, width := range map[string]float64{"A": 36, "B": 12, "C": 12, "D": 12} {
		if err := f.SetColWidth(ResultsSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s models.ResultsSummary, generatedAt time.Time, headerStyle int) error {
	rows := [][]interface{}{
		{"Indicador", "Valor"},
		{"Actas registradas", s.TotalActas},
		{"Actas validadas", s.ValidatedActas},
		{"Votos totales", s.TotalVotes},
		{"Votos nulos", s.NullVotes},
		{"Votos blancos", s.BlankVotes},
		{"Generado", generatedAt.Format(time.RFC3339)},
	}
	for i, values := range rows {
		values := values
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &values); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(SummarySheet, "B", "B", 28)
}
