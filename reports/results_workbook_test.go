package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/camden-git/electoralbackend/models"
)

func TestWriteResultsWorkbook(t *testing.T) {
	results := &models.LiveResults{
		Results: []models.FrontResult{
			{FrontID: 2, Name: "Frente Azul", Acronym: "FA", Color: "#1D4ED8", TotalVotes: 75},
			{FrontID: 1, Name: "Frente Rojo", Acronym: "FR", Color: "#B91C1C", TotalVotes: 25},
			{FrontID: 3, Name: "Frente Gris", Acronym: "FG", Color: models.DefaultFrontColor, TotalVotes: 0},
		},
		Summary: models.ResultsSummary{TotalActas: 4, TotalVotes: 112, NullVotes: 7, BlankVotes: 5},
	}
	generated := time.Date(2026, 10, 17, 20, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteResultsWorkbook(&buf, results, generated))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultsSheet, SummarySheet}, f.GetSheetList())

	cell := func(sheet, axis string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Frente", cell(ResultsSheet, "A1"))
	assert.Equal(t, "Frente Azul", cell(ResultsSheet, "A2"))
	assert.Equal(t, "FA", cell(ResultsSheet, "B2"))
	assert.Equal(t, "75", cell(ResultsSheet, "C2"))
	assert.Equal(t, "75.00%", cell(ResultsSheet, "D2"))
	assert.Equal(t, "Frente Gris", cell(ResultsSheet, "A4"))
	assert.Equal(t, "0.00%", cell(ResultsSheet, "D4"))

	assert.Equal(t, "Actas registradas", cell(SummarySheet, "A2"))
	assert.Equal(t, "4", cell(SummarySheet, "B2"))
	assert.Equal(t, "112", cell(SummarySheet, "B4"))
	assert.Equal(t, "2026-10-17T20:30:00Z", cell(SummarySheet, "B7"))
}

func TestWriteResultsWorkbookWithoutFronts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsWorkbook(&buf, &models.LiveResults{Results: []models.FrontResult{}}, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
