package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *Report {
	return &Report{
		Engine:    "keyword",
		Generated: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Documents: []Document{
			{
				Source:     "alice.pdf",
				Format:     "pdf",
				Characters: 1200,
				Recommendations: []Recommendation{
					{Title: "DevOps Engineer", Score: 60, Reason: "Matched keywords: docker, aws"},
					{Title: "Software Engineer", Score: 33, Reason: "Matched keywords: developer, python"},
				},
			},
			{
				Source: "bob.exe",
				Err:    errors.New("unsupported file type: .exe"),
			},
			{
				Source:     "carol.txt",
				Format:     "text",
				Characters: 40,
				Recommendations: []Recommendation{
					{Title: "Nurse", Score: 75, Reason: "Matched keywords: nurse, patient"},
				},
			},
		},
	}
}

func TestReport_Failed(t *testing.T) {
	assert.Equal(t, 1, sampleReport().Failed())
	assert.Equal(t, 0, (&Report{}).Failed())
}

func TestBuild_NilReport(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
}

func TestBuild_Sheets(t *testing.T) {
	f, err := Build(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, recommendationsSheet}, f.GetSheetList())

	v, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "keyword", v)

	v, err = f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 09:30:00", v)

	v, err = f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestBuild_SummaryRows(t *testing.T) {
	f, err := Build(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 10)

	assert.Equal(t, []string{"Document", "Top Recommendation", "Score", "Status"}, rows[6])
	assert.Equal(t, []string{"alice.pdf", "DevOps Engineer", "60", "ok"}, rows[7])
	assert.Equal(t, "bob.exe", rows[8][0])
	assert.Equal(t, "unsupported file type: .exe", rows[8][3])
	assert.Equal(t, []string{"carol.txt", "Nurse", "75", "ok"}, rows[9])
}

func TestBuild_RecommendationRows(t *testing.T) {
	f, err := Build(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(recommendationsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Document", "Format", "Characters", "Rank", "Title", "Score", "Reason"}, rows[0])
	assert.Equal(t, []string{"alice.pdf", "pdf", "1200", "1", "DevOps Engineer", "60", "Matched keywords: docker, aws"}, rows[1])
	assert.Equal(t, "2", rows[2][3])
	assert.Equal(t, "carol.txt", rows[3][0])
}

func TestWriteWorkbook_AddsExtension(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteWorkbook(sampleReport(), filepath.Join(dir, "report"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report.xlsx"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(recommendationsSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "DevOps Engineer", v)
}

func TestWriteWorkbook_KeepsExtension(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteWorkbook(&Report{Engine: "embedding"}, filepath.Join(dir, "out.XLSX"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.XLSX"), path)
}

func TestWriteWorkbook_BadDirectory(t *testing.T) {
	_, err := WriteWorkbook(sampleReport(), filepath.Join(t.TempDir(), "missing", "report.xlsx"))
	assert.Error(t, err)
}
