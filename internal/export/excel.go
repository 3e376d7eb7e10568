// Package export writes batch recommendation results to Excel workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet         = "Summary"
	recommendationsSheet = "Recommendations"
)

// Recommendation is one ranked job title for a document.
type Recommendation struct {
	Title  string
	Score  int
	Reason string
}

// Document is one resume processed in a batch.
type Document struct {
	Source          string
	Format          string
	Characters      int
	Recommendations []Recommendation
	// Err is set when the document could not be read or scored.
	Err error
}

// Report is a batch of scored documents.
type Report struct {
	Engine    string
	Model     string
	Generated time.Time
	Documents []Document
}

// Failed returns the number of documents that could not be scored.
func (r *Report) Failed() int {
	n := 0
	for _, d := range r.Documents {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// WriteWorkbook saves the report to outputPath, adding the .xlsx extension if missing.
// It returns the path actually written.
func WriteWorkbook(report *Report, outputPath string) (string, error) {
	f, err := Build(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// Build renders the report into an in-memory workbook. The caller closes it.
func Build(report *Report) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("report is required")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(recommendationsSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := createSummarySheet(f, report); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createRecommendationsSheet(f, report); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create recommendations sheet: %w", err)
	}
	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// setRow writes values into consecutive columns of row starting at A.
func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func createSummarySheet(f *excelize.File, report *Report) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "D", 36); err != nil {
		return err
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	generated := report.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	meta := [][2]any{
		{"Engine:", report.Engine},
		{"Model:", report.Model},
		{"Generated:", generated.Format("2006-01-02 15:04:05")},
		{"Documents:", len(report.Documents)},
		{"Failed:", report.Failed()},
	}
	row := 1
	for _, kv := range meta {
		if err := setRow(f, summarySheet, row, kv[0], kv[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), label); err != nil {
			return err
		}
		row++
	}
	row++

	headerRow := row
	if err := setRow(f, summarySheet, row, "Document", "Top Recommendation", "Score", "Status"); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), header); err != nil {
		return err
	}
	row++

	for _, d := range report.Documents {
		switch {
		case d.Err != nil:
			err = setRow(f, summarySheet, row, d.Source, "", "", d.Err.Error())
		case len(d.Recommendations) == 0:
			err = setRow(f, summarySheet, row, d.Source, "", "", "no recommendations")
		default:
			top := d.Recommendations[0]
			err = setRow(f, summarySheet, row, d.Source, top.Title, top.Score, "ok")
		}
		if err != nil {
			return err
		}
		row++
	}

	return f.SetPanes(summarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	})
}

func createRecommendationsSheet(f *excelize.File, report *Report) error {
	widths := map[string]float64{"A": 32, "B": 10, "C": 12, "D": 8, "E": 30, "F": 8, "G": 60}
	for col, w := range widths {
		if err := f.SetColWidth(recommendationsSheet, col, col, w); err != nil {
			return err
		}
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := setRow(f, recommendationsSheet, 1, "Document", "Format", "Characters", "Rank", "Title", "Score", "Reason"); err != nil {
		return err
	}
	if err := f.SetCellStyle(recommendationsSheet, "A1", "G1", header); err != nil {
		return err
	}

	row := 2
	for _, d := range report.Documents {
		if d.Err != nil {
			continue
		}
		for i, r := range d.Recommendations {
			if err := setRow(f, recommendationsSheet, row, d.Source, d.Format, d.Characters, i+1, r.Title, r.Score, r.Reason); err != nil {
				return err
			}
			row++
		}
	}

	if row > 2 {
		if err := f.AutoFilter(recommendationsSheet, fmt.Sprintf("A1:G%d", row-1), []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(recommendationsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
