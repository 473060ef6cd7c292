// Package report exports performance analytics as an Excel workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sandeep066/aceInterview/internal/domain"
)

const (
	SheetSummary         = "Summary"
	SheetQuestions       = "Questions"
	SheetRecommendations = "Recommendations"
)

// ContentType is the MIME type of the workbook written by WriteXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes a with one sheet each for the summary, the per-question
// reviews and the recommendation lists.
func WriteXLSX(w io.Writer, a domain.PerformanceAnalytics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, name := range []string{SheetQuestions, SheetRecommendations} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRows(f, SheetSummary, summaryRows(a)); err != nil {
		return err
	}
	if err := writeRows(f, SheetQuestions, questionRows(a.QuestionReviews)); err != nil {
		return err
	}
	if err := writeRows(f, SheetRecommendations, recommendationRows(a)); err != nil {
		return err
	}

	for _, sheet := range []string{SheetSummary, SheetQuestions, SheetRecommendations} {
		if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 22)
	_ = f.SetColWidth(SheetSummary, "B", "B", 60)
	_ = f.SetColWidth(SheetQuestions, "B", "C", 50)
	_ = f.SetColWidth(SheetQuestions, "E", "E", 50)
	_ = f.SetColWidth(SheetRecommendations, "A", "B", 60)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func summaryRows(a domain.PerformanceAnalytics) [][]any {
	ra := a.ResponseAnalysis
	method := a.Metadata.AnalysisMethod
	if method == "" {
		method = "unknown"
	}
	return [][]any{
		{"Metric", "Value"},
		{"Overall Score", a.OverallScore},
		{"Performance Level", string(a.PerformanceLevel)},
		{"Executive Summary", a.ExecutiveSummary},
		{"Clarity", ra.Clarity},
		{"Structure", ra.Structure},
		{"Technical", ra.Technical},
		{"Communication", ra.Communication},
		{"Confidence", ra.Confidence},
		{"Relevance", ra.Relevance},
		{"Responses", a.Metadata.TotalResponses},
		{"Analysis Method", method},
		{"Fallback", a.Metadata.Fallback},
	}
}

func questionRows(reviews []domain.QuestionReview) [][]any {
	rows := [][]any{{"Question ID", "Question", "Response", "Score", "Feedback"}}
	for _, r := range reviews {
		rows = append(rows, []any{r.QuestionID, r.Question, r.Response, r.Score, r.Feedback})
	}
	return rows
}

// recommendationRows flattens the four lists into a section/item table.
func recommendationRows(a domain.PerformanceAnalytics) [][]any {
	rows := [][]any{{"Section", "Item"}}
	sections := []struct {
		name  string
		items []string
	}{
		{"Strength", a.Strengths},
		{"Improvement", a.Improvements},
		{"Recommendation", a.Recommendations},
		{"Next Step", a.NextSteps},
	}
	for _, s := range sections {
		for _, item := range s.items {
			rows = append(rows, []any{s.name, item})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
