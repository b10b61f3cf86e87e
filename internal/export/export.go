// Package export renders the normalized analysis results of an order as CSV
// or XLSX downloads.
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"docanalyzer/internal/domain"
)

// Format is a supported download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format query value. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

// ContentType returns the MIME type of the rendered file.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// columns defines the header row shared by both formats.
var columns = []string{
	"Document",
	"Status",
	"Analysis Type",
	"Language",
	"Model",
	"Confidence",
	"Summary",
	"Sentiment",
	"Sentiment Score",
	"Classification",
	"Keywords",
	"Entities",
	"Risk Factors",
	"Key Findings",
	"Recommendations",
	"Translation",
	"Error",
	"Completed At",
}

// Columns returns a copy of the header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Rows converts analyses to export rows. docNames maps document IDs to the
// name shown in the first column.
func Rows(analyses []domain.Analysis, docNames map[uuid.UUID]string) [][]string {
	rows := make([][]string, 0, len(analyses))
	for i := range analyses {
		rows = append(rows, analysisToRow(&analyses[i], docNames[analyses[i].DocumentID]))
	}
	return rows
}

// analysisToRow fills metadata columns for every analysis and result columns
// only when the stored result decodes.
func analysisToRow(a *domain.Analysis, docName string) []string {
	row := make([]string, len(columns))
	if docName == "" {
		docName = a.DocumentID.String()
	}
	row[0] = docName
	row[1] = string(a.Status)
	row[2] = string(a.AnalysisType)
	row[3] = a.Language
	row[4] = a.ModelUsed
	row[16] = a.ErrorMessage
	row[17] = formatTime(a.CompletedAt)

	if a.Status != domain.AnalysisStatusCompleted || len(a.Result) == 0 {
		return row
	}

	var res domain.AnalysisResult
	if err := json.Unmarshal(a.Result, &res); err != nil {
		return row
	}

	row[5] = strconv.FormatFloat(res.Confidence, 'f', 2, 64)
	row[6] = res.Summary
	if res.Sentiment != nil {
		row[7] = string(res.Sentiment.Label)
		row[8] = strconv.FormatFloat(res.Sentiment.Score, 'f', 2, 64)
	}
	row[9] = res.Classification
	row[10] = strings.Join(res.Keywords, ", ")
	row[11] = joinEntities(res.Entities)
	row[12] = joinRisks(res.RiskFactors)
	row[13] = strings.Join(res.KeyFindings, "\n")
	row[14] = strings.Join(res.Recommendations, "\n")
	row[15] = res.Translation
	return row
}

func joinEntities(entities []domain.Entity) string {
	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		if e.Type != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", e.Name, e.Type))
		} else {
			parts = append(parts, e.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func joinRisks(risks []domain.RiskFactor) string {
	parts := make([]string, 0, len(risks))
	for _, r := range risks {
		parts = append(parts, fmt.Sprintf("[%s] %s", r.Severity, r.Description))
	}
	return strings.Join(parts, "\n")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var (
	nonAlphanumeric  = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore  = regexp.MustCompile(`_{2,}`)
	maxFilenameRunes = 100
)

// SanitizeFilename cleans an order title for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxFilenameRunes {
		s = s[:maxFilenameRunes]
	}
	if s == "" {
		s = "analysis"
	}
	return s
}

// BuildFilename returns {sanitized_title}_{YYYY-MM-DD}.{format}.
func BuildFilename(title string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(title), now.Format("2006-01-02"), format)
}
