package port

import (
	"context"

	"docanalyzer/internal/domain"
)

// AnalyzeInput carries the data needed for one LLM analysis.
// Text is preferred; when it is empty FileBytes are sent as a file/vision part.
type AnalyzeInput struct {
	Text         string
	FileBytes    []byte
	ContentType  string
	AnalysisType domain.AnalysisType
	Language     string
}

// AnalyzeOutput contains the normalized result from an LLM analyzer.
type AnalyzeOutput struct {
	Result          *domain.AnalysisResult
	RawResponse     string
	ModelUsed       string
	PromptUsed      string
	FieldProvenance map[string]string // which model provided each field (dual mode)
	SecondaryModel  string
}

// DocumentAnalyzer abstracts LLM-based document analysis.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}
