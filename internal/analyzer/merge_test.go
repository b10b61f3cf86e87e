package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
	"docanalyzer/mocks"
)

func TestMergeResults_Agreement(t *testing.T) {
	p := &domain.AnalysisResult{
		Summary:        "Primary summary",
		Sentiment:      &domain.Sentiment{Label: domain.SentimentPositive, Score: 0.6},
		Classification: "Invoice",
		Keywords:       []string{"tax", "invoice"},
		Confidence:     0.5,
	}
	s := &domain.AnalysisResult{
		Summary:        "Secondary summary",
		Sentiment:      &domain.Sentiment{Label: domain.SentimentPositive, Score: 0.8},
		Classification: "invoice",
		Keywords:       []string{"invoice", "TAX"},
		Confidence:     0.9,
	}

	merged, prov := analyzer.MergeResults(p, s)

	assert.Equal(t, "Primary summary", merged.Summary)
	assert.Equal(t, analyzer.SourcePrimary, prov["summary"])
	assert.Equal(t, analyzer.SourceAgreed, prov["sentiment"])
	assert.InDelta(t, 0.7, merged.Sentiment.Score, 0.0001)
	assert.Equal(t, "Invoice", merged.Classification)
	assert.Equal(t, analyzer.SourceAgreed, prov["classification"])
	assert.Equal(t, []string{"tax", "invoice"}, merged.Keywords)
	assert.Equal(t, analyzer.SourceAgreed, prov["keywords"])
	// every scored field agreed: 0.5 + 0.5*0.2
	assert.InDelta(t, 0.6, merged.Confidence, 0.0001)
}

func TestMergeResults_DisagreementKeepsPrimary(t *testing.T) {
	p := &domain.AnalysisResult{Classification: "contract", Confidence: 0.5}
	s := &domain.AnalysisResult{Classification: "invoice", Confidence: 0.9}

	merged, prov := analyzer.MergeResults(p, s)

	assert.Equal(t, "contract", merged.Classification)
	assert.Equal(t, analyzer.SourceDisagreement, prov["classification"])
	assert.InDelta(t, 0.3, merged.Confidence, 0.0001)
}

func TestMergeResults_EmptySideTakesOther(t *testing.T) {
	p := &domain.AnalysisResult{Summary: "", Confidence: 0.7}
	s := &domain.AnalysisResult{
		Summary:       "From secondary",
		Entities:      []domain.Entity{{Name: "Acme", Type: "org"}},
		RiskFactors:   []domain.RiskFactor{{Description: "Fraud", Severity: domain.SeverityHigh}},
		ExtractedData: map[string]interface{}{"total": 10.0},
		Confidence:    0.9,
	}

	merged, prov := analyzer.MergeResults(p, s)

	assert.Equal(t, "From secondary", merged.Summary)
	assert.Equal(t, analyzer.SourceSecondary, prov["summary"])
	assert.Equal(t, s.Entities, merged.Entities)
	assert.Equal(t, analyzer.SourceSecondary, prov["entities"])
	assert.Equal(t, s.RiskFactors, merged.RiskFactors)
	assert.Equal(t, analyzer.SourceSecondary, prov["extracted_data"])
	assert.InDelta(t, 0.9, merged.Confidence, 0.0001)
}

func TestMergeResults_UnionOfLowOverlapLists(t *testing.T) {
	p := &domain.AnalysisResult{KeyFindings: []string{"a"}, Confidence: 0.8}
	s := &domain.AnalysisResult{KeyFindings: []string{"b", "c"}, Confidence: 0.8}

	merged, prov := analyzer.MergeResults(p, s)

	assert.Equal(t, []string{"a", "b", "c"}, merged.KeyFindings)
	assert.Equal(t, analyzer.SourceMerged, prov["key_findings"])
	assert.InDelta(t, 0.8, merged.Confidence, 0.0001)
}

func TestMergeAnalyzer_BothSucceed(t *testing.T) {
	primary := new(mocks.MockDocumentAnalyzer)
	secondary := new(mocks.MockDocumentAnalyzer)

	primary.On("Analyze", mock.Anything, testInput).Return(&port.AnalyzeOutput{
		Result:      &domain.AnalysisResult{Summary: "p", Classification: "report", Confidence: 0.6},
		RawResponse: "raw-p",
		ModelUsed:   "gpt-4o-mini",
		PromptUsed:  "prompt",
	}, nil)
	secondary.On("Analyze", mock.Anything, testInput).Return(&port.AnalyzeOutput{
		Result:      &domain.AnalysisResult{Summary: "s", Classification: "report", Confidence: 0.7},
		RawResponse: "raw-s",
		ModelUsed:   "gemini-2.0-flash",
	}, nil)

	out, err := analyzer.NewMergeAnalyzer(primary, secondary).Analyze(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	assert.Equal(t, "gemini-2.0-flash", out.SecondaryModel)
	assert.Equal(t, "prompt", out.PromptUsed)
	assert.Contains(t, out.RawResponse, "raw-p")
	assert.Contains(t, out.RawResponse, "raw-s")
	assert.Equal(t, analyzer.SourceAgreed, out.FieldProvenance["classification"])
}

func TestMergeAnalyzer_SecondaryFails(t *testing.T) {
	primary := new(mocks.MockDocumentAnalyzer)
	secondary := new(mocks.MockDocumentAnalyzer)

	primary.On("Analyze", mock.Anything, testInput).Return(analyzeOutput("gpt-4o-mini"), nil)
	secondary.On("Analyze", mock.Anything, testInput).Return(nil, errors.New("down"))

	out, err := analyzer.NewMergeAnalyzer(primary, secondary).Analyze(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", out.ModelUsed)
	assert.Equal(t, "primary_only", out.FieldProvenance["_source"])
}

func TestMergeAnalyzer_PrimaryFails(t *testing.T) {
	primary := new(mocks.MockDocumentAnalyzer)
	secondary := new(mocks.MockDocumentAnalyzer)

	primary.On("Analyze", mock.Anything, testInput).Return(nil, errors.New("down"))
	secondary.On("Analyze", mock.Anything, testInput).Return(analyzeOutput("claude"), nil)

	out, err := analyzer.NewMergeAnalyzer(primary, secondary).Analyze(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "claude", out.ModelUsed)
	assert.Equal(t, "secondary_only", out.FieldProvenance["_source"])
}

func TestMergeAnalyzer_BothFail(t *testing.T) {
	primary := new(mocks.MockDocumentAnalyzer)
	secondary := new(mocks.MockDocumentAnalyzer)

	rlErr := analyzer.NewRateLimitError("gemini", errors.New("429"), 10)
	primary.On("Analyze", mock.Anything, testInput).Return(nil, errors.New("down"))
	secondary.On("Analyze", mock.Anything, testInput).Return(nil, rlErr)

	_, err := analyzer.NewMergeAnalyzer(primary, secondary).Analyze(context.Background(), testInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both providers failed")
	var target *analyzer.RateLimitError
	assert.ErrorAs(t, err, &target)
}
