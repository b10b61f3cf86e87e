package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
)

func TestNormalize_CanonicalJSON(t *testing.T) {
	raw := `{
		"summary": "Quarterly report with strong growth.",
		"sentiment": {"label": "positive", "score": 0.8},
		"entities": [{"name": "Acme Corp", "type": "organization"}, {"name": "Warsaw", "type": "location"}],
		"keywords": ["growth", "revenue"],
		"risk_factors": [{"description": "Currency exposure", "severity": "high"}],
		"classification": "report",
		"key_findings": ["Revenue up 12%"],
		"recommendations": ["Hedge EUR exposure"],
		"extracted_data": {"revenue": 1200000},
		"language": "EN",
		"confidence": 0.9
	}`

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly report with strong growth.", res.Summary)
	require.NotNil(t, res.Sentiment)
	assert.Equal(t, domain.SentimentPositive, res.Sentiment.Label)
	assert.InDelta(t, 0.8, res.Sentiment.Score, 0.0001)
	assert.Equal(t, []domain.Entity{{Name: "Acme Corp", Type: "organization"}, {Name: "Warsaw", Type: "location"}}, res.Entities)
	assert.Equal(t, []string{"growth", "revenue"}, res.Keywords)
	assert.Equal(t, []domain.RiskFactor{{Description: "Currency exposure", Severity: domain.SeverityHigh}}, res.RiskFactors)
	assert.Equal(t, "report", res.Classification)
	assert.Equal(t, []string{"Revenue up 12%"}, res.KeyFindings)
	assert.Equal(t, []string{"Hedge EUR exposure"}, res.Recommendations)
	assert.Equal(t, float64(1200000), res.ExtractedData["revenue"])
	assert.Equal(t, "en", res.Language)
	assert.InDelta(t, 0.9, res.Confidence, 0.0001)
	assert.False(t, res.Fallback)
}

func TestNormalize_MarkdownFenceAndProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n{\"summary\": \"Fenced\", \"confidence\": 0.7}\n```\nLet me know if you need more."

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "Fenced", res.Summary)
	assert.InDelta(t, 0.7, res.Confidence, 0.0001)
	assert.False(t, res.Fallback)
}

func TestNormalize_MultipleFences_FirstWins(t *testing.T) {
	raw := "```json\n{\"summary\": \"first\"}\n```\nand a revised version:\n```json\n{\"summary\": \"second\"}\n```"

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "first", res.Summary)
}

func TestNormalize_EmbeddedObjectWithBracesInStrings(t *testing.T) {
	raw := `Result: {"summary": "Uses {braces} and \"quotes\"", "keywords": "a, b"} trailing {not json`

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, `Uses {braces} and "quotes"`, res.Summary)
	assert.Equal(t, []string{"a", "b"}, res.Keywords)
}

func TestNormalize_CamelCaseAndSynonyms(t *testing.T) {
	raw := `{
		"Overview": "Contract for services",
		"overallSentiment": "Neutral",
		"namedEntities": ["ACME", "acme", "Jan Kowalski"],
		"keyPhrases": ["term", " Term ", ""],
		"riskFactors": ["Late delivery penalties"],
		"documentType": {"category": "contract"},
		"translatedText": "Umowa o świadczenie usług",
		"keyPoints": "- first\n- second",
		"extractedData": {"parties": 2},
		"confidenceScore": "85%"
	}`

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "Contract for services", res.Summary)
	require.NotNil(t, res.Sentiment)
	assert.Equal(t, domain.SentimentNeutral, res.Sentiment.Label)
	assert.Equal(t, []domain.Entity{{Name: "ACME"}, {Name: "Jan Kowalski"}}, res.Entities)
	assert.Equal(t, []string{"term"}, res.Keywords)
	assert.Equal(t, []domain.RiskFactor{{Description: "Late delivery penalties", Severity: domain.SeverityMedium}}, res.RiskFactors)
	assert.Equal(t, "contract", res.Classification)
	assert.Equal(t, "Umowa o świadczenie usług", res.Translation)
	assert.Equal(t, []string{"first", "second"}, res.KeyFindings)
	assert.Equal(t, float64(2), res.ExtractedData["parties"])
	assert.InDelta(t, 0.85, res.Confidence, 0.0001)
}

func TestNormalize_SentimentForms(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLabel domain.SentimentLabel
		wantScore float64
	}{
		{"string positive", `{"sentiment": "Very Positive"}`, domain.SentimentPositive, 0.5},
		{"string negative", `{"sentiment": "negative"}`, domain.SentimentNegative, -0.5},
		{"string mixed", `{"tone": "mixed"}`, domain.SentimentMixed, 0},
		{"polish label", `{"sentiment": "pozytywny"}`, domain.SentimentPositive, 0.5},
		{"unknown label", `{"sentiment": "whatever"}`, domain.SentimentNeutral, 0},
		{"number", `{"sentiment": -0.7}`, domain.SentimentNegative, -0.7},
		{"number clamped", `{"sentiment": 3}`, domain.SentimentPositive, 1},
		{"object overall", `{"sentiment": {"overall": "negative", "score": -0.4}}`, domain.SentimentNegative, -0.4},
		{"object score only", `{"sentiment": {"score": 0.1}}`, domain.SentimentNeutral, 0.1},
		{"object confidence signs label", `{"sentiment": {"label": "negative", "confidence": 0.9}}`, domain.SentimentNegative, -0.9},
		{"object score clamped", `{"sentiment": {"value": "positive", "score": 1.7}}`, domain.SentimentPositive, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := analyzer.Normalize(tt.raw)
			require.NoError(t, err)
			require.NotNil(t, res.Sentiment)
			assert.Equal(t, tt.wantLabel, res.Sentiment.Label)
			assert.InDelta(t, tt.wantScore, res.Sentiment.Score, 0.0001)
		})
	}
}

func TestNormalize_EntitiesGroupedByType(t *testing.T) {
	raw := `{"entities": {"people": ["Anna Nowak"], "organizations": ["Acme", "ACME"]}}`

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []domain.Entity{
		{Name: "Acme", Type: "organizations"},
		{Name: "Anna Nowak", Type: "people"},
	}, res.Entities)
}

func TestNormalize_RiskSeverity(t *testing.T) {
	raw := `{"risks": [
		{"risk": "Breach", "level": "Critical"},
		{"factor": "Typo", "severity": "low"},
		{"description": "Delay"},
		{"description": "Wysokie ryzyko walutowe", "severity": "wysokie"},
		{"description": "Scored", "severity": 8},
		{"description": ""}
	]}`

	res, err := analyzer.Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []domain.RiskFactor{
		{Description: "Breach", Severity: domain.SeverityHigh},
		{Description: "Typo", Severity: domain.SeverityLow},
		{Description: "Delay", Severity: domain.SeverityMedium},
		{Description: "Wysokie ryzyko walutowe", Severity: domain.SeverityHigh},
		{Description: "Scored", Severity: domain.SeverityHigh},
	}, res.RiskFactors)
}

func TestNormalize_Confidence(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`{"confidence": 0.42}`, 0.42},
		{`{"confidence": 87}`, 0.87},
		{`{"confidence": "85%"}`, 0.85},
		{`{"confidence": "0.6"}`, 0.6},
		{`{"confidence": -1}`, 0},
		{`{"confidence": 450}`, 1},
		{`{"confidence": "high"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res, err := analyzer.Normalize(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.Confidence, 0.0001)
		})
	}
}

func TestNormalize_UnwrapsEnvelope(t *testing.T) {
	res, err := analyzer.Normalize(`{"analysis": {"summary": "Wrapped", "keywords": ["x"]}}`)
	require.NoError(t, err)

	assert.Equal(t, "Wrapped", res.Summary)
	assert.Equal(t, []string{"x"}, res.Keywords)
}

func TestNormalize_PlainTextFallback(t *testing.T) {
	res, err := analyzer.Normalize("  The document is a lease agreement between two parties.  ")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, "The document is a lease agreement between two parties.", res.Summary)
	assert.Zero(t, res.Confidence)
}

func TestNormalize_EmptyResponse(t *testing.T) {
	_, err := analyzer.Normalize(" \n\t ")
	assert.ErrorIs(t, err, analyzer.ErrEmptyResponse)
}

func TestMarshalResult(t *testing.T) {
	b, err := analyzer.MarshalResult(&domain.AnalysisResult{Summary: "s", Confidence: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"s","confidence":0.5}`, string(b))
}
