package domain

// SentimentLabel is the normalized overall sentiment.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentMixed    SentimentLabel = "mixed"
)

// RiskSeverity is the normalized severity of a risk factor.
type RiskSeverity string

const (
	SeverityLow    RiskSeverity = "low"
	SeverityMedium RiskSeverity = "medium"
	SeverityHigh   RiskSeverity = "high"
)

// Sentiment is the overall tone of a document. Score is in [-1, 1].
type Sentiment struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// Entity is a named entity found in a document.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// RiskFactor is a risk called out by the analysis.
type RiskFactor struct {
	Description string       `json:"description"`
	Severity    RiskSeverity `json:"severity"`
}

// AnalysisResult is the provider-independent analysis schema that every LLM
// response is normalized into.
type AnalysisResult struct {
	Summary         string                 `json:"summary"`
	Sentiment       *Sentiment             `json:"sentiment,omitempty"`
	Entities        []Entity               `json:"entities,omitempty"`
	Keywords        []string               `json:"keywords,omitempty"`
	RiskFactors     []RiskFactor           `json:"risk_factors,omitempty"`
	Classification  string                 `json:"classification,omitempty"`
	Translation     string                 `json:"translation,omitempty"`
	KeyFindings     []string               `json:"key_findings,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	ExtractedData   map[string]interface{} `json:"extracted_data,omitempty"`
	Language        string                 `json:"language,omitempty"`
	Confidence      float64                `json:"confidence"`
	// Fallback is set when the provider returned prose instead of JSON.
	Fallback bool `json:"fallback,omitempty"`
}
