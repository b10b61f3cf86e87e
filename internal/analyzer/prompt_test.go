package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/analyzer"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/i18n"
	"docanalyzer/internal/port"
)

func TestBuildPrompt_EveryLanguageAndType(t *testing.T) {
	for _, lang := range i18n.Supported {
		for at := range domain.ValidAnalysisTypes {
			p := analyzer.BuildPrompt(at, lang)
			assert.Contains(t, p, `"summary"`, "%s/%s", lang, at)
			assert.Contains(t, p, `"confidence"`, "%s/%s", lang, at)
			assert.Contains(t, p, "JSON", "%s/%s", lang, at)
		}
	}
}

func TestBuildPrompt_LanguageSpecific(t *testing.T) {
	assert.Contains(t, analyzer.BuildPrompt(domain.AnalysisSummary, "pl"), "po polsku")
	assert.Contains(t, analyzer.BuildPrompt(domain.AnalysisSummary, "en"), "in English")
	assert.Contains(t, analyzer.BuildPrompt(domain.AnalysisSummary, "de"), "auf Deutsch")
	assert.Contains(t, analyzer.BuildPrompt(domain.AnalysisSummary, "uk"), "українською")
	assert.Contains(t, analyzer.BuildPrompt(domain.AnalysisSummary, "es"), "en español")
}

func TestBuildPrompt_UnknownLanguageFallsBackToPolish(t *testing.T) {
	assert.Equal(t,
		analyzer.BuildPrompt(domain.AnalysisKeywords, "pl"),
		analyzer.BuildPrompt(domain.AnalysisKeywords, "fr"),
	)
}

func TestBuildPrompt_UnknownTypeFallsBackToComprehensive(t *testing.T) {
	assert.Equal(t,
		analyzer.BuildPrompt(domain.AnalysisComprehensive, "en"),
		analyzer.BuildPrompt(domain.AnalysisType("poetry"), "en"),
	)
	assert.Contains(t, analyzer.BuildPrompt(domain.AnalysisComprehensive, "en"), `"risk_factors"`)
}

func TestBuildTextPrompt_IncludesDocument(t *testing.T) {
	p := analyzer.BuildTextPrompt(domain.AnalysisSentiment, "de", "Hallo Welt")
	assert.Contains(t, p, "DOKUMENT:\n\"\"\"\nHallo Welt\n\"\"\"")
}

func TestPrompt_Modes(t *testing.T) {
	p, textMode, err := analyzer.Prompt(port.AnalyzeInput{Text: "abc", AnalysisType: domain.AnalysisSummary, Language: "en"})
	require.NoError(t, err)
	assert.True(t, textMode)
	assert.Contains(t, p, "abc")

	p, textMode, err = analyzer.Prompt(port.AnalyzeInput{FileBytes: []byte{1}, AnalysisType: domain.AnalysisSummary, Language: "en"})
	require.NoError(t, err)
	assert.False(t, textMode)
	assert.NotContains(t, p, "DOCUMENT:")

	_, _, err = analyzer.Prompt(port.AnalyzeInput{AnalysisType: domain.AnalysisSummary})
	assert.ErrorIs(t, err, analyzer.ErrNoContent)
}

func TestLoadCatalog_Validation(t *testing.T) {
	_, err := analyzer.LoadCatalog([]byte("default_language: pl\nlanguages: {}\n"))
	assert.Error(t, err)

	_, err = analyzer.LoadCatalog([]byte("{not yaml"))
	assert.Error(t, err)

	c, err := analyzer.LoadCatalog([]byte(`
default_language: en
default_type: summary
schemas:
  summary: '{"summary": ""}'
languages:
  en:
    intro: Intro.
    respond_in: English.
    format: JSON please.
    document_label: DOC
    tasks:
      summary: Summarize.
`))
	require.NoError(t, err)
	assert.Equal(t, "Intro.\n\nSummarize.\nEnglish.\n\nJSON please.\n{\"summary\": \"\"}", c.Build(domain.AnalysisKeywords, "xx"))
}
