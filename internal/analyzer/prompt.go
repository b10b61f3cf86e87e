package analyzer

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"docanalyzer/internal/domain"
)

//go:embed prompts.yaml
var promptsYAML []byte

// PromptCatalog holds the analysis prompts for every supported language.
type PromptCatalog struct {
	DefaultLanguage string                         `yaml:"default_language"`
	DefaultType     domain.AnalysisType            `yaml:"default_type"`
	Schemas         map[domain.AnalysisType]string `yaml:"schemas"`
	Languages       map[string]LanguagePrompts     `yaml:"languages"`
}

// LanguagePrompts is the prompt text for one language.
type LanguagePrompts struct {
	Intro         string                         `yaml:"intro"`
	RespondIn     string                         `yaml:"respond_in"`
	Format        string                         `yaml:"format"`
	DocumentLabel string                         `yaml:"document_label"`
	Tasks         map[domain.AnalysisType]string `yaml:"tasks"`
}

var defaultCatalog = mustLoadCatalog(promptsYAML)

// LoadCatalog parses a YAML prompt catalog. The default language and type
// must be present.
func LoadCatalog(data []byte) (*PromptCatalog, error) {
	var c PromptCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("analyzer.LoadCatalog: %w", err)
	}
	def, ok := c.Languages[c.DefaultLanguage]
	if !ok {
		return nil, fmt.Errorf("analyzer.LoadCatalog: default language %q missing", c.DefaultLanguage)
	}
	if _, ok := def.Tasks[c.DefaultType]; !ok {
		return nil, fmt.Errorf("analyzer.LoadCatalog: default type %q missing", c.DefaultType)
	}
	if _, ok := c.Schemas[c.DefaultType]; !ok {
		return nil, fmt.Errorf("analyzer.LoadCatalog: schema for %q missing", c.DefaultType)
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *PromptCatalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Build returns the instruction prompt for an analysis type in a language.
// Unknown languages use the default language; unknown types use the default type.
func (c *PromptCatalog) Build(analysisType domain.AnalysisType, lang string) string {
	lp, ok := c.Languages[strings.ToLower(lang)]
	if !ok {
		lp = c.Languages[c.DefaultLanguage]
	}
	task, ok := lp.Tasks[analysisType]
	if !ok {
		analysisType = c.DefaultType
		task = lp.Tasks[analysisType]
	}
	schema, ok := c.Schemas[analysisType]
	if !ok {
		schema = c.Schemas[c.DefaultType]
	}

	var b strings.Builder
	b.WriteString(lp.Intro)
	b.WriteString("\n\n")
	b.WriteString(task)
	b.WriteString("\n")
	b.WriteString(lp.RespondIn)
	b.WriteString("\n\n")
	b.WriteString(lp.Format)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(schema))
	return b.String()
}

// withDocument appends the document text to the prompt.
func (c *PromptCatalog) withDocument(prompt, lang, text string) string {
	lp, ok := c.Languages[strings.ToLower(lang)]
	if !ok {
		lp = c.Languages[c.DefaultLanguage]
	}
	return prompt + "\n\n" + lp.DocumentLabel + ":\n\"\"\"\n" + text + "\n\"\"\""
}

// BuildPrompt builds the instruction prompt from the embedded catalog.
func BuildPrompt(analysisType domain.AnalysisType, lang string) string {
	return defaultCatalog.Build(analysisType, lang)
}

// BuildTextPrompt builds the full prompt for text-mode analysis: the
// instructions followed by the quoted document text.
func BuildTextPrompt(analysisType domain.AnalysisType, lang, text string) string {
	return defaultCatalog.withDocument(defaultCatalog.Build(analysisType, lang), lang, text)
}
