package analyzer

import (
	"errors"

	"docanalyzer/internal/port"
)

// ErrNoContent is returned when an input carries neither text nor file bytes.
var ErrNoContent = errors.New("nothing to analyze: input has no text and no file")

// Prompt returns the prompt a provider should send for input and whether the
// document travels as text. When Text is empty the file is attached instead
// and only the instructions are returned.
func Prompt(input port.AnalyzeInput) (prompt string, textMode bool, err error) {
	switch {
	case input.Text != "":
		return BuildTextPrompt(input.AnalysisType, input.Language, input.Text), true, nil
	case len(input.FileBytes) > 0:
		return BuildPrompt(input.AnalysisType, input.Language), false, nil
	default:
		return "", false, ErrNoContent
	}
}

// NewOutput normalizes a provider's raw text into an AnalyzeOutput.
func NewOutput(raw, model, prompt string) (*port.AnalyzeOutput, error) {
	res, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return &port.AnalyzeOutput{
		Result:      res,
		RawResponse: raw,
		ModelUsed:   model,
		PromptUsed:  prompt,
	}, nil
}
