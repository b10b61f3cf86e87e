package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// Field provenance values recorded by MergeAnalyzer.
const (
	SourceAgreed       = "agreed"
	SourcePrimary      = "primary"
	SourceSecondary    = "secondary"
	SourceMerged       = "merged"
	SourceDisagreement = "disagreement"
)

// MergeAnalyzer runs two providers in parallel and merges their normalized results.
// It implements port.DocumentAnalyzer.
type MergeAnalyzer struct {
	primary   port.DocumentAnalyzer
	secondary port.DocumentAnalyzer
}

// NewMergeAnalyzer creates a MergeAnalyzer.
func NewMergeAnalyzer(primary, secondary port.DocumentAnalyzer) *MergeAnalyzer {
	return &MergeAnalyzer{primary: primary, secondary: secondary}
}

func (m *MergeAnalyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	var (
		g                  errgroup.Group
		primaryOut, secOut *port.AnalyzeOutput
		primaryErr, secErr error
	)

	// Both calls always run to completion; one side failing is not fatal.
	g.Go(func() error {
		primaryOut, primaryErr = m.primary.Analyze(ctx, input)
		return nil
	})
	g.Go(func() error {
		secOut, secErr = m.secondary.Analyze(ctx, input)
		return nil
	})
	_ = g.Wait()

	switch {
	case primaryErr != nil && secErr != nil:
		return nil, fmt.Errorf("both providers failed: primary: %v; secondary: %w", primaryErr, secErr)
	case secErr != nil:
		log.Warn().Err(secErr).Msg("analyzer.MergeAnalyzer: secondary failed, using primary only")
		primaryOut.FieldProvenance = map[string]string{"_source": "primary_only"}
		return primaryOut, nil
	case primaryErr != nil:
		log.Warn().Err(primaryErr).Msg("analyzer.MergeAnalyzer: primary failed, using secondary only")
		secOut.FieldProvenance = map[string]string{"_source": "secondary_only"}
		return secOut, nil
	}

	merged, provenance := MergeResults(primaryOut.Result, secOut.Result)
	return &port.AnalyzeOutput{
		Result:          merged,
		RawResponse:     primaryOut.RawResponse + "\n\n--- " + secOut.ModelUsed + " ---\n" + secOut.RawResponse,
		ModelUsed:       primaryOut.ModelUsed,
		SecondaryModel:  secOut.ModelUsed,
		PromptUsed:      primaryOut.PromptUsed,
		FieldProvenance: provenance,
	}, nil
}

// merger accumulates per-field confidence while merging two results.
type merger struct {
	pConf, sConf float64
	provenance   map[string]string
	confidences  []float64
}

func (mg *merger) record(field, source string, conf float64) {
	mg.provenance[field] = source
	mg.confidences = append(mg.confidences, conf)
}

// pick merges a single-valued field. equal reports agreement; empty reports
// whether a side has no value.
func (mg *merger) pick(field string, pEmpty, sEmpty, equal bool) (useSecondary bool) {
	switch {
	case pEmpty && sEmpty:
		return false
	case pEmpty:
		mg.record(field, SourceSecondary, mg.sConf)
		return true
	case sEmpty:
		mg.record(field, SourcePrimary, mg.pConf)
		return false
	case equal:
		mg.record(field, SourceAgreed, mg.pConf+(1-mg.pConf)*0.2)
		return false
	default:
		mg.record(field, SourceDisagreement, mg.pConf*0.6)
		return false
	}
}

// text merges free-form text where the two sides never match verbatim.
func (mg *merger) text(field, p, s string) string {
	switch {
	case p == "" && s == "":
		return ""
	case p == "":
		mg.provenance[field] = SourceSecondary
		return s
	default:
		mg.provenance[field] = SourcePrimary
		return p
	}
}

// list unions two lists. High overlap counts as agreement.
func (mg *merger) list(field string, p, s []string) []string {
	switch {
	case len(p) == 0 && len(s) == 0:
		return nil
	case len(p) == 0:
		mg.record(field, SourceSecondary, mg.sConf)
		return s
	case len(s) == 0:
		mg.record(field, SourcePrimary, mg.pConf)
		return p
	}
	if jaccard(p, s) >= 0.5 {
		mg.record(field, SourceAgreed, mg.pConf+(1-mg.pConf)*0.2)
	} else {
		mg.record(field, SourceMerged, mg.pConf)
	}
	return dedupe(append(append([]string{}, p...), s...))
}

// MergeResults combines two normalized results field by field. The primary
// value wins on disagreement. The returned map records where each populated
// field came from.
func MergeResults(p, s *domain.AnalysisResult) (*domain.AnalysisResult, map[string]string) {
	mg := &merger{
		pConf:      baseConfidence(p.Confidence),
		sConf:      baseConfidence(s.Confidence),
		provenance: map[string]string{},
	}
	out := &domain.AnalysisResult{}

	out.Summary = mg.text("summary", p.Summary, s.Summary)
	out.Translation = mg.text("translation", p.Translation, s.Translation)

	out.Sentiment = p.Sentiment
	if mg.pick("sentiment", p.Sentiment == nil, s.Sentiment == nil,
		p.Sentiment != nil && s.Sentiment != nil && p.Sentiment.Label == s.Sentiment.Label) {
		out.Sentiment = s.Sentiment
	} else if mg.provenance["sentiment"] == SourceAgreed {
		out.Sentiment = &domain.Sentiment{Label: p.Sentiment.Label, Score: (p.Sentiment.Score + s.Sentiment.Score) / 2}
	}

	out.Classification = p.Classification
	if mg.pick("classification", p.Classification == "", s.Classification == "",
		strings.EqualFold(p.Classification, s.Classification)) {
		out.Classification = s.Classification
	}

	out.Language = p.Language
	if mg.pick("language", p.Language == "", s.Language == "", strings.EqualFold(p.Language, s.Language)) {
		out.Language = s.Language
	}

	out.Keywords = mg.list("keywords", p.Keywords, s.Keywords)
	out.KeyFindings = mg.list("key_findings", p.KeyFindings, s.KeyFindings)
	out.Recommendations = mg.list("recommendations", p.Recommendations, s.Recommendations)
	out.Entities = mergeEntities(mg, p.Entities, s.Entities)
	out.RiskFactors = mergeRisks(mg, p.RiskFactors, s.RiskFactors)
	out.ExtractedData = mergeData(mg, p.ExtractedData, s.ExtractedData)

	out.Fallback = p.Fallback && s.Fallback
	out.Confidence = mg.pConf
	if len(mg.confidences) > 0 {
		var sum float64
		for _, c := range mg.confidences {
			sum += c
		}
		out.Confidence = clamp(sum/float64(len(mg.confidences)), 0, 1)
	}
	return out, mg.provenance
}

func mergeEntities(mg *merger, p, s []domain.Entity) []domain.Entity {
	names := func(es []domain.Entity) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Name
		}
		return out
	}
	mg.list("entities", names(p), names(s))

	out := append([]domain.Entity{}, p...)
	seen := map[string]bool{}
	for _, e := range p {
		seen[strings.ToLower(e.Name)] = true
	}
	for _, e := range s {
		if !seen[strings.ToLower(e.Name)] {
			seen[strings.ToLower(e.Name)] = true
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeRisks(mg *merger, p, s []domain.RiskFactor) []domain.RiskFactor {
	descs := func(rs []domain.RiskFactor) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Description
		}
		return out
	}
	mg.list("risk_factors", descs(p), descs(s))

	out := append([]domain.RiskFactor{}, p...)
	seen := map[string]bool{}
	for _, r := range p {
		seen[strings.ToLower(r.Description)] = true
	}
	for _, r := range s {
		if !seen[strings.ToLower(r.Description)] {
			seen[strings.ToLower(r.Description)] = true
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeData(mg *merger, p, s map[string]interface{}) map[string]interface{} {
	if len(p) == 0 && len(s) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(p)+len(s))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	switch {
	case len(p) == 0:
		mg.provenance["extracted_data"] = SourceSecondary
	case len(s) == 0:
		mg.provenance["extracted_data"] = SourcePrimary
	default:
		mg.provenance["extracted_data"] = SourceMerged
	}
	return out
}

func jaccard(a, b []string) float64 {
	set := map[string]bool{}
	for _, x := range a {
		set[strings.ToLower(x)] = true
	}
	inter, union := 0, len(set)
	seenB := map[string]bool{}
	for _, x := range b {
		k := strings.ToLower(x)
		if seenB[k] {
			continue
		}
		seenB[k] = true
		if set[k] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// baseConfidence substitutes a neutral prior for providers that report none.
func baseConfidence(c float64) float64 {
	if c <= 0 {
		return 0.5
	}
	return c
}
