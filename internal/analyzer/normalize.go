package analyzer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"docanalyzer/internal/domain"
)

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// Canonical field names and the keys providers are known to use for them.
// Keys are compared after foldKey, so camelCase and snake_case variants match.
var fieldSynonyms = map[string][]string{
	"summary":         {"summary", "abstract", "overview"},
	"sentiment":       {"sentiment", "overall_sentiment", "tone"},
	"entities":        {"entities", "named_entities"},
	"keywords":        {"keywords", "key_words", "tags", "key_phrases"},
	"risk_factors":    {"risk_factors", "risks"},
	"classification":  {"classification", "category", "document_type"},
	"translation":     {"translation", "translated_text"},
	"key_findings":    {"key_findings", "findings", "key_points"},
	"recommendations": {"recommendations"},
	"extracted_data":  {"extracted_data", "data"},
	"language":        {"language", "detected_language"},
	"confidence":      {"confidence", "confidence_score"},
}

// Normalize converts a provider's raw text into the canonical AnalysisResult.
//
// The first JSON object in raw is used; markdown fences are ignored. When no
// object can be parsed the trimmed text becomes the summary and Fallback is
// set. Only an empty response is an error.
func Normalize(raw string) (*domain.AnalysisResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	obj, ok := extractObject(trimmed)
	if !ok {
		return &domain.AnalysisResult{Summary: stripFences(trimmed), Fallback: true}, nil
	}
	obj = unwrapEnvelope(obj)
	fields := foldKeys(obj)

	get := func(canonical string) interface{} {
		for _, name := range fieldSynonyms[canonical] {
			if v, ok := fields[foldKey(name)]; ok && v != nil {
				return v
			}
		}
		return nil
	}

	res := &domain.AnalysisResult{
		Summary:         asText(get("summary")),
		Sentiment:       parseSentiment(get("sentiment")),
		Entities:        parseEntities(get("entities")),
		Keywords:        parseKeywords(get("keywords")),
		RiskFactors:     parseRiskFactors(get("risk_factors")),
		Classification:  parseClassification(get("classification")),
		Translation:     asText(get("translation")),
		KeyFindings:     parseTextList(get("key_findings")),
		Recommendations: parseTextList(get("recommendations")),
		Language:        strings.ToLower(asText(get("language"))),
		Confidence:      parseConfidence(get("confidence")),
	}
	if data, ok := get("extracted_data").(map[string]interface{}); ok && len(data) > 0 {
		res.ExtractedData = data
	}
	return res, nil
}

// MarshalResult encodes a normalized result for storage.
func MarshalResult(res *domain.AnalysisResult) (json.RawMessage, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("analyzer.MarshalResult: %w", err)
	}
	return b, nil
}

func stripFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// extractObject returns the first JSON object found in s.
func extractObject(s string) (map[string]interface{}, bool) {
	var candidates []string
	for _, m := range fencePattern.FindAllStringSubmatch(s, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, s)

	for _, c := range candidates {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(c), &obj); err == nil && obj != nil {
			return obj, true
		}
		for start := strings.IndexByte(c, '{'); start >= 0; {
			end := matchBrace(c, start)
			if end > start {
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(c[start:end+1]), &obj); err == nil {
					return obj, true
				}
			}
			next := strings.IndexByte(c[start+1:], '{')
			if next < 0 {
				break
			}
			start += next + 1
		}
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// unwrapEnvelope descends into {"analysis": {...}} style wrappers that hold
// no canonical keys themselves.
func unwrapEnvelope(obj map[string]interface{}) map[string]interface{} {
	for depth := 0; depth < 2; depth++ {
		if len(obj) != 1 || hasCanonicalKey(obj) {
			return obj
		}
		for _, v := range obj {
			inner, ok := v.(map[string]interface{})
			if !ok {
				return obj
			}
			obj = inner
		}
	}
	return obj
}

func hasCanonicalKey(obj map[string]interface{}) bool {
	fields := foldKeys(obj)
	for canonical, names := range fieldSynonyms {
		if canonical == "extracted_data" {
			continue
		}
		for _, n := range names {
			if _, ok := fields[foldKey(n)]; ok {
				return true
			}
		}
	}
	return false
}

func foldKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

func foldKeys(obj map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		fk := foldKey(k)
		if _, exists := out[fk]; !exists {
			out[fk] = v
		}
	}
	return out
}

// lookup returns the first non-nil value under any of the given keys.
func lookup(obj map[string]interface{}, keys ...string) interface{} {
	fields := foldKeys(obj)
	for _, k := range keys {
		if v, ok := fields[foldKey(k)]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := asText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]interface{}:
		return asText(lookup(t, "text", "summary", "content", "value", "description"))
	}
	return ""
}

func parseSentiment(v interface{}) *domain.Sentiment {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return sentimentFromScore(f)
		}
		label := sentimentLabel(t)
		return &domain.Sentiment{Label: label, Score: defaultSentimentScore(label)}
	case float64:
		return sentimentFromScore(t)
	case map[string]interface{}:
		labelVal := lookup(t, "label", "overall", "sentiment", "polarity", "value")
		scoreVal := lookup(t, "score", "polarity_score")

		var s domain.Sentiment
		hasScore := false
		if f, ok := toFloat(scoreVal); ok {
			s.Score = clamp(f, -1, 1)
			hasScore = true
		}
		switch lv := labelVal.(type) {
		case string:
			s.Label = sentimentLabel(lv)
			if !hasScore {
				s.Score = defaultSentimentScore(s.Label)
				// confidence is unsigned; it scales the label's direction
				if c, ok := toFloat(lookup(t, "confidence")); ok {
					s.Score = clamp(math.Copysign(parseConfidence(c), s.Score), -1, 1)
					if s.Label == domain.SentimentNeutral || s.Label == domain.SentimentMixed {
						s.Score = 0
					}
				}
			}
		case float64:
			derived := sentimentFromScore(lv)
			s.Label = derived.Label
			if !hasScore {
				s.Score = derived.Score
			}
		default:
			if !hasScore {
				return nil
			}
			s.Label = sentimentFromScore(s.Score).Label
		}
		return &s
	}
	return nil
}

func sentimentFromScore(f float64) *domain.Sentiment {
	f = clamp(f, -1, 1)
	label := domain.SentimentNeutral
	switch {
	case f > 0.2:
		label = domain.SentimentPositive
	case f < -0.2:
		label = domain.SentimentNegative
	}
	return &domain.Sentiment{Label: label, Score: f}
}

// sentimentLabel maps free-form labels, including the prompt languages, onto
// the four canonical values. Unknown labels are neutral.
func sentimentLabel(s string) domain.SentimentLabel {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case containsAny(s, "mix", "mieszan", "gemischt", "змішан"):
		return domain.SentimentMixed
	case containsAny(s, "neg", "негатив"):
		return domain.SentimentNegative
	case containsAny(s, "pos", "pozytyw", "позитив"):
		return domain.SentimentPositive
	default:
		return domain.SentimentNeutral
	}
}

func defaultSentimentScore(label domain.SentimentLabel) float64 {
	switch label {
	case domain.SentimentPositive:
		return 0.5
	case domain.SentimentNegative:
		return -0.5
	default:
		return 0
	}
}

func parseEntities(v interface{}) []domain.Entity {
	var out []domain.Entity
	seen := map[string]bool{}
	add := func(name, typ string) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, domain.Entity{Name: name, Type: strings.TrimSpace(typ)})
	}

	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			switch e := item.(type) {
			case string:
				add(e, "")
			case map[string]interface{}:
				add(asText(lookup(e, "name", "text", "entity", "value")), asText(lookup(e, "type", "category", "label", "entity_type")))
			}
		}
	case map[string]interface{}:
		// {"people": ["A"], "organizations": ["B"]}
		types := make([]string, 0, len(t))
		for k := range t {
			types = append(types, k)
		}
		sort.Strings(types)
		for _, typ := range types {
			switch names := t[typ].(type) {
			case []interface{}:
				for _, n := range names {
					add(asText(n), typ)
				}
			case string:
				add(names, typ)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			add(part, "")
		}
	}
	return out
}

func parseKeywords(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []interface{}:
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				raw = append(raw, asText(lookup(m, "keyword", "term", "word", "text", "name")))
				continue
			}
			raw = append(raw, asText(item))
		}
	}
	return dedupe(raw)
}

func parseTextList(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			raw = append(raw, strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		}
	case []interface{}:
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				raw = append(raw, asText(lookup(m, "text", "finding", "recommendation", "description", "title")))
				continue
			}
			raw = append(raw, asText(item))
		}
	}
	return dedupe(raw)
}

func parseRiskFactors(v interface{}) []domain.RiskFactor {
	items, ok := v.([]interface{})
	if !ok {
		if s := asText(v); s != "" {
			items = []interface{}{s}
		}
	}

	var out []domain.RiskFactor
	for _, item := range items {
		switch r := item.(type) {
		case string:
			if d := strings.TrimSpace(r); d != "" {
				out = append(out, domain.RiskFactor{Description: d, Severity: domain.SeverityMedium})
			}
		case map[string]interface{}:
			d := asText(lookup(r, "description", "risk", "factor", "name", "text", "title"))
			if d == "" {
				continue
			}
			out = append(out, domain.RiskFactor{
				Description: d,
				Severity:    severity(lookup(r, "severity", "level", "impact", "risk_level")),
			})
		}
	}
	return out
}

func severity(v interface{}) domain.RiskSeverity {
	if f, ok := v.(float64); ok {
		if f > 1 {
			f /= 10
		}
		switch {
		case f >= 0.67:
			return domain.SeverityHigh
		case f <= 0.33:
			return domain.SeverityLow
		}
		return domain.SeverityMedium
	}
	s := strings.ToLower(asText(v))
	switch {
	case containsAny(s, "high", "critical", "severe", "wysok", "krytycz", "hoch", "alt", "висок", "критич"):
		return domain.SeverityHigh
	case containsAny(s, "low", "minor", "nisk", "niedrig", "baj", "низьк"):
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}

func parseClassification(v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		if len(t) > 0 {
			return parseClassification(t[0])
		}
	case map[string]interface{}:
		return asText(lookup(t, "category", "label", "type", "name", "class"))
	default:
		return asText(v)
	}
	return ""
}

// parseConfidence accepts 0-1, 0-100 and percentage strings.
func parseConfidence(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		percent := strings.HasSuffix(s, "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0
		}
		f = parsed
		if percent {
			f /= 100
		}
	default:
		return 0
	}
	if f > 1 {
		f /= 100
	}
	return clamp(f, 0, 1)
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func dedupe(items []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range items {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(f, lo, hi float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(lo, math.Min(hi, f))
}
