package services

import (
	"sort"
	"strconv"
	"strings"

	"insights-dashboard/models"
)

// DefaultTopTerms bounds ranked insight lists when the caller passes no limit
const DefaultTopTerms = 10

// NoiseOptions configures the noise filter applied to mined terms
type NoiseOptions struct {
	Stoplist     map[string]struct{}
	MinLength    int
	MinFrequency int
}

// termCounts accumulates frequencies while remembering first-seen order so
// ties rank deterministically.
type termCounts struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newTermCounts() *termCounts {
	return &termCounts{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

func (tc *termCounts) add(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	if _, seen := tc.counts[term]; !seen {
		tc.order[term] = tc.next
		tc.next++
	}
	tc.counts[term]++
}

func (tc *termCounts) ranked(limit int) []models.FrequencyTerm {
	if limit <= 0 {
		limit = DefaultTopTerms
	}

	result := make([]models.FrequencyTerm, 0, len(tc.counts))
	for term, count := range tc.counts {
		result = append(result, models.FrequencyTerm{Term: term, Count: count})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return tc.order[result[i].Term] < tc.order[result[j].Term]
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// MineFrequencies scans an array-valued field across the record set and
// returns the top ranked terms by frequency. Records where the extractor
// yields nothing contribute nothing. Repeated calls on the same input yield
// the same ranking.
func MineFrequencies(records []models.EnrichedReport, extract func(models.EnrichedReport) []string, limit int) []models.FrequencyTerm {
	tc := newTermCounts()
	for _, record := range records {
		for _, term := range extract(record) {
			tc.add(term)
		}
	}
	return tc.ranked(limit)
}

// MineTopTerms mines frequencies and applies the noise filter. If filtering
// would remove every term, it falls back to an unfiltered ranking with only
// the length guard enforced, so sparse datasets still surface insights.
func MineTopTerms(records []models.EnrichedReport, extract func(models.EnrichedReport) []string, opts NoiseOptions, limit int) []models.FrequencyTerm {
	tc := newTermCounts()
	for _, record := range records {
		for _, term := range extract(record) {
			tc.add(term)
		}
	}

	filtered := FilterTerms(tc.counts, opts.Stoplist, opts.MinLength, opts.MinFrequency)
	if len(filtered) == 0 {
		fallback := newTermCounts()
		for term, count := range tc.counts {
			if len(term) > opts.MinLength {
				fallback.counts[term] = count
				fallback.order[term] = tc.order[term]
			}
		}
		return fallback.ranked(limit)
	}

	kept := newTermCounts()
	kept.counts = filtered
	kept.order = tc.order
	return kept.ranked(limit)
}

// FilterTerms drops low-value terms: stoplisted (case-insensitive), too
// short, purely numeric, or under-frequent. The input map is not mutated.
func FilterTerms(terms map[string]int, stoplist map[string]struct{}, minLength, minFrequency int) map[string]int {
	result := make(map[string]int, len(terms))
	for term, frequency := range terms {
		lower := strings.ToLower(term)
		if _, stopped := stoplist[lower]; stopped {
			continue
		}
		if len(term) <= minLength {
			continue
		}
		if isNumeric(term) {
			continue
		}
		if frequency < minFrequency {
			continue
		}
		result[term] = frequency
	}
	return result
}

func isNumeric(term string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(term), 64)
	return err == nil
}

// FeatureKeywords flattens a record's missing-feature map, repeating each
// keyword by its upstream weight so frequencies accumulate across records.
func FeatureKeywords(r models.EnrichedReport) []string {
	return expandWeighted(r.MissingFeatures)
}

// TerminologyGapKeywords flattens a record's terminology-gap map
func TerminologyGapKeywords(r models.EnrichedReport) []string {
	return expandWeighted(r.TerminologyGaps)
}

// UseCasePhrases returns a record's missing-use-case phrases
func UseCasePhrases(r models.EnrichedReport) []string {
	return r.MissingUseCases
}

// AskedQuestions returns the suggested-FAQ questions of a record
func AskedQuestions(r models.EnrichedReport) []string {
	if len(r.SuggestedFAQs) == 0 {
		return nil
	}
	questions := make([]string, 0, len(r.SuggestedFAQs))
	for _, faq := range r.SuggestedFAQs {
		if faq.Question != "" {
			questions = append(questions, faq.Question)
		}
	}
	return questions
}

func expandWeighted(weights map[string]int) []string {
	if len(weights) == 0 {
		return nil
	}
	// Deterministic expansion order keeps tie-breaks stable across runs.
	terms := make([]string, 0, len(weights))
	for term := range weights {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var out []string
	for _, term := range terms {
		count := weights[term]
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			out = append(out, strings.ToLower(term))
		}
	}
	return out
}
