package services

import (
	"reflect"
	"testing"

	"insights-dashboard/models"
)

func recordWithFeatures(features map[string]int) models.EnrichedReport {
	return models.EnrichedReport{
		GapReport: models.GapReport{MissingFeatures: features},
	}
}

func recordWithUseCases(useCases ...string) models.EnrichedReport {
	return models.EnrichedReport{
		GapReport: models.GapReport{MissingUseCases: useCases},
	}
}

func TestFilterTerms(t *testing.T) {
	tests := []struct {
		name         string
		terms        map[string]int
		stoplist     map[string]struct{}
		minLength    int
		minFrequency int
		expected     map[string]int
	}{
		{
			name:      "stoplist length and numeric guards",
			terms:     map[string]int{"https": 5, "pricing": 3, "a": 10},
			stoplist:  map[string]struct{}{"https": {}},
			minLength: 2,
			expected:  map[string]int{"pricing": 3},
		},
		{
			name:     "stoplist is case insensitive",
			terms:    map[string]int{"HTTPS": 5, "export": 2},
			stoplist: map[string]struct{}{"https": {}},
			expected: map[string]int{"export": 2},
		},
		{
			name:     "purely numeric terms dropped",
			terms:    map[string]int{"2024": 9, "404": 3, "v2 export": 2},
			expected: map[string]int{"v2 export": 2},
		},
		{
			name:         "under-frequent terms dropped",
			terms:        map[string]int{"webhooks": 4, "rare": 1},
			minFrequency: 2,
			expected:     map[string]int{"webhooks": 4},
		},
		{
			name:     "empty input",
			terms:    map[string]int{},
			expected: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTerms(tt.terms, tt.stoplist, tt.minLength, tt.minFrequency)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FilterTerms() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMineFrequencies(t *testing.T) {
	records := []models.EnrichedReport{
		recordWithUseCases("bulk import", "api access"),
		recordWithUseCases("api access"),
		recordWithUseCases("api access", "bulk import", "sso"),
		{}, // no use cases at all; contributes nothing
	}

	got := MineFrequencies(records, UseCasePhrases, 10)

	expected := []models.FrequencyTerm{
		{Term: "api access", Count: 3},
		{Term: "bulk import", Count: 2},
		{Term: "sso", Count: 1},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("MineFrequencies() = %v, want %v", got, expected)
	}
}

func TestMineFrequencies_LimitAndIdempotence(t *testing.T) {
	var records []models.EnrichedReport
	for i := 0; i < 5; i++ {
		records = append(records, recordWithUseCases("phrase-a", "phrase-b", "phrase-c"))
	}

	first := MineFrequencies(records, UseCasePhrases, 2)
	if len(first) != 2 {
		t.Fatalf("MineFrequencies() returned %d terms, want limit 2", len(first))
	}

	second := MineFrequencies(records, UseCasePhrases, 2)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("MineFrequencies() not idempotent: %v vs %v", first, second)
	}
}

func TestMineFrequencies_TiesKeepDiscoveryOrder(t *testing.T) {
	records := []models.EnrichedReport{
		recordWithUseCases("seen first", "seen second", "seen third"),
	}

	got := MineFrequencies(records, UseCasePhrases, 10)

	expected := []models.FrequencyTerm{
		{Term: "seen first", Count: 1},
		{Term: "seen second", Count: 1},
		{Term: "seen third", Count: 1},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("MineFrequencies() tie order = %v, want discovery order %v", got, expected)
	}
}

func TestMineTopTerms(t *testing.T) {
	records := []models.EnrichedReport{
		recordWithFeatures(map[string]int{"https": 5, "pricing": 3, "a": 10}),
	}

	opts := NoiseOptions{
		Stoplist:  map[string]struct{}{"https": {}},
		MinLength: 2,
	}

	got := MineTopTerms(records, FeatureKeywords, opts, 10)

	expected := []models.FrequencyTerm{{Term: "pricing", Count: 3}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("MineTopTerms() = %v, want %v", got, expected)
	}
}

func TestMineTopTerms_FallbackWhenFilterEmptiesEverything(t *testing.T) {
	// Every term is under-frequent, so strict filtering removes them all.
	// The fallback ranking keeps terms that clear the length guard.
	records := []models.EnrichedReport{
		recordWithFeatures(map[string]int{"billing": 1, "sso": 1, "a": 1}),
	}

	opts := NoiseOptions{
		MinLength:    2,
		MinFrequency: 5,
	}

	got := MineTopTerms(records, FeatureKeywords, opts, 10)

	if len(got) != 2 {
		t.Fatalf("MineTopTerms() fallback returned %d terms, want 2", len(got))
	}
	for _, term := range got {
		if term.Term == "a" {
			t.Error("MineTopTerms() fallback kept a term that fails the length guard")
		}
	}
}

func TestAskedQuestions(t *testing.T) {
	record := models.EnrichedReport{
		GapReport: models.GapReport{
			SuggestedFAQs: []models.FAQ{
				{Question: "Is there an API?", Answer: "Yes"},
				{Question: ""},
				{Question: "How do I export data?"},
			},
		},
	}

	got := AskedQuestions(record)

	expected := []string{"Is there an API?", "How do I export data?"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("AskedQuestions() = %v, want %v", got, expected)
	}

	if AskedQuestions(models.EnrichedReport{}) != nil {
		t.Error("AskedQuestions() on empty record should return nil")
	}
}

func TestFeatureKeywords_WeightedExpansion(t *testing.T) {
	record := recordWithFeatures(map[string]int{"Webhooks": 2, "sso": 1})

	got := FeatureKeywords(record)

	expected := []string{"webhooks", "webhooks", "sso"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("FeatureKeywords() = %v, want lowercased weighted expansion %v", got, expected)
	}
}
