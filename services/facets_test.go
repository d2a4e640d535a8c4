package services

import (
	"testing"
	"time"

	"insights-dashboard/models"
)

func facetFixture() []models.EnrichedReport {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	content := "user asked about exporting dashboards to CSV"
	prompt := "how do I export"

	reports := []models.GapReport{
		{
			QueryID:     "q-1",
			Timestamp:   day,
			Priority:    5,
			Similarity:  0.92,
			PersonaName: "Developer",
			PageURL:     "https://docs.example.com/export",
			Title:       "Export coverage gap",
			MissingFeatures: map[string]int{
				"scheduled export": 2,
			},
		},
		{
			QueryID:     "q-2",
			Timestamp:   day,
			Priority:    3,
			Similarity:  0.41,
			PersonaName: "Admin",
			PageURL:     "https://docs.example.com/sso",
			Title:       "SSO setup gap",
			SuggestedFAQs: []models.FAQ{
				{Question: "Does SSO support Okta?"},
			},
		},
		{
			QueryID:     "q-3",
			Timestamp:   day,
			Priority:    1,
			Similarity:  0.15,
			PersonaName: "Developer",
			PageURL:     "https://docs.example.com/api",
			Title:       "API tokens gap",
			MissingUseCases: []string{
				"rotate api tokens automatically",
			},
		},
	}

	enriched := Correlate(reports, nil)
	enriched[0].Content = &content
	enriched[0].Prompt = &prompt
	enriched[0].Matched = true
	return enriched
}

func TestApplyFilters(t *testing.T) {
	records := facetFixture()

	tests := []struct {
		name    string
		filters models.FilterState
		wantIDs []string
	}{
		{
			name:    "no filters returns everything",
			filters: models.FilterState{},
			wantIDs: []string{"q-1", "q-2", "q-3"},
		},
		{
			name:    "search matches title",
			filters: models.FilterState{Search: "sso setup"},
			wantIDs: []string{"q-2"},
		},
		{
			name:    "search is case insensitive",
			filters: models.FilterState{Search: "EXPORT"},
			wantIDs: []string{"q-1"},
		},
		{
			name:    "search matches flattened faq text",
			filters: models.FilterState{Search: "okta"},
			wantIDs: []string{"q-2"},
		},
		{
			name:    "search matches use case phrases",
			filters: models.FilterState{Search: "rotate api"},
			wantIDs: []string{"q-3"},
		},
		{
			name:    "search matches correlated content",
			filters: models.FilterState{Search: "csv"},
			wantIDs: []string{"q-1"},
		},
		{
			name:    "priority bucket filter",
			filters: models.FilterState{PriorityBucket: models.PriorityHigh},
			wantIDs: []string{"q-1"},
		},
		{
			name:    "persona filter",
			filters: models.FilterState{Persona: "Developer"},
			wantIDs: []string{"q-1", "q-3"},
		},
		{
			name:    "url filter",
			filters: models.FilterState{PageURL: "https://docs.example.com/sso"},
			wantIDs: []string{"q-2"},
		},
		{
			name:    "similarity threshold",
			filters: models.FilterState{MinSimilarity: 0.4},
			wantIDs: []string{"q-1", "q-2"},
		},
		{
			name:    "filters are conjunctive",
			filters: models.FilterState{Persona: "Developer", MinSimilarity: 0.4},
			wantIDs: []string{"q-1"},
		},
		{
			name:    "no record satisfies all filters",
			filters: models.FilterState{Persona: "Admin", PriorityBucket: models.PriorityHigh},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(records, tt.filters)

			if len(got) > len(records) {
				t.Fatalf("ApplyFilters() grew the record set: %d > %d", len(got), len(records))
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ApplyFilters() returned %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].QueryID != id {
					t.Errorf("ApplyFilters()[%d].QueryID = %q, want %q", i, got[i].QueryID, id)
				}
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	records := facetFixture()

	tests := []struct {
		name        string
		page        int
		pageSize    int
		wantCount   int
		wantTotal   int
		wantPages   int
		wantFirstID string
	}{
		{
			name:        "first page",
			page:        1,
			pageSize:    2,
			wantCount:   2,
			wantTotal:   3,
			wantPages:   2,
			wantFirstID: "q-1",
		},
		{
			name:        "last partial page",
			page:        2,
			pageSize:    2,
			wantCount:   1,
			wantTotal:   3,
			wantPages:   2,
			wantFirstID: "q-3",
		},
		{
			name:      "page beyond range is empty, not an error",
			page:      5,
			pageSize:  2,
			wantCount: 0,
			wantTotal: 3,
			wantPages: 2,
		},
		{
			name:        "zero page clamps to first",
			page:        0,
			pageSize:    10,
			wantCount:   3,
			wantTotal:   3,
			wantPages:   1,
			wantFirstID: "q-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(records, tt.page, tt.pageSize)

			if len(got.Records) != tt.wantCount {
				t.Errorf("Paginate() returned %d records, want %d", len(got.Records), tt.wantCount)
			}
			if got.TotalRecords != tt.wantTotal {
				t.Errorf("Paginate().TotalRecords = %d, want %d", got.TotalRecords, tt.wantTotal)
			}
			if got.TotalPages != tt.wantPages {
				t.Errorf("Paginate().TotalPages = %d, want %d", got.TotalPages, tt.wantPages)
			}
			if tt.wantFirstID != "" && got.Records[0].QueryID != tt.wantFirstID {
				t.Errorf("Paginate().Records[0].QueryID = %q, want %q", got.Records[0].QueryID, tt.wantFirstID)
			}
		})
	}
}

func TestPaginate_Stateless(t *testing.T) {
	records := facetFixture()

	first := Paginate(records, 1, 2)
	second := Paginate(records, 1, 2)

	if len(first.Records) != len(second.Records) {
		t.Fatal("Paginate() is not stable across identical calls")
	}
	for i := range first.Records {
		if first.Records[i].QueryID != second.Records[i].QueryID {
			t.Errorf("Paginate() page content differs at index %d across identical calls", i)
		}
	}
}
