package services

import (
	"strings"

	"insights-dashboard/models"
)

// ApplyFilters returns the records satisfying every active facet. Filters
// are conjunctive; an empty FilterState returns the input unchanged. The
// categorical facets match the pre-bucketed values on the record, so tab
// counts and the filtered list can never disagree on bucketing.
func ApplyFilters(records []models.EnrichedReport, filters models.FilterState) []models.EnrichedReport {
	if !filters.HasFilters() {
		return records
	}

	search := strings.ToLower(strings.TrimSpace(filters.Search))

	result := make([]models.EnrichedReport, 0, len(records))
	for _, record := range records {
		if search != "" && !matchesSearch(record, search) {
			continue
		}
		if filters.PriorityBucket != "" && record.PriorityBucket != filters.PriorityBucket {
			continue
		}
		if filters.Persona != "" && record.PersonaName != filters.Persona {
			continue
		}
		if filters.PageURL != "" && record.PageURL != filters.PageURL {
			continue
		}
		if filters.MinSimilarity > 0 && record.Similarity < filters.MinSimilarity {
			continue
		}
		result = append(result, record)
	}

	return result
}

// matchesSearch performs a case-insensitive substring match across the
// fixed set of searchable fields.
func matchesSearch(record models.EnrichedReport, search string) bool {
	if containsFold(record.Title, search) ||
		containsFold(record.PersonaName, search) ||
		containsFold(record.PageURL, search) {
		return true
	}
	if record.Content != nil && containsFold(*record.Content, search) {
		return true
	}
	if record.Prompt != nil && containsFold(*record.Prompt, search) {
		return true
	}
	for keyword := range record.MissingFeatures {
		if containsFold(keyword, search) {
			return true
		}
	}
	for keyword := range record.TerminologyGaps {
		if containsFold(keyword, search) {
			return true
		}
	}
	for _, phrase := range record.MissingUseCases {
		if containsFold(phrase, search) {
			return true
		}
	}
	for _, faq := range record.SuggestedFAQs {
		if containsFold(faq.Question, search) || containsFold(faq.Answer, search) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// Paginate slices one stable page out of the record set. Pages are 1-based;
// a page beyond the available range yields an empty page, not an error.
func Paginate(records []models.EnrichedReport, page, pageSize int) models.Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return models.Page{
			Records:      []models.EnrichedReport{},
			Page:         page,
			PageSize:     pageSize,
			TotalRecords: total,
			TotalPages:   totalPages,
		}
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return models.Page{
		Records:      records[start:end],
		Page:         page,
		PageSize:     pageSize,
		TotalRecords: total,
		TotalPages:   totalPages,
	}
}
