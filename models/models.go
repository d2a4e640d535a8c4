package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	Service          string `json:"service,omitempty"`
	ConnectedClients int    `json:"connected_clients,omitempty"`
}

// FAQ is a suggested question/answer pair mined by the content-gap pipeline
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// GapReport represents a content-gap report row from the gap_reports table.
// The semi-structured columns are decoded by the normalizer package during
// scanning; downstream code never sees raw JSON text.
type GapReport struct {
	QueryID         string         `json:"query_id"`
	ExecutionID     string         `json:"execution_id"`
	Timestamp       time.Time      `json:"timestamp"`
	Priority        int            `json:"priority"`
	Similarity      float64        `json:"similarity"`
	PersonaID       string         `json:"persona_id"`
	PersonaName     string         `json:"persona_name"`
	PageURL         string         `json:"page_url"`
	Title           string         `json:"title"`
	SuggestedFAQs   []FAQ          `json:"suggested_faqs,omitempty"`
	MissingFeatures map[string]int `json:"missing_features,omitempty"`
	TerminologyGaps map[string]int `json:"terminology_gaps,omitempty"`
	MissingUseCases []string       `json:"missing_use_cases,omitempty"`
}

// ChatLogMetadata is the decoded metadata blob attached to a chat log
type ChatLogMetadata struct {
	QueryID string `json:"query_id"`
	Prompt  string `json:"prompt"`
	Date    string `json:"date"`
}

// ChatLog represents a raw chatbot conversation snapshot from chat_logs
type ChatLog struct {
	ID       int64           `json:"id"`
	Content  string          `json:"content"`
	Metadata ChatLogMetadata `json:"metadata"`
}

// Priority bucket values, pre-computed on EnrichedReport so tab counts and
// list filters always agree
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// EnrichedReport is a GapReport augmented with its correlated chat log, if
// any. Each value is independent; safe for concurrent reads.
type EnrichedReport struct {
	GapReport
	Content        *string `json:"content"`
	Prompt         *string `json:"prompt"`
	Matched        bool    `json:"matched"`
	PriorityBucket string  `json:"priority_bucket"`
}

// TimeBucket is a per-calendar-day aggregate used to render timelines
type TimeBucket struct {
	Date          string  `json:"date"`
	Count         int     `json:"count"`
	MatchedCount  int     `json:"matched_count"`
	AvgSimilarity float64 `json:"avg_similarity"`
	MatchRate     float64 `json:"match_rate"`
}

// CategorySummary is a (value, count) pair for one categorical dimension
type CategorySummary struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyTerm is a mined term with its accumulated frequency
type FrequencyTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// FilterState holds the active facets a request applies to the enriched
// record set. Owned by the caller; never mutated by the engine.
type FilterState struct {
	Search         string  `json:"search"`
	PriorityBucket string  `json:"priority_bucket"`
	Persona        string  `json:"persona"`
	PageURL        string  `json:"page_url"`
	MinSimilarity  float64 `json:"min_similarity"`
}

// HasFilters reports whether any facet is active
func (f FilterState) HasFilters() bool {
	return f.Search != "" || f.PriorityBucket != "" || f.Persona != "" ||
		f.PageURL != "" || f.MinSimilarity > 0
}

// Page is one stable page of enriched records
type Page struct {
	Records      []EnrichedReport `json:"records"`
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
	TotalRecords int              `json:"total_records"`
	TotalPages   int              `json:"total_pages"`
}

// ReportStats summarizes one report view
type ReportStats struct {
	Total         int     `json:"total"`
	HighPriority  int     `json:"high_priority"`
	AvgSimilarity float64 `json:"avg_similarity"`
	MentionCount  int     `json:"mention_count"`
}

// ReportView is the full content-gap report for one date
type ReportView struct {
	Date    string            `json:"date"`
	Empty   bool              `json:"empty"`
	Records []EnrichedReport  `json:"records"`
	Stats   ReportStats       `json:"stats"`
	Tabs    []CategorySummary `json:"tabs"`
}

// AnalyticsView is the chatbot analytics report over a trailing window
type AnalyticsView struct {
	WindowDays         int               `json:"window_days"`
	Timeline           []TimeBucket      `json:"timeline"`
	ByPersona          []CategorySummary `json:"by_persona"`
	ByPriority         []CategorySummary `json:"by_priority"`
	TopFeatureKeywords []FrequencyTerm   `json:"top_feature_keywords"`
	TopTerminologyGaps []FrequencyTerm   `json:"top_terminology_gaps"`
	TopUseCases        []FrequencyTerm   `json:"top_use_cases"`
	TopQuestions       []FrequencyTerm   `json:"top_questions"`
}

// ReportsResponse is the reports endpoint response: the view-level stats
// and tab counts from the unfiltered set plus one filtered, paginated page
type ReportsResponse struct {
	Date  string            `json:"date"`
	Empty bool              `json:"empty"`
	Stats ReportStats       `json:"stats"`
	Tabs  []CategorySummary `json:"tabs"`
	Page  Page              `json:"page"`
}

// BroadcastMessage represents a message sent to WebSocket clients
type BroadcastMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
