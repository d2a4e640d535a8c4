package services

import (
	"github.com/apex/log"

	"insights-dashboard/metrics"
	"insights-dashboard/models"
)

// Correlate matches each gap report to its chatbot conversation by query id.
// The chat log set is already scoped to the report date by the fetch, so the
// candidate set stays small without requiring exact-timestamp equality.
//
// When several logs share a query id the first one in fetch order wins; the
// ambiguity is logged and counted so duplicated correlation keys upstream
// stay visible. Reports without a match are kept with nil enrichment fields,
// never dropped: len(result) == len(reports) always holds.
func Correlate(reports []models.GapReport, logs []models.ChatLog) []models.EnrichedReport {
	logsByQueryID := make(map[string][]models.ChatLog, len(logs))
	for _, chatLog := range logs {
		queryID := chatLog.Metadata.QueryID
		if queryID == "" {
			continue
		}
		logsByQueryID[queryID] = append(logsByQueryID[queryID], chatLog)
	}

	enriched := make([]models.EnrichedReport, 0, len(reports))
	for _, report := range reports {
		record := models.EnrichedReport{
			GapReport:      report,
			PriorityBucket: PriorityBucket(report.Priority),
		}

		candidates := logsByQueryID[report.QueryID]
		switch {
		case len(candidates) == 0:
			metrics.CorrelationMissTotal.Inc()
		default:
			if len(candidates) > 1 {
				log.Warnf("Query %s has %d candidate chat logs, keeping the first",
					report.QueryID, len(candidates))
				metrics.CorrelationAmbiguousTotal.Inc()
			}
			matched := candidates[0]
			content := matched.Content
			prompt := matched.Metadata.Prompt
			record.Content = &content
			record.Prompt = &prompt
			record.Matched = true
		}

		enriched = append(enriched, record)
	}

	return enriched
}

// PriorityBucket maps a 1..5 priority score to its display bucket
func PriorityBucket(priority int) string {
	switch {
	case priority >= 4:
		return models.PriorityHigh
	case priority == 3:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
