package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"insights-dashboard/models"
)

var exportHeader = []string{
	"date", "query_id", "execution_id", "priority", "priority_bucket",
	"similarity_pct", "persona", "page_url", "title", "chat_matched",
	"prompt", "missing_feature", "feature_weight", "missing_use_cases",
	"suggested_questions",
}

// ExportCSV flattens enriched records into a spreadsheet-friendly table.
// A record with several missing-feature recommendations emits one row per
// feature; a record without any emits a single row with the feature columns
// blank. Similarity is exported as a percentage, matching the display.
func ExportCSV(records []models.EnrichedReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, record := range records {
		base := []string{
			record.Timestamp.Format(dateLayout),
			record.QueryID,
			record.ExecutionID,
			fmt.Sprintf("%d", record.Priority),
			record.PriorityBucket,
			fmt.Sprintf("%.1f", record.Similarity*100),
			record.PersonaName,
			record.PageURL,
			record.Title,
			fmt.Sprintf("%t", record.Matched),
			stringOrEmpty(record.Prompt),
		}
		useCases := strings.Join(record.MissingUseCases, "; ")
		questions := strings.Join(AskedQuestions(record), "; ")

		features := sortedFeatures(record.MissingFeatures)
		if len(features) == 0 {
			row := append(append([]string{}, base...), "", "", useCases, questions)
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}

		for _, feature := range features {
			row := append(append([]string{}, base...),
				feature,
				fmt.Sprintf("%d", record.MissingFeatures[feature]),
				useCases,
				questions,
			)
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func sortedFeatures(features map[string]int) []string {
	if len(features) == 0 {
		return nil
	}
	keys := make([]string, 0, len(features))
	for key := range features {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
