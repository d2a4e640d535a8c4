package services

import (
	"sort"
	"time"

	"insights-dashboard/models"
)

const dateLayout = "2006-01-02"

// timeBucketAccumulator collects per-day samples before reduction
type timeBucketAccumulator struct {
	count        int
	matchedCount int
	similarities []float64
}

// AggregateByDate buckets the enriched records by their own calendar date
// and reduces each bucket to counts, a mean similarity and a match rate.
// Buckets older than windowDays from now are excluded.
func AggregateByDate(records []models.EnrichedReport, windowDays int) []models.TimeBucket {
	return aggregateByDateAt(records, windowDays, time.Now())
}

func aggregateByDateAt(records []models.EnrichedReport, windowDays int, now time.Time) []models.TimeBucket {
	windowStart := now.AddDate(0, 0, -windowDays).Format(dateLayout)
	windowEnd := now.Format(dateLayout)

	buckets := make(map[string]*timeBucketAccumulator)
	for _, record := range records {
		// The record's own timezone-naive date; no conversion is performed.
		date := record.Timestamp.Format(dateLayout)
		if date < windowStart || date > windowEnd {
			continue
		}

		bucket, ok := buckets[date]
		if !ok {
			bucket = &timeBucketAccumulator{}
			buckets[date] = bucket
		}

		bucket.count++
		if record.Matched {
			bucket.matchedCount++
		}
		// A zero or absent score must never pull down the average.
		if record.Similarity > 0 {
			bucket.similarities = append(bucket.similarities, record.Similarity)
		}
	}

	result := make([]models.TimeBucket, 0, len(buckets))
	for date, bucket := range buckets {
		result = append(result, models.TimeBucket{
			Date:          date,
			Count:         bucket.count,
			MatchedCount:  bucket.matchedCount,
			AvgSimilarity: mean(bucket.similarities),
			MatchRate:     rate(bucket.matchedCount, bucket.count),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}

// AggregateByCategory groups the records by an arbitrary string dimension,
// skipping records where the dimension is empty. Output is sorted by count
// descending; ties keep first-seen order.
func AggregateByCategory(records []models.EnrichedReport, dimension func(models.EnrichedReport) string) []models.CategorySummary {
	counts := make(map[string]int)
	order := make(map[string]int)
	var values []string

	for _, record := range records {
		value := dimension(record)
		if value == "" {
			continue
		}
		if _, seen := counts[value]; !seen {
			order[value] = len(values)
			values = append(values, value)
		}
		counts[value]++
	}

	result := make([]models.CategorySummary, 0, len(values))
	for _, value := range values {
		result = append(result, models.CategorySummary{Value: value, Count: counts[value]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return order[result[i].Value] < order[result[j].Value]
	})

	return result
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// rate returns matched/total as a percentage; zero total yields 0, not NaN
func rate(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total) * 100
}
