package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"insights-dashboard/config"
	"insights-dashboard/metrics"
	"insights-dashboard/models"
)

// ViewService builds the content-gap report and chatbot analytics views.
// Every call works on a fresh snapshot fetched from the store; nothing
// derived is cached or persisted.
type ViewService struct {
	store ReportStore
	cfg   *config.Config
}

// NewViewService creates a new view service
func NewViewService(store ReportStore, cfg *config.Config) *ViewService {
	return &ViewService{store: store, cfg: cfg}
}

// BuildReportView assembles the content-gap report for one date. An empty
// dateScope means the latest date with data; no data at all yields an
// explicit empty view, which is not an error. The report fetch is fatal on
// failure; a chat-log fetch failure degrades to uncorrelated records.
func (s *ViewService) BuildReportView(dateScope string) (models.ReportView, error) {
	start := time.Now()
	defer func() {
		metrics.ViewBuildDurationSeconds.WithLabelValues("report").Observe(time.Since(start).Seconds())
	}()

	date := dateScope
	if date == "" {
		latest, ok, err := s.store.GetLatestReportDate()
		if err != nil {
			metrics.FetchFailureTotal.WithLabelValues("latest_date").Inc()
			return models.ReportView{}, fmt.Errorf("loading the report dates failed, please retry: %w", err)
		}
		if !ok {
			log.Info("No gap reports in the store yet, serving empty state")
			return models.ReportView{Empty: true, Records: []models.EnrichedReport{}}, nil
		}
		date = latest
	}

	// The two source fetches are independent; issue them concurrently and
	// wait for both before correlating.
	var (
		wg         sync.WaitGroup
		reports    []models.GapReport
		reportsErr error
		chatLogs   []models.ChatLog
		logsErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		reports, reportsErr = s.store.GetReportsByDate(date)
	}()
	go func() {
		defer wg.Done()
		chatLogs, logsErr = s.store.GetChatLogsByDate(date)
	}()
	wg.Wait()

	if reportsErr != nil {
		metrics.FetchFailureTotal.WithLabelValues("gap_reports").Inc()
		return models.ReportView{}, fmt.Errorf("loading the gap reports failed, please retry: %w", reportsErr)
	}
	if logsErr != nil {
		// Degraded mode: the report still renders, just without chat context.
		metrics.FetchFailureTotal.WithLabelValues("chat_logs").Inc()
		log.Warnf("Chat log fetch for %s failed, serving uncorrelated records: %v", date, logsErr)
		chatLogs = nil
	}

	enriched := Correlate(reports, chatLogs)

	view := models.ReportView{
		Date:    date,
		Records: enriched,
		Stats:   buildStats(enriched),
		// Tab counts reflect the unfiltered set; the list below them is
		// the only thing filters narrow.
		Tabs: AggregateByCategory(enriched, func(r models.EnrichedReport) string {
			return r.PriorityBucket
		}),
	}

	if len(enriched) == 0 {
		view.Empty = true
		view.Records = []models.EnrichedReport{}
	}

	return view, nil
}

// BuildAnalyticsView assembles the chatbot analytics report over a trailing
// window of days. Chat logs are fetched per report date so correlation
// candidates stay date-scoped; a failed per-date log fetch degrades that
// date instead of aborting the view.
func (s *ViewService) BuildAnalyticsView(windowDays int) (models.AnalyticsView, error) {
	start := time.Now()
	defer func() {
		metrics.ViewBuildDurationSeconds.WithLabelValues("analytics").Observe(time.Since(start).Seconds())
	}()

	if windowDays <= 0 {
		windowDays = s.cfg.DefaultWindowDays
	}

	reports, err := s.store.GetReports()
	if err != nil {
		metrics.FetchFailureTotal.WithLabelValues("gap_reports").Inc()
		return models.AnalyticsView{}, fmt.Errorf("loading the gap reports failed, please retry: %w", err)
	}

	enriched := s.correlateByDate(reports, windowDays)

	view := models.AnalyticsView{
		WindowDays: windowDays,
		Timeline:   AggregateByDate(enriched, windowDays),
		ByPersona: AggregateByCategory(enriched, func(r models.EnrichedReport) string {
			return r.PersonaName
		}),
		ByPriority: AggregateByCategory(enriched, func(r models.EnrichedReport) string {
			return r.PriorityBucket
		}),
		TopFeatureKeywords: MineTopTerms(enriched, FeatureKeywords, s.noiseOptions(s.cfg.FeatureStoplist), s.cfg.TopTermsLimit),
		TopTerminologyGaps: MineTopTerms(enriched, TerminologyGapKeywords, s.noiseOptions(s.cfg.TermStoplist), s.cfg.TopTermsLimit),
		TopUseCases:        MineTopTerms(enriched, UseCasePhrases, s.noiseOptions(s.cfg.UseCaseStoplist), s.cfg.TopTermsLimit),
		TopQuestions:       MineFrequencies(enriched, AskedQuestions, s.cfg.TopTermsLimit),
	}

	return view, nil
}

// correlateByDate groups in-window reports by calendar date and correlates
// each group against that date's chat logs.
func (s *ViewService) correlateByDate(reports []models.GapReport, windowDays int) []models.EnrichedReport {
	windowStart := time.Now().AddDate(0, 0, -windowDays).Format(dateLayout)

	grouped := make(map[string][]models.GapReport)
	var dates []string
	for _, report := range reports {
		date := report.Timestamp.Format(dateLayout)
		if date < windowStart {
			continue
		}
		if _, seen := grouped[date]; !seen {
			dates = append(dates, date)
		}
		grouped[date] = append(grouped[date], report)
	}

	var enriched []models.EnrichedReport
	for _, date := range dates {
		chatLogs, err := s.store.GetChatLogsByDate(date)
		if err != nil {
			metrics.FetchFailureTotal.WithLabelValues("chat_logs").Inc()
			log.Warnf("Chat log fetch for %s failed, correlating that date without logs: %v", date, err)
			chatLogs = nil
		}
		enriched = append(enriched, Correlate(grouped[date], chatLogs)...)
	}

	return enriched
}

func (s *ViewService) noiseOptions(stoplist []string) NoiseOptions {
	return NoiseOptions{
		Stoplist:     config.StoplistSet(stoplist),
		MinLength:    s.cfg.MinTermLength,
		MinFrequency: s.cfg.MinTermFrequency,
	}
}

func buildStats(records []models.EnrichedReport) models.ReportStats {
	stats := models.ReportStats{Total: len(records)}

	var similarities []float64
	for _, record := range records {
		if record.PriorityBucket == models.PriorityHigh {
			stats.HighPriority++
		}
		if record.Matched {
			stats.MentionCount++
		}
		if record.Similarity > 0 {
			similarities = append(similarities, record.Similarity)
		}
	}
	stats.AvgSimilarity = mean(similarities)

	return stats
}
