package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"insights-dashboard/config"
	"insights-dashboard/middleware"
	"insights-dashboard/models"
	"insights-dashboard/services"
)

// InsightsHandler handles HTTP requests for the dashboard views
type InsightsHandler struct {
	viewService *services.ViewService
	cfg         *config.Config
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(viewService *services.ViewService, cfg *config.Config) *InsightsHandler {
	return &InsightsHandler{
		viewService: viewService,
		cfg:         cfg,
	}
}

// HealthHandler handles health check requests
func (h *InsightsHandler) HealthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status:  "healthy",
		Message: "Insights Dashboard service is running",
		Service: "insights-dashboard",
	}
	c.JSON(http.StatusOK, response)
}

// ReportsHandler serves the content-gap report for one date, filtered and
// paginated. Stats and tab counts always reflect the unfiltered set.
func (h *InsightsHandler) ReportsHandler(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	log.Infof("Reports request from user %s", userID)

	page, err := intQuery(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a valid integer"})
		return
	}
	pageSize, err := intQuery(c, "page_size", h.cfg.DefaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be a valid integer"})
		return
	}

	filters, err := filtersFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.viewService.BuildReportView(c.Query("date"))
	if err != nil {
		log.Errorf("Failed to build report view: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load reports, please retry", "retryable": true})
		return
	}

	filtered := services.ApplyFilters(view.Records, filters)

	response := models.ReportsResponse{
		Date:  view.Date,
		Empty: view.Empty,
		Stats: view.Stats,
		Tabs:  view.Tabs,
		Page:  services.Paginate(filtered, page, pageSize),
	}
	c.JSON(http.StatusOK, response)
}

// AnalyticsHandler serves the chatbot analytics view for a trailing window
func (h *InsightsHandler) AnalyticsHandler(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	log.Infof("Analytics request from user %s", userID)

	windowDays, err := intQuery(c, "window_days", h.cfg.DefaultWindowDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must be a valid integer"})
		return
	}
	if windowDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must be greater than 0"})
		return
	}

	view, err := h.viewService.BuildAnalyticsView(windowDays)
	if err != nil {
		log.Errorf("Failed to build analytics view: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load analytics, please retry", "retryable": true})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ExportHandler serves the flattened report as a CSV attachment
func (h *InsightsHandler) ExportHandler(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	log.Infof("Export request from user %s", userID)

	view, err := h.viewService.BuildReportView(c.Query("date"))
	if err != nil {
		log.Errorf("Failed to build report view for export: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load reports, please retry", "retryable": true})
		return
	}

	data, err := services.ExportCSV(view.Records)
	if err != nil {
		log.Errorf("Failed to build csv export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := "content-gap-report.csv"
	if view.Date != "" {
		filename = "content-gap-report-" + view.Date + ".csv"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func intQuery(c *gin.Context, key string, defaultValue int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}

func filtersFromQuery(c *gin.Context) (models.FilterState, error) {
	filters := models.FilterState{
		Search:         c.Query("q"),
		PriorityBucket: c.Query("priority"),
		Persona:        c.Query("persona"),
		PageURL:        c.Query("url"),
	}

	if raw := c.Query("min_similarity"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 || value > 1 {
			return models.FilterState{}, errInvalidSimilarity
		}
		filters.MinSimilarity = value
	}

	return filters, nil
}

var errInvalidSimilarity = errors.New("min_similarity must be a number between 0 and 1")
