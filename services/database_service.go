package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/apex/log"

	"insights-dashboard/config"
	"insights-dashboard/models"
	"insights-dashboard/normalizer"

	_ "github.com/go-sql-driver/mysql"
)

// ReportStore is the persistence collaborator the view service depends on.
// Constructed in main and injected, so the engine carries no global state.
type ReportStore interface {
	GetLatestReportDate() (string, bool, error)
	GetReportsByDate(date string) ([]models.GapReport, error)
	GetReports() ([]models.GapReport, error)
	GetChatLogsByDate(date string) ([]models.ChatLog, error)
}

// DatabaseService manages database connections and queries for gap reports
// and chat logs
type DatabaseService struct {
	db *sql.DB
}

// NewDatabaseService creates a new database service
func NewDatabaseService(cfg *config.Config) (*DatabaseService, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	var waitInterval time.Duration = 1 * time.Second
	for {
		pingErr := db.Ping()
		if pingErr == nil {
			break
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, pingErr)
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Infof("Database connection established to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &DatabaseService{db: db}, nil
}

// NewDatabaseServiceFromDB wraps an existing connection; used by tests
func NewDatabaseServiceFromDB(db *sql.DB) *DatabaseService {
	return &DatabaseService{db: db}
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	return s.db.Close()
}

// GetLatestReportDate returns the most recent calendar date for which gap
// reports exist. The second return value is false when the table is empty.
func (s *DatabaseService) GetLatestReportDate() (string, bool, error) {
	var date sql.NullString
	err := s.db.QueryRow(`SELECT DATE_FORMAT(MAX(ts), '%Y-%m-%d') FROM gap_reports`).Scan(&date)
	if err != nil {
		return "", false, fmt.Errorf("failed to query latest report date: %w", err)
	}
	if !date.Valid {
		return "", false, nil
	}
	return date.String, true, nil
}

// GetReportsByDate returns the gap reports for one calendar date, ordered by
// priority descending with query id as a stable tie-break. Semi-structured
// columns are normalized during scanning; malformed ones come back absent.
func (s *DatabaseService) GetReportsByDate(date string) ([]models.GapReport, error) {
	query := `
		SELECT query_id, execution_id, ts, priority, similarity,
		       persona_id, persona_name, page_url, title,
		       suggested_faqs, missing_features, terminology_gaps, missing_use_cases
		FROM gap_reports
		WHERE DATE(ts) = ?
		ORDER BY priority DESC, query_id ASC
	`

	rows, err := s.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query gap reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetReports returns every gap report, newest first. The analytics view
// windows them by date in memory.
func (s *DatabaseService) GetReports() ([]models.GapReport, error) {
	query := `
		SELECT query_id, execution_id, ts, priority, similarity,
		       persona_id, persona_name, page_url, title,
		       suggested_faqs, missing_features, terminology_gaps, missing_use_cases
		FROM gap_reports
		ORDER BY ts DESC, priority DESC, query_id ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query gap reports: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReports(rows *sql.Rows) ([]models.GapReport, error) {
	var reports []models.GapReport
	for rows.Next() {
		var report models.GapReport
		var personaID, personaName, pageURL, title sql.NullString
		var faqs, features, gaps, useCases sql.NullString

		err := rows.Scan(
			&report.QueryID,
			&report.ExecutionID,
			&report.Timestamp,
			&report.Priority,
			&report.Similarity,
			&personaID,
			&personaName,
			&pageURL,
			&title,
			&faqs,
			&features,
			&gaps,
			&useCases,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gap report: %w", err)
		}

		report.PersonaID = personaID.String
		report.PersonaName = personaName.String
		report.PageURL = pageURL.String
		report.Title = title.String

		if faqs.Valid {
			report.SuggestedFAQs, _ = normalizer.FAQList(faqs.String, "suggested_faqs")
		}
		if features.Valid {
			report.MissingFeatures, _ = normalizer.IntMap(features.String, "missing_features")
		}
		if gaps.Valid {
			report.TerminologyGaps, _ = normalizer.IntMap(gaps.String, "terminology_gaps")
		}
		if useCases.Valid {
			report.MissingUseCases, _ = normalizer.StringList(useCases.String, "missing_use_cases")
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gap reports: %w", err)
	}

	return reports, nil
}

// GetChatLogsByDate returns the chat logs whose metadata date matches the
// given calendar date. Logs with undecodable metadata are kept with empty
// metadata; they simply never correlate.
func (s *DatabaseService) GetChatLogsByDate(date string) ([]models.ChatLog, error) {
	query := `
		SELECT id, content, metadata
		FROM chat_logs
		WHERE DATE(created_at) = ?
		ORDER BY id ASC
	`

	rows, err := s.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ChatLog
	for rows.Next() {
		var chatLog models.ChatLog
		var content, metadata sql.NullString

		if err := rows.Scan(&chatLog.ID, &content, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}

		chatLog.Content = content.String
		if metadata.Valid {
			chatLog.Metadata, _ = normalizer.Metadata(metadata.String)
		}

		logs = append(logs, chatLog)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat logs: %w", err)
	}

	return logs, nil
}
