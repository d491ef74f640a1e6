package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/advenoh/ragchat/internal/models"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS query_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT NOT NULL,
		blog_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		sources TEXT,
		response_time_ms INTEGER,
		has_results BOOLEAN,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_query_logs_blog_id ON query_logs(blog_id);
	CREATE INDEX IF NOT EXISTS idx_query_logs_created_at ON query_logs(created_at);

	CREATE TABLE IF NOT EXISTS feedbacks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT NOT NULL,
		blog_id TEXT NOT NULL,
		question TEXT NOT NULL,
		rating TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedbacks_message_id ON feedbacks(message_id);
	CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveQueryLog appends one answered query. created_at is assigned by the store.
func (r *SQLiteRepository) SaveQueryLog(ctx context.Context, log *models.QueryLog) error {
	sourcesJSON, err := json.Marshal(log.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO query_logs (message_id, blog_id, question, answer, sources, response_time_ms, has_results)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.MessageID, log.BlogID, log.Question, log.Answer, string(sourcesJSON), log.ResponseTimeMs, log.HasResults,
	)
	return err
}

// SaveFeedback appends one rating row.
func (r *SQLiteRepository) SaveFeedback(ctx context.Context, fb *models.Feedback) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedbacks (message_id, blog_id, question, rating)
		 VALUES (?, ?, ?, ?)`,
		fb.MessageID, fb.BlogID, fb.Question, fb.Rating,
	)
	return err
}

// DailyCounts returns per-day query counts over the trailing days, ascending.
func (r *SQLiteRepository) DailyCounts(ctx context.Context, days int) ([]models.DailyCount, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT DATE(created_at) AS day, COUNT(*) AS count
		 FROM query_logs
		 WHERE created_at >= DATETIME('now', ?)
		 GROUP BY DATE(created_at)
		 ORDER BY day ASC`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.DailyCount
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TopQuestions returns the limit most frequent distinct questions.
func (r *SQLiteRepository) TopQuestions(ctx context.Context, limit int) ([]models.QuestionCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT question, COUNT(*) AS count
		 FROM query_logs
		 GROUP BY question
		 ORDER BY count DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.QuestionCount
	for rows.Next() {
		var q models.QuestionCount
		if err := rows.Scan(&q.Question, &q.Count); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// FeedbackRatio returns feedback totals and the rounded up-ratio.
func (r *SQLiteRepository) FeedbackRatio(ctx context.Context) (models.FeedbackRatio, error) {
	var ratio models.FeedbackRatio
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN rating = 'up' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN rating = 'down' THEN 1 ELSE 0 END), 0)
		 FROM feedbacks`,
	).Scan(&ratio.Total, &ratio.Up, &ratio.Down)
	if err != nil {
		return models.FeedbackRatio{}, err
	}
	if ratio.Total > 0 {
		ratio.UpRatio = round2(float64(ratio.Up) / float64(ratio.Total))
	}
	return ratio, nil
}

// AvgResponseTime returns the mean response time in ms, rounded to one decimal.
func (r *SQLiteRepository) AvgResponseTime(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(response_time_ms) FROM query_logs WHERE response_time_ms IS NOT NULL`,
	).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return round1(avg.Float64), nil
}

// SearchFailureRate returns the fraction of queries with has_results = false,
// rounded to two decimals.
func (r *SQLiteRepository) SearchFailureRate(ctx context.Context) (float64, error) {
	var total, failed int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN has_results = 0 THEN 1 ELSE 0 END), 0)
		 FROM query_logs`,
	).Scan(&total, &failed)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return round2(float64(failed) / float64(total)), nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
