package models

import "time"

// QueryLog is one answered query, appended once and never mutated.
type QueryLog struct {
	ID             int64     `json:"id"`
	MessageID      string    `json:"message_id"`
	BlogID         string    `json:"blog_id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Sources        []Source  `json:"sources,omitempty"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	HasResults     bool      `json:"has_results"`
	CreatedAt      time.Time `json:"created_at"`
}

// Feedback is one user rating for an answered query. message_id references a
// QueryLog by value only; multiple feedback rows per message are allowed.
type Feedback struct {
	ID        int64     `json:"id"`
	MessageID string    `json:"message_id"`
	BlogID    string    `json:"blog_id"`
	Question  string    `json:"question"`
	Rating    string    `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyCount is the number of query logs on one calendar day. Days with zero
// rows are not backfilled.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// QuestionCount is a distinct question string with its frequency.
type QuestionCount struct {
	Question string `json:"question"`
	Count    int64  `json:"count"`
}

// FeedbackRatio summarizes up/down feedback. UpRatio is rounded to two
// decimal places and is 0.0 when Total is 0.
type FeedbackRatio struct {
	Total   int64   `json:"total"`
	Up      int64   `json:"up"`
	Down    int64   `json:"down"`
	UpRatio float64 `json:"up_ratio"`
}
