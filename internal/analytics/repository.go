// Package analytics persists query logs and feedback and derives dashboard aggregates.
package analytics

import (
	"context"

	"github.com/advenoh/ragchat/internal/models"
)

// Repository is the append-only query-log store plus its dashboard reads.
// Each read is independently consistent; the five aggregates are not taken
// in one transaction.
type Repository interface {
	// SaveQueryLog appends one answered query. Rows are never updated or deleted.
	SaveQueryLog(ctx context.Context, log *models.QueryLog) error
	// SaveFeedback appends one rating. Multiple rows per message_id are allowed.
	SaveFeedback(ctx context.Context, fb *models.Feedback) error

	// DailyCounts returns per-day query counts over the trailing days,
	// ascending by date. Days without queries are absent from the result.
	DailyCounts(ctx context.Context, days int) ([]models.DailyCount, error)
	// TopQuestions returns the limit most frequent distinct questions with
	// counts. Ties are broken arbitrarily by the store.
	TopQuestions(ctx context.Context, limit int) ([]models.QuestionCount, error)
	// FeedbackRatio returns feedback totals and the up-ratio rounded to two
	// decimals; the ratio is 0.0 when there is no feedback.
	FeedbackRatio(ctx context.Context) (models.FeedbackRatio, error)
	// AvgResponseTime returns the mean response time in ms rounded to one
	// decimal; 0.0 when there are no rows.
	AvgResponseTime(ctx context.Context) (float64, error)
	// SearchFailureRate returns the fraction of queries with no results,
	// rounded to two decimals; 0.0 when there are no rows.
	SearchFailureRate(ctx context.Context) (float64, error)

	Close() error
}
