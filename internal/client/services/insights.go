package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/logging"
)

// InsightFallback replaces any failed or empty answer.
const InsightFallback = "Sorry, I encountered an error. Please try again."

type InsightClient interface {
	RequestInsights(ctx context.Context, query string, logs []models.LogEntry) (string, error)
}

// InsightService asks the hosted model about the owner's dose logs. It
// keeps no state and never retries.
type InsightService struct {
	client InsightClient
	logger logging.Logger
}

func NewInsightService(c InsightClient, logger logging.Logger) *InsightService {
	return &InsightService{client: c, logger: logger.With("module", "insights")}
}

// Ask always returns something to show.
func (s *InsightService) Ask(ctx context.Context, query string, logs []models.LogEntry) string {
	answer, err := s.client.RequestInsights(ctx, query, logs)
	if err != nil {
		s.logger.Warn(ctx, "insight request failed", "error", err)
		return InsightFallback
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return InsightFallback
	}
	return answer
}
