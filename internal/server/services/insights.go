package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/insights"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

var ErrInsightsUnavailable = errors.New("insights generator not configured")

// InsightService makes exactly one model call per request.
type InsightService struct {
	generator insights.Generator
	logger    logging.Logger
}

// NewInsightService accepts a nil generator; requests then fail.
func NewInsightService(g insights.Generator, logger logging.Logger) *InsightService {
	return &InsightService{generator: g, logger: logger.With("module", "insights")}
}

func (s *InsightService) Generate(ctx context.Context, userID, query string, logs []models.LogEntry) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", validationError("query is required")
	}
	if s.generator == nil {
		return "", ErrInsightsUnavailable
	}
	answer, err := s.generator.Generate(ctx, insights.BuildPrompt(userID, query, logs))
	if err != nil {
		s.logger.Error(ctx, "insight generation failed", "user_id", userID, "error", err)
		return "", common.ErrorInternal
	}
	return answer, nil
}
