package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/archlens/archlens"
)

// Ensure LoggingDiagnosticService implements archlens.DiagnosticService.
var _ archlens.DiagnosticService = (*LoggingDiagnosticService)(nil)

// LoggingDiagnosticService wraps a DiagnosticService with structured
// logging. The problem text itself is logged only by length; problem
// descriptions can contain anything the user typed.
type LoggingDiagnosticService struct {
	next   archlens.DiagnosticService
	logger *slog.Logger
}

// NewLoggingDiagnosticService creates a new LoggingDiagnosticService.
func NewLoggingDiagnosticService(next archlens.DiagnosticService, logger *slog.Logger) *LoggingDiagnosticService {
	return &LoggingDiagnosticService{next: next, logger: logger}
}

// SubmitDiagnosis delegates to the wrapped service and logs the outcome.
func (s *LoggingDiagnosticService) SubmitDiagnosis(ctx context.Context, problem string) (*archlens.DiagnosticResult, error) {
	begin := time.Now()
	result, err := s.next.SubmitDiagnosis(ctx, problem)
	if err != nil {
		s.logger.Error("diagnose",
			"problem_len", len(problem),
			"code", archlens.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	s.logger.Info("diagnose",
		"problem_len", len(problem),
		"found", result.TotalFound,
		"keywords", len(result.MatchedKeywords),
		"duration", time.Since(begin),
	)
	return result, nil
}
