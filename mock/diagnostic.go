package mock

import (
	"context"

	"github.com/archlens/archlens"
)

var _ archlens.DiagnosticService = (*DiagnosticService)(nil)

// DiagnosticService is a mock implementation of archlens.DiagnosticService.
type DiagnosticService struct {
	SubmitDiagnosisFn func(ctx context.Context, problem string) (*archlens.DiagnosticResult, error)
}

func (s *DiagnosticService) SubmitDiagnosis(ctx context.Context, problem string) (*archlens.DiagnosticResult, error) {
	return s.SubmitDiagnosisFn(ctx, problem)
}
