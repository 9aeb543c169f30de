package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/archlens/archlens"
)

// Diagnostic caches the single-shot, user-triggered diagnostic submission.
// Submissions are serialized: invoking Submit while one is pending is a
// no-op. The latest result or error is retained, each replacing the other.
type Diagnostic struct {
	mu      sync.Mutex
	service archlens.DiagnosticService
	pending bool
	result  *archlens.DiagnosticResult
	err     error
}

// NewDiagnostic creates a Diagnostic cache over the given service.
func NewDiagnostic(service archlens.DiagnosticService) *Diagnostic {
	return &Diagnostic{service: service}
}

// Submit sends the problem description for diagnosis. An empty problem is
// rejected with EINVALID before any request. If a submission is already
// pending, Submit returns nil without issuing a second request.
func (d *Diagnostic) Submit(ctx context.Context, problem string) error {
	if strings.TrimSpace(problem) == "" {
		return archlens.Errorf(archlens.EINVALID, "problem description required")
	}

	d.mu.Lock()
	if d.pending {
		d.mu.Unlock()
		return nil
	}
	d.pending = true
	d.mu.Unlock()

	result, err := d.service.SubmitDiagnosis(ctx, problem)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
	if err != nil {
		d.err = err
		d.result = nil
		return err
	}
	d.result = result
	d.err = nil
	return nil
}

// Pending reports whether a submission is in flight. Callers are expected
// to disable the submit trigger while pending.
func (d *Diagnostic) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Result returns the latest successful diagnosis, or nil.
func (d *Diagnostic) Result() *archlens.DiagnosticResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// Err returns the latest submission error, or nil.
func (d *Diagnostic) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
