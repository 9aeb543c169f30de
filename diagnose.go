package archlens

import "context"

// Match types reported for diagnostic suggestions. Keyword matches come
// from the server's curated rule set and carry higher confidence than
// full-text search matches.
const (
	MatchKeyword = "keyword"
	MatchSearch  = "search"
)

// Suggestion is a ranked package recommendation produced by the diagnostic
// service, with a confidence score and a suggested remedial command.
type Suggestion struct {
	Package    Package `json:"package"`
	Confidence int     `json:"confidence"`
	Reason     string  `json:"reason"`
	Command    string  `json:"command"`
	MatchType  string  `json:"match_type"`
}

// DiagnosticResult is the full response to a submitted problem description.
type DiagnosticResult struct {
	TotalFound      int          `json:"total_found"`
	MatchedKeywords []string     `json:"matched_keywords"`
	Suggestions     []Suggestion `json:"suggestions"`
	Message         string       `json:"message,omitempty"`
}

// DiagnosticService submits problem descriptions for package diagnosis.
type DiagnosticService interface {
	// SubmitDiagnosis sends a natural-language problem description and
	// returns ranked package suggestions. The request is write-like and
	// is never retried automatically. Returns EINVALID for an empty
	// problem without issuing a request.
	SubmitDiagnosis(ctx context.Context, problem string) (*DiagnosticResult, error)
}

// Confidence buckets used when presenting suggestions.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ConfidenceBucket classifies a 0-100 confidence score into a display
// bucket: >=90 high, >=70 medium, otherwise low.
func ConfidenceBucket(confidence int) string {
	switch {
	case confidence >= 90:
		return ConfidenceHigh
	case confidence >= 70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ExampleProblems returns sample problem descriptions shown when the
// diagnostic tool has no result to display yet.
func ExampleProblems() []string {
	return []string{
		"My bluetooth headphones won't connect",
		"No sound coming from my speakers",
		"WiFi keeps disconnecting randomly",
		"Screen tearing when watching videos",
		"My laptop battery drains too fast",
	}
}
