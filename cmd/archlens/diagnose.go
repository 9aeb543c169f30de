package main

import (
	"fmt"
	"strings"

	"github.com/archlens/archlens"
)

// Run executes the diagnose command.
func (c *DiagnoseCmd) Run(deps *Dependencies) error {
	problem := strings.TrimSpace(strings.Join(c.Problem, " "))
	if problem == "" {
		fmt.Fprintln(deps.Stdout, "Describe your problem in plain English, for example:")
		for _, example := range archlens.ExampleProblems() {
			fmt.Fprintf(deps.Stdout, "  archlens diagnose %q\n", example)
		}
		return nil
	}

	result, err := deps.Diagnostic.SubmitDiagnosis(deps.Ctx, problem)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", archlens.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d relevant packages", result.TotalFound)
	if len(result.MatchedKeywords) > 0 {
		fmt.Fprintf(deps.Stdout, " (matched: %s)", strings.Join(result.MatchedKeywords, ", "))
	}
	fmt.Fprintln(deps.Stdout)

	if len(result.Suggestions) == 0 {
		message := result.Message
		if message == "" {
			message = "No specific packages identified. Try different keywords."
		}
		fmt.Fprintln(deps.Stdout, message)
		return nil
	}

	for _, s := range result.Suggestions {
		fmt.Fprintf(deps.Stdout, "\n%s [%s] %d%% (%s confidence)\n",
			s.Package.Name, s.Package.Category, s.Confidence, archlens.ConfidenceBucket(s.Confidence))
		fmt.Fprintf(deps.Stdout, "  %s\n", s.Reason)
		fmt.Fprintf(deps.Stdout, "  $ %s\n", s.Command)
	}
	return nil
}
