package model

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed or contradictory input record. It is
// surfaced before any solve is attempted.
type ValidationError struct {
	Message string
}

func (err ValidationError) Error() string {
	return "invalid input: " + err.Message
}

// InfeasibleError reports an exhausted search, carrying the violations found
// at the deepest partial state so the caller can render a diagnostic.
type InfeasibleError struct {
	Violations []Violation
}

func (err InfeasibleError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "no feasible allocation exists (%d violations at deepest search state)", len(err.Violations))
	for _, violation := range err.Violations {
		builder.WriteString("\n\t")
		builder.WriteString(violation.Message)
	}
	return builder.String()
}

// BudgetExceededError reports a solve stopped by a configured bound before
// an exhaustive proof of infeasibility. Unlike InfeasibleError it does not
// prove that no solution exists.
type BudgetExceededError struct {
	Phase  string
	Budget int
}

func (err BudgetExceededError) Error() string {
	return fmt.Sprintf("%s budget of %d exhausted before completion", err.Phase, err.Budget)
}
