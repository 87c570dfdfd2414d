package main

import (
	"encoding/json"
	"fmt"
	"os"

	"veritas/internal/domain"
)

func printOutcome(outcome domain.PipelineOutcome) int {
	out := struct {
		SubmissionID string                     `json:"submission_id"`
		Status       domain.PipelineStatus      `json:"status"`
		FailureCode  string                     `json:"failure_code,omitempty"`
		Record       *domain.ProofRecord        `json:"record,omitempty"`
		Report       *domain.VerificationReport `json:"report,omitempty"`
	}{
		SubmissionID: outcome.SubmissionID,
		Status:       outcome.Status,
		FailureCode:  outcome.FailureCode,
		Record:       outcome.Record,
		Report:       outcome.Report,
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode outcome: %v\n", err)
		return 1
	}
	fmt.Println(string(raw))
	if outcome.FailureCode == domain.FailurePolicyViolation {
		return 2
	}
	return 0
}
