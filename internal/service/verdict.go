package service

import (
	"strings"

	"github.com/noah-isme/gema-judge-api/internal/models"
	"github.com/noah-isme/gema-judge-api/pkg/judge"
)

// CaseOutcome is the per test case summary stored with a submission.
type CaseOutcome struct {
	TestCaseID uint     `json:"test_case_id"`
	Executed   bool     `json:"executed"`
	Passed     bool     `json:"passed"`
	Status     string   `json:"status,omitempty"`
	RuntimeMs  *float64 `json:"runtime_ms,omitempty"`
	MemoryKB   *float64 `json:"memory_kb,omitempty"`
	// Expected and Actual are only filled for cases that may be revealed on failure.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Verdict is the aggregated result of one graded run.
type Verdict struct {
	TestcasesPassed int           `json:"testcases_passed"`
	TotalTestcases  int           `json:"total_testcases"`
	AllPassed       bool          `json:"all_passed"`
	RuntimeMs       *float64      `json:"runtime_ms,omitempty"`
	MemoryKB        *float64      `json:"memory_kb,omitempty"`
	Cases           []CaseOutcome `json:"cases"`
}

// AggregateVerdict combines judge results with their test cases. results[i] belongs to
// cases[i]; cases without a result count as not executed. Runtime and memory report the
// largest value observed.
func AggregateVerdict(cases []models.TestCase, results []judge.Result) Verdict {
	verdict := Verdict{
		TotalTestcases: len(cases),
		Cases:          make([]CaseOutcome, 0, len(cases)),
	}

	for i, testCase := range cases {
		outcome := CaseOutcome{TestCaseID: testCase.ID}
		if i < len(results) {
			result := results[i]
			runtime := result.RuntimeMs()
			memory := result.MemoryKB

			outcome.Executed = true
			outcome.Status = result.Status.Description
			outcome.RuntimeMs = &runtime
			outcome.MemoryKB = &memory
			outcome.Passed = OutputMatches(result.Stdout, testCase.ExpectedOutput)

			verdict.RuntimeMs = maxOf(verdict.RuntimeMs, runtime)
			verdict.MemoryKB = maxOf(verdict.MemoryKB, memory)

			if !outcome.Passed && (testCase.IsSample || testCase.ShowOnFailure) {
				outcome.Expected = testCase.ExpectedOutput
				outcome.Actual = result.Stdout
			}
		}
		if outcome.Passed {
			verdict.TestcasesPassed++
		}
		verdict.Cases = append(verdict.Cases, outcome)
	}

	verdict.AllPassed = verdict.TotalTestcases > 0 && verdict.TestcasesPassed == verdict.TotalTestcases
	return verdict
}

// OutputMatches compares program output with the expected answer ignoring surrounding
// whitespace and line ending style.
func OutputMatches(actual, expected string) bool {
	return normalizeOutput(actual) == normalizeOutput(expected)
}

func normalizeOutput(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "\r\n", "\n"))
}

func maxOf(current *float64, value float64) *float64 {
	if current == nil || value > *current {
		return &value
	}
	return current
}
