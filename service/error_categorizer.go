package service

import (
	"strings"

	"github.com/flesh-fuzz/flesh/domain"
)

// ErrorCategorizerImpl implements domain.ErrorCategorizer.
type ErrorCategorizerImpl struct {
	patterns map[domain.ErrorCategory][]string
}

// NewErrorCategorizer creates a new error categorizer.
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns initializes error pattern mappings. These match
// against an external runner's stderr/panic text, not against flesh's own
// kinded domain.Error values (those are already categorized at the source).
func initializeErrorPatterns() map[domain.ErrorCategory][]string {
	return map[domain.ErrorCategory][]string{
		domain.ErrorCategoryTimeout: {
			"timeout",
			"deadline",
			"context canceled",
			"operation timed out",
			"killed",
		},
		domain.ErrorCategoryCrash: {
			"panic",
			"segmentation fault",
			"trap",
			"unreachable executed",
			"validation error",
			"exit status",
			"signal:",
		},
		domain.ErrorCategoryMismatch: {
			"mismatch",
			"expected path",
			"observed path",
			"assertion failed",
		},
		domain.ErrorCategoryConfig: {
			"config",
			"configuration",
			"invalid format",
			"toml",
			"unknown target",
			"unknown code type",
		},
		domain.ErrorCategoryOutput: {
			"write",
			"output",
			"cannot create",
			"failed to write",
		},
		domain.ErrorCategoryGeneration: {
			"no new distinct cfg",
			"generation timeout",
			"directions exhausted",
		},
	}
}

// Categorize determines the category of an error.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	errMsg := strings.ToLower(err.Error())

	for category, patterns := range ec.patterns {
		if containsAnyPattern(errMsg, patterns) {
			return &domain.CategorizedError{
				Category: category,
				Message:  ec.getCategoryMessage(category),
				Original: err,
			}
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category.
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryTimeout: {
			"Increase the run's RunnerTimeout or simplify the generator's --max_depth",
			"Check whether the target compiler/runtime is hanging on this input",
		},
		domain.ErrorCategoryCrash: {
			"This is a likely compiler bug — inspect the written bug report's Source field",
			"Try internal/reducer against the failing (cfg, directions) pair to minimise it",
		},
		domain.ErrorCategoryMismatch: {
			"This is a likely compiler bug — compare BugReport.Expected against BugReport.Observed",
			"Confirm the directions vector and code type used match the bug report",
		},
		domain.ErrorCategoryConfig: {
			"Run: flesh init to generate a valid flesh.toml",
			"Check --language/--code_type values against the documented enums",
		},
		domain.ErrorCategoryOutput: {
			"Check that --output_folder exists and is writable",
		},
		domain.ErrorCategoryGeneration: {
			"Widen --min_depth/--max_depth or relax the enabled construct set",
			"Increase the batch time budget if legitimate CFGs are simply sparse",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryTimeout:    "External runner timed out",
		domain.ErrorCategoryCrash:      "External runner crashed or exited non-zero",
		domain.ErrorCategoryMismatch:   "Observed path did not match the expected path",
		domain.ErrorCategoryConfig:     "Configuration file or flag error",
		domain.ErrorCategoryOutput:     "Failed to write a report or artifact",
		domain.ErrorCategoryGeneration: "Batch generation could not produce the requested CFGs in time",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}
	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
