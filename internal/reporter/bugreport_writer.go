// Package reporter serializes domain.BugReport values to JSON, YAML, or
// SARIF, grounded on the teacher's internal/reporter/complexity_reporter.go
// serializable-report pattern and code-pathfinder's SARIF formatter.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"
	"gopkg.in/yaml.v3"

	"github.com/flesh-fuzz/flesh/domain"
)

// BugReportWriter writes a single domain.BugReport in one of flesh's
// supported output formats.
type BugReportWriter struct{}

// NewBugReportWriter creates a new BugReportWriter.
func NewBugReportWriter() *BugReportWriter {
	return &BugReportWriter{}
}

// Write encodes report to w in the given format.
func (rw *BugReportWriter) Write(w io.Writer, report *domain.BugReport, format domain.OutputFormat) error {
	switch format {
	case domain.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return domain.NewOutputError("failed to encode bug report as json", err)
		}
		return nil
	case domain.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(report); err != nil {
			return domain.NewOutputError("failed to encode bug report as yaml", err)
		}
		return nil
	case domain.OutputFormatSARIF:
		return rw.writeSARIF(w, report)
	default:
		return domain.NewOutputError(fmt.Sprintf("unsupported bug report format %q", format), nil)
	}
}

// writeSARIF emits a single-result SARIF 2.1.0 log for report. A
// CompileFailure/RuntimeFailure carries no Expected/Observed pair; a
// PathMismatch gets a code flow comparing the two paths.
func (rw *BugReportWriter) writeSARIF(w io.Writer, report *domain.BugReport) error {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return domain.NewOutputError("failed to create sarif log", err)
	}

	run := sarif.NewRunWithInformationURI("flesh", "https://github.com/flesh-fuzz/flesh")
	ruleID := report.Kind

	run.AddRule(ruleID).
		WithDescription(fmt.Sprintf("flesh harness %s against %s/%s", ruleID, report.Target, report.CodeType)).
		WithName(ruleID)

	result := run.CreateResultForRule(ruleID).
		WithMessage(sarif.NewTextMessage(report.Message))

	artifactURI := fmt.Sprintf("seed-%d.%s", report.Seed, report.Target)
	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(artifactURI)),
		)
	result.AddLocation(location)

	if report.Kind == domain.KindPathMismatch {
		rw.addPathMismatchFlow(result, report)
	}

	log.AddRun(run)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return domain.NewOutputError("failed to encode sarif log", err)
	}
	return nil
}

func (rw *BugReportWriter) addPathMismatchFlow(result *sarif.Result, report *domain.BugReport) {
	expectedMsg := fmt.Sprintf("expected path: %v", report.Expected)
	observedMsg := fmt.Sprintf("observed path: %v", report.Observed)

	expectedLoc := sarif.NewLocation().WithMessage(sarif.NewTextMessage(expectedMsg))
	observedLoc := sarif.NewLocation().WithMessage(sarif.NewTextMessage(observedMsg))

	threadFlow := sarif.NewThreadFlow().
		WithLocations([]*sarif.ThreadFlowLocation{
			sarif.NewThreadFlowLocation().WithLocation(expectedLoc),
			sarif.NewThreadFlowLocation().WithLocation(observedLoc),
		})

	flowMsg := fmt.Sprintf("paths diverge at index %d", report.MismatchIndex)
	codeFlow := sarif.NewCodeFlow().
		WithThreadFlows([]*sarif.ThreadFlow{threadFlow}).
		WithMessage(sarif.NewTextMessage(flowMsg))

	result.WithCodeFlows([]*sarif.CodeFlow{codeFlow})
}
