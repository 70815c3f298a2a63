package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const toolInformationURI = "https://github.com/0xphen/sebi"

// sarifLevel maps catalog severities onto SARIF result levels.
func sarifLevel(severity string) string {
	switch severity {
	case "High":
		return "error"
	case "Med":
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF converts the report to a SARIF 2.1.0 log with one run. Each
// triggered rule becomes a result anchored at the artifact; the rule
// metadata is registered on the driver so downstream viewers can show
// titles and default severities.
func ToSARIF(r *Report) (*sarif.Report, error) {
	out, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	run := sarif.NewRunWithInformationURI(r.Tool.Name, toolInformationURI)

	uri := "artifact.wasm"
	if r.Artifact.Path != nil {
		uri = *r.Artifact.Path
	}

	for _, tr := range r.Rules.Triggered {
		level := sarifLevel(string(tr.Severity))

		rule := run.AddRule(tr.RuleID).
			WithDescription(tr.Title).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(tr.Message)).
			WithLevel(level).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	out.AddRun(run)
	return out, nil
}

// WriteSARIF renders the report as pretty-printed SARIF to w.
func WriteSARIF(r *Report, w io.Writer) error {
	log, err := ToSARIF(r)
	if err != nil {
		return err
	}
	return log.PrettyWrite(w)
}
