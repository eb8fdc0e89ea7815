package mirror

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	reportIndentConstant              = 2
	reportFileModeConstant            = 0o644
	reportEncodeErrorTemplateConstant = "unable to encode run report: %w"
	reportWriteErrorTemplateConstant  = "unable to write run report %s: %w"
)

// Report is the persisted summary of a run.
type Report struct {
	GeneratedAt        time.Time          `yaml:"generated_at"`
	DryRun             bool               `yaml:"dry_run"`
	PagesFetched       int                `yaml:"pages_fetched"`
	RepositoriesListed int                `yaml:"repositories_listed"`
	Owner              ReportOwner        `yaml:"owner"`
	Summary            map[string]int     `yaml:"summary"`
	Repositories       []ReportRepository `yaml:"repositories"`
}

// ReportOwner identifies the Gogs account mirrors were created under.
type ReportOwner struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	ID   int64  `yaml:"id"`
}

// ReportRepository is one repository entry of the report.
type ReportRepository struct {
	Name       string `yaml:"name"`
	CloneURL   string `yaml:"clone_url"`
	Private    bool   `yaml:"private"`
	Outcome    string `yaml:"outcome"`
	StatusCode int    `yaml:"status_code,omitempty"`
}

const plannedOutcomeConstant = "planned"

// NewReport builds the report for a finished run. Dry runs list every selected
// repository with the planned outcome.
func NewReport(result Result) Report {
	report := Report{
		GeneratedAt:        result.FinishedAt.UTC(),
		DryRun:             result.DryRun,
		PagesFetched:       result.Selection.PagesFetched,
		RepositoriesListed: result.Selection.Listed,
		Owner: ReportOwner{
			Kind: result.Owner.Kind,
			Name: result.Owner.Name,
			ID:   int64(result.Owner.ID),
		},
		Summary:      map[string]int{},
		Repositories: []ReportRepository{},
	}

	if result.DryRun {
		for _, descriptor := range result.Selection.Repositories {
			report.Repositories = append(report.Repositories, ReportRepository{
				Name:     descriptor.Name,
				CloneURL: descriptor.CloneURL,
				Private:  descriptor.Private,
				Outcome:  plannedOutcomeConstant,
			})
		}
		report.Summary[plannedOutcomeConstant] = len(result.Selection.Repositories)
		return report
	}

	for kind, count := range result.OutcomeCounts() {
		report.Summary[string(kind)] = count
	}
	for _, registration := range result.Registrations {
		report.Repositories = append(report.Repositories, ReportRepository{
			Name:       registration.Repository.Name,
			CloneURL:   registration.Repository.CloneURL,
			Private:    registration.Repository.Private,
			Outcome:    string(registration.Outcome.Kind),
			StatusCode: registration.Outcome.StatusCode,
		})
	}
	return report
}

// WriteReport encodes the report as YAML.
func WriteReport(writer io.Writer, report Report) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(reportIndentConstant)
	if encodeError := encoder.Encode(report); encodeError != nil {
		return fmt.Errorf(reportEncodeErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(reportEncodeErrorTemplateConstant, closeError)
	}
	return nil
}

// WriteReportFile writes the YAML report to path, replacing any existing file.
func WriteReportFile(path string, report Report) error {
	var buffer bytes.Buffer
	if writeError := WriteReport(&buffer, report); writeError != nil {
		return writeError
	}
	if fileError := os.WriteFile(path, buffer.Bytes(), reportFileModeConstant); fileError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, path, fileError)
	}
	return nil
}
