// Package cobertura models the cobertura XML coverage report produced by
// upstream test jobs and validates it against configured rate thresholds.
package cobertura

import (
	"fmt"
	"strings"

	"github.com/coverbotdev/coverbot/internal/log"
	gce "github.com/coverbotdev/coverbot/pkg/encoding"
	gcs "github.com/coverbotdev/coverbot/pkg/format"
	gcv "github.com/coverbotdev/coverbot/pkg/validate"
)

const ReportType = "Cobertura Coverage Report"
const ConfigType = "Cobertura Coverage Config"
const ConfigFieldName = "coverage"

// DefaultFilename is the coverage file name expected inside the artifact
// archive.
const DefaultFilename = "coverage.xml"

// ScanReport is the root <coverage> element of a cobertura document. Rates
// are fractions in [0, 1] as written by cobertura-compatible tools.
type ScanReport struct {
	XMLName         struct{}  `xml:"coverage" json:"-"`
	LineRate        float64   `xml:"line-rate,attr" json:"lineRate"`
	BranchRate      float64   `xml:"branch-rate,attr" json:"branchRate"`
	LinesCovered    int64     `xml:"lines-covered,attr" json:"linesCovered"`
	LinesValid      int64     `xml:"lines-valid,attr" json:"linesValid"`
	BranchesCovered int64     `xml:"branches-covered,attr" json:"branchesCovered"`
	BranchesValid   int64     `xml:"branches-valid,attr" json:"branchesValid"`
	Complexity      float64   `xml:"complexity,attr" json:"complexity"`
	Version         string    `xml:"version,attr" json:"version"`
	Timestamp       int64     `xml:"timestamp,attr" json:"timestamp"`
	Sources         []string  `xml:"sources>source" json:"sources,omitempty"`
	Packages        []Package `xml:"packages>package" json:"packages"`
}

type Package struct {
	Name       string  `xml:"name,attr" json:"name"`
	LineRate   float64 `xml:"line-rate,attr" json:"lineRate"`
	BranchRate float64 `xml:"branch-rate,attr" json:"branchRate"`
	Complexity float64 `xml:"complexity,attr" json:"complexity"`
	Classes    []Class `xml:"classes>class" json:"classes,omitempty"`
}

type Class struct {
	Name       string  `xml:"name,attr" json:"name"`
	Filename   string  `xml:"filename,attr" json:"filename"`
	LineRate   float64 `xml:"line-rate,attr" json:"lineRate"`
	BranchRate float64 `xml:"branch-rate,attr" json:"branchRate"`
	Complexity float64 `xml:"complexity,attr" json:"complexity"`
	Lines      []Line  `xml:"lines>line" json:"lines,omitempty"`
}

type Line struct {
	Number int   `xml:"number,attr" json:"number"`
	Hits   int64 `xml:"hits,attr" json:"hits"`
	Branch bool  `xml:"branch,attr" json:"branch"`
}

func (r ScanReport) String() string {
	table := new(gcs.Table).WithHeader("Package", "Line Rate", "Branch Rate", "Complexity")

	for _, pkg := range r.Packages {
		table = table.WithRow(
			gcs.Summarize(pkg.Name, 64, gcs.ClipLeft),
			Percent(pkg.LineRate),
			Percent(pkg.BranchRate),
			fmt.Sprintf("%.0f", pkg.Complexity),
		)
	}

	table = table.SortBy([]gcs.SortBy{
		{Name: "Line Rate", Mode: gcs.Asc},
		{Name: "Package", Mode: gcs.Asc},
	}).Sort()

	total := fmt.Sprintf("Total: %s lines (%d/%d), %s branches (%d/%d)",
		Percent(r.LineRate), r.LinesCovered, r.LinesValid,
		Percent(r.BranchRate), r.BranchesCovered, r.BranchesValid)

	return table.String() + "\n" + total
}

// Percent formats a [0, 1] rate as a whole percentage.
func Percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

func NewReportDecoder() *gce.XMLWriterDecoder[ScanReport] {
	return gce.NewXMLWriterDecoder[ScanReport](ReportType, checkReport)
}

func NewConfigDecoder() *gce.MapDecoder[Config] {
	return gce.NewMapDecoder[Config](ConfigType, ConfigFieldName)
}

func checkReport(report *ScanReport) error {
	if report == nil {
		return gce.ErrFailedCheck
	}
	if report.LinesValid == 0 && len(report.Packages) == 0 {
		return fmt.Errorf("%w: no lines or packages recorded", gce.ErrFailedCheck)
	}
	return nil
}

// Config sets the minimum acceptable total rates as percentages. A value of
// -1 disables the corresponding check.
type Config struct {
	Required   bool    `yaml:"required" json:"required"`
	LineRate   float64 `yaml:"lineRate"   json:"lineRate"`
	BranchRate float64 `yaml:"branchRate" json:"branchRate"`
}

func NewValidator() *gcv.Validator[ScanReport, Config] {
	return gcv.NewValidator[ScanReport, Config](ConfigFieldName, NewReportDecoder(), validateFunc)
}

func validateFunc(report ScanReport, config Config) error {
	found := map[string]float64{
		"line rate":   report.LineRate * 100,
		"branch rate": report.BranchRate * 100,
	}
	required := map[string]float64{
		"line rate":   config.LineRate,
		"branch rate": config.BranchRate,
	}
	log.Infof("Coverage Findings: %v", gcs.PrettyPrintMap(found))

	var errStrings []string

	for name, minimum := range required {
		// A -1 in config disables the check
		if minimum == -1 {
			continue
		}
		if found[name] < minimum {
			s := fmt.Sprintf("%s (%.1f%% found < %.1f%% required)", name, found[name], minimum)
			errStrings = append(errStrings, s)
		}
	}

	if len(errStrings) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", gcv.ErrValidation, strings.Join(errStrings, ", "))
}
