package cobertura

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	gce "github.com/coverbotdev/coverbot/pkg/encoding"
	gcs "github.com/coverbotdev/coverbot/pkg/format"
)

const SummaryType = "Coverbot Coverage Summary"

// DefaultTitle is the first line of the rendered markdown document. Wrapping
// the body in collapsible markup keeps this line visible.
const DefaultTitle = "# Test Coverage Report"

// DefaultCollapseLabel labels the collapsible section of the rendered report.
const DefaultCollapseLabel = "Click to view the full coverage report"

// Health markers for rates measured against thresholds.
const (
	HealthPass = "✔"
	HealthWarn = "➖"
	HealthFail = "❌"
)

// Thresholds are percentages splitting coverage rates into fail, warn, and
// pass bands: below Warn fails, at or above Pass passes.
type Thresholds struct {
	Warn float64 `yaml:"warn" json:"warn"`
	Pass float64 `yaml:"pass" json:"pass"`
}

// DefaultThresholds matches the gates used by the upstream build pipeline.
var DefaultThresholds = Thresholds{Warn: 80, Pass: 90}

func (t Thresholds) Health(percent float64) string {
	switch {
	case percent >= t.Pass:
		return HealthPass
	case percent >= t.Warn:
		return HealthWarn
	default:
		return HealthFail
	}
}

func (t Thresholds) BadgeColor(percent float64) string {
	switch {
	case percent >= t.Pass:
		return gcs.BadgeColorSuccess
	case percent >= t.Warn:
		return gcs.BadgeColorWarning
	default:
		return gcs.BadgeColorCritical
	}
}

// Summary is the machine-readable digest of a scan report, also the source
// for the markdown rendering. Rates are percentages.
type Summary struct {
	Title           string           `json:"title"`
	LineRate        float64          `json:"lineRate"`
	BranchRate      float64          `json:"branchRate"`
	Complexity      float64          `json:"complexity"`
	LinesCovered    int64            `json:"linesCovered"`
	LinesValid      int64            `json:"linesValid"`
	BranchesCovered int64            `json:"branchesCovered"`
	BranchesValid   int64            `json:"branchesValid"`
	Health          string           `json:"health"`
	Thresholds      Thresholds       `json:"thresholds"`
	Packages        []PackageSummary `json:"packages"`
}

type PackageSummary struct {
	Name       string  `json:"name"`
	LineRate   float64 `json:"lineRate"`
	BranchRate float64 `json:"branchRate"`
	Complexity float64 `json:"complexity"`
	Health     string  `json:"health"`
}

func NewSummary(report *ScanReport, thresholds Thresholds) *Summary {
	summary := &Summary{
		Title:           DefaultTitle,
		LineRate:        report.LineRate * 100,
		BranchRate:      report.BranchRate * 100,
		Complexity:      report.Complexity,
		LinesCovered:    report.LinesCovered,
		LinesValid:      report.LinesValid,
		BranchesCovered: report.BranchesCovered,
		BranchesValid:   report.BranchesValid,
		Thresholds:      thresholds,
	}
	summary.Health = thresholds.Health(summary.LineRate)

	for _, pkg := range report.Packages {
		summary.Packages = append(summary.Packages, PackageSummary{
			Name:       pkg.Name,
			LineRate:   pkg.LineRate * 100,
			BranchRate: pkg.BranchRate * 100,
			Complexity: pkg.Complexity,
			Health:     thresholds.Health(pkg.LineRate * 100),
		})
	}
	return summary
}

// MarkdownOptions toggles optional sections of the rendered document.
type MarkdownOptions struct {
	Badge      bool
	BranchRate bool
	Complexity bool
}

// Markdown renders the summary as a markdown document. The first line is the
// title so the document can be wrapped with format.Collapse without
// disturbing its visible heading.
func (s *Summary) Markdown(opts MarkdownOptions) string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = DefaultTitle
	}
	sb.WriteString(title + "\n\n")

	if opts.Badge {
		message := fmt.Sprintf("%.0f%%", s.LineRate)
		sb.WriteString(gcs.Badge("Code Coverage", message, s.Thresholds.BadgeColor(s.LineRate)) + "\n\n")
	}

	header := []string{"Package", "Line Rate"}
	if opts.BranchRate {
		header = append(header, "Branch Rate")
	}
	if opts.Complexity {
		header = append(header, "Complexity")
	}
	header = append(header, "Health")

	table := new(gcs.Table).WithHeader(header...)
	for _, pkg := range s.Packages {
		table = table.WithRow(s.row(pkg.Name, pkg.LineRate, pkg.BranchRate, pkg.Complexity, pkg.Health, opts, false)...)
	}
	table = table.WithRow(s.row("**Summary**", s.LineRate, s.BranchRate, s.Complexity, s.Health, opts, true)...)

	sb.WriteString(table.Markdown() + "\n")
	sb.WriteString(fmt.Sprintf("\n_Minimum pass line rate is `%.0f%%`, warning below `%.0f%%`_\n", s.Thresholds.Pass, s.Thresholds.Warn))

	return sb.String()
}

func (s *Summary) row(name string, lineRate, branchRate, complexity float64, health string, opts MarkdownOptions, isTotal bool) []string {
	lineCell := fmt.Sprintf("%.0f%%", lineRate)
	if isTotal {
		lineCell = fmt.Sprintf("**%.0f%%** (%d/%d)", lineRate, s.LinesCovered, s.LinesValid)
	}
	row := []string{name, lineCell}
	if opts.BranchRate {
		branchCell := fmt.Sprintf("%.0f%%", branchRate)
		if isTotal {
			branchCell = fmt.Sprintf("**%.0f%%** (%d/%d)", branchRate, s.BranchesCovered, s.BranchesValid)
		}
		row = append(row, branchCell)
	}
	if opts.Complexity {
		row = append(row, fmt.Sprintf("%.0f", complexity))
	}
	return append(row, health)
}

// WriteJSON writes the machine-readable summary document.
func WriteJSON(w io.Writer, summary *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// NewSummaryDecoder reads back a machine-readable summary file.
func NewSummaryDecoder() *gce.JSONWriterDecoder[Summary] {
	return gce.NewJSONWriterDecoder[Summary](SummaryType, checkSummary)
}

func checkSummary(summary *Summary) error {
	if summary == nil {
		return gce.ErrFailedCheck
	}
	if summary.LinesValid == 0 && len(summary.Packages) == 0 {
		return fmt.Errorf("%w: no lines or packages recorded", gce.ErrFailedCheck)
	}
	return nil
}
