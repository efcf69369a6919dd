package audit

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/memberaudit/internal/records"
)

const (
	categoryCountLineTemplateConstant      = "%s: %d"
	sampleHeaderLineTemplateConstant       = "sample (%d records):"
	sampleEntryLineTemplateConstant        = "  %s=%s %s=%s %s=%s %s=%s"
	sampleViolationsSuffixTemplateConstant = " violations=[%s]"
	rowsScannedLineTemplateConstant        = "rows scanned: %d"
	totalIssuesLineTemplateConstant        = "total issues: %d"
	issuePreviewLineTemplateConstant       = "showing %d of %d:"
	issueLineTemplateConstant              = "line %d: {%s}"
	issueCellTemplateConstant              = "%s: %s"
	sheetLineTemplateConstant              = "sheet: %s"
	headersLineTemplateConstant            = "headers: [%s]"
	missingColumnsLineTemplateConstant     = "missing required columns: [%s]"
	listSeparatorConstant                  = ", "
	emitErrorTemplateConstant              = "unable to write report: %w"
)

// ReportEmitter renders audit reports as plain text lines.
type ReportEmitter struct {
	writer io.Writer
}

// NewReportEmitter constructs an emitter writing to writer.
func NewReportEmitter(writer io.Writer) *ReportEmitter {
	return &ReportEmitter{writer: writer}
}

// CollectionLines renders the count-query report.
func CollectionLines(report CollectionReport) []string {
	lines := make([]string, 0, len(report.Counts)+len(report.Sample)+1)
	for _, categoryCount := range report.Counts {
		lines = append(lines, fmt.Sprintf(categoryCountLineTemplateConstant, categoryCount.Category, categoryCount.Count))
	}

	lines = append(lines, fmt.Sprintf(sampleHeaderLineTemplateConstant, len(report.Sample)))
	for _, entry := range report.Sample {
		line := fmt.Sprintf(sampleEntryLineTemplateConstant,
			records.IdentifierFieldName, entry.Member.ID,
			records.NameFieldName, entry.Member.Name,
			records.PackageIDFieldName, entry.Member.PackageID,
			records.PackageNameFieldName, entry.Member.PackageName,
		)
		if len(entry.Violations) > 0 {
			categories := make([]string, 0, len(entry.Violations))
			for _, violation := range entry.Violations {
				categories = append(categories, string(violation))
			}
			line += fmt.Sprintf(sampleViolationsSuffixTemplateConstant, strings.Join(categories, listSeparatorConstant))
		}
		lines = append(lines, line)
	}

	return lines
}

// RowLines renders the full-scan report.
func RowLines(report RowReport) []string {
	lines := []string{
		fmt.Sprintf(rowsScannedLineTemplateConstant, report.RowsScanned),
		fmt.Sprintf(categoryCountLineTemplateConstant, ViolationMissingRequiredField, report.TotalIssues),
		fmt.Sprintf(totalIssuesLineTemplateConstant, report.TotalIssues),
	}
	if report.TotalIssues == 0 {
		return lines
	}

	lines = append(lines, fmt.Sprintf(issuePreviewLineTemplateConstant, len(report.Issues), report.TotalIssues))
	for _, issue := range report.Issues {
		cells := make([]string, 0, len(issue.Data))
		for _, cell := range issue.Data {
			cells = append(cells, fmt.Sprintf(issueCellTemplateConstant, cell.Column, cell.Value))
		}
		lines = append(lines, fmt.Sprintf(issueLineTemplateConstant, issue.Line, strings.Join(cells, listSeparatorConstant)))
	}

	return lines
}

// HeaderLines renders a header inspection.
func HeaderLines(inspection HeaderInspection) []string {
	return []string{
		fmt.Sprintf(sheetLineTemplateConstant, inspection.SheetName),
		fmt.Sprintf(headersLineTemplateConstant, strings.Join(inspection.Headers, listSeparatorConstant)),
		fmt.Sprintf(missingColumnsLineTemplateConstant, strings.Join(inspection.MissingColumns, listSeparatorConstant)),
	}
}

// EmitCollection writes the count-query report.
func (emitter *ReportEmitter) EmitCollection(report CollectionReport) error {
	return emitter.writeLines(CollectionLines(report))
}

// EmitRows writes the full-scan report.
func (emitter *ReportEmitter) EmitRows(report RowReport) error {
	return emitter.writeLines(RowLines(report))
}

// EmitHeaders writes a header inspection.
func (emitter *ReportEmitter) EmitHeaders(inspection HeaderInspection) error {
	return emitter.writeLines(HeaderLines(inspection))
}

func (emitter *ReportEmitter) writeLines(lines []string) error {
	if emitter == nil || emitter.writer == nil {
		return nil
	}
	for _, line := range lines {
		if _, writeError := fmt.Fprintln(emitter.writer, line); writeError != nil {
			return fmt.Errorf(emitErrorTemplateConstant, writeError)
		}
	}
	return nil
}
