package audit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/spreadsheet"
)

const (
	missingCollectionSourceMessageConstant = "collection source is not configured"
	missingRowSourceMessageConstant        = "row source is not configured"
	missingDocumentWriterMessageConstant   = "document writer is not configured"
	countErrorTemplateConstant             = "unable to count %s: %w"
	sampleErrorTemplateConstant            = "unable to fetch sample: %w"
	sheetErrorTemplateConstant             = "unable to read sheet: %w"
	importErrorTemplateConstant            = "unable to import documents: %w"
	logMessageCategoryCountedConstant      = "category counted"
	logMessageSampleFetchedConstant        = "sample fetched"
	logMessageRowsScannedConstant          = "rows scanned"
	logMessageDocumentsImportedConstant    = "documents imported"
	logFieldCategoryConstant               = "category"
	logFieldCountConstant                  = "count"
	logFieldSampleSizeConstant             = "sample_size"
	logFieldRowsConstant                   = "rows"
	logFieldIssuesConstant                 = "issues"
	logFieldDocumentsConstant              = "documents"
)

// ErrMissingIdentifier indicates a document without an identifier was offered for import.
var ErrMissingIdentifier = errors.New("document is missing " + records.IdentifierFieldName)

// Service aggregates validator results into audit reports. It performs no
// output and never terminates the process.
type Service struct {
	logger     *zap.Logger
	validators []MemberValidator
}

// NewService constructs a Service with the default member validators.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, validators: DefaultMemberValidators()}
}

// AuditCollection counts every category server-side, one query after another
// in declaration order, then fetches an unconditioned sample. Any source error
// aborts the run without a report.
func (service *Service) AuditCollection(executionContext context.Context, source CollectionSource, options CollectionOptions) (CollectionReport, error) {
	if source == nil {
		return CollectionReport{}, errors.New(missingCollectionSourceMessageConstant)
	}

	counts := make([]CategoryCount, 0, len(service.validators))
	for _, validator := range service.validators {
		count, countError := source.Count(executionContext, validator.Condition)
		if countError != nil {
			return CollectionReport{}, fmt.Errorf(countErrorTemplateConstant, validator.Category, countError)
		}
		service.logger.Debug(logMessageCategoryCountedConstant,
			zap.String(logFieldCategoryConstant, string(validator.Category)),
			zap.Int64(logFieldCountConstant, count),
		)
		counts = append(counts, CategoryCount{Category: validator.Category, Count: count})
	}

	sampleLimit := options.SampleLimit
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}

	members, fetchError := source.Fetch(executionContext, sampleLimit)
	if fetchError != nil {
		return CollectionReport{}, fmt.Errorf(sampleErrorTemplateConstant, fetchError)
	}
	if len(members) > sampleLimit {
		members = members[:sampleLimit]
	}

	sample := make([]SampleEntry, 0, len(members))
	for _, member := range members {
		sample = append(sample, SampleEntry{Member: member, Violations: service.violationsOf(member)})
	}
	service.logger.Debug(logMessageSampleFetchedConstant, zap.Int(logFieldSampleSizeConstant, len(sample)))

	return CollectionReport{Counts: counts, Sample: sample}, nil
}

// AuditRows scans every row once, testing each required column. A row
// missing at least one column is a single issue. TotalIssues counts all
// issues; Issues keeps the first IssuePreviewLimit.
func (service *Service) AuditRows(executionContext context.Context, source RowSource, options RowOptions) (RowReport, error) {
	if source == nil {
		return RowReport{}, errors.New(missingRowSourceMessageConstant)
	}

	sheet, sheetError := source.Sheet(executionContext)
	if sheetError != nil {
		return RowReport{}, fmt.Errorf(sheetErrorTemplateConstant, sheetError)
	}

	previewLimit := options.IssuePreviewLimit
	if previewLimit <= 0 {
		previewLimit = DefaultIssuePreviewLimit
	}
	requiredColumns := normalizeColumns(options.RequiredColumns)

	report := RowReport{SheetName: sheet.Name, RowsScanned: len(sheet.Rows), Issues: []RowIssue{}}
	for _, row := range sheet.Rows {
		missingColumns := make([]string, 0)
		for _, column := range requiredColumns {
			if MissingCell(row, column) {
				missingColumns = append(missingColumns, column)
			}
		}
		if len(missingColumns) == 0 {
			continue
		}

		report.TotalIssues++
		if len(report.Issues) < previewLimit {
			report.Issues = append(report.Issues, RowIssue{
				Line:           row.Line(),
				Data:           row.Cells(sheet.Headers),
				MissingColumns: missingColumns,
			})
		}
	}

	service.logger.Debug(logMessageRowsScannedConstant,
		zap.Int(logFieldRowsConstant, report.RowsScanned),
		zap.Int(logFieldIssuesConstant, report.TotalIssues),
	)

	return report, nil
}

// InspectHeaders reports the sheet's header row and the required columns it lacks.
func (service *Service) InspectHeaders(executionContext context.Context, source RowSource, requiredColumns []string) (HeaderInspection, error) {
	if source == nil {
		return HeaderInspection{}, errors.New(missingRowSourceMessageConstant)
	}

	sheet, sheetError := source.Sheet(executionContext)
	if sheetError != nil {
		return HeaderInspection{}, fmt.Errorf(sheetErrorTemplateConstant, sheetError)
	}

	inspection := HeaderInspection{
		SheetName:      sheet.Name,
		Headers:        append([]string{}, sheet.Headers...),
		MissingColumns: []string{},
	}
	for _, column := range normalizeColumns(requiredColumns) {
		if !sheet.HasColumn(column) {
			inspection.MissingColumns = append(inspection.MissingColumns, column)
		}
	}

	return inspection, nil
}

// ImportDocuments upserts documents through writer and returns the number written.
func (service *Service) ImportDocuments(executionContext context.Context, documents []records.Document, writer DocumentWriter) (int, error) {
	if writer == nil {
		return 0, errors.New(missingDocumentWriterMessageConstant)
	}

	for _, document := range documents {
		if _, exists := document.Lookup(records.IdentifierFieldName); !exists {
			return 0, fmt.Errorf(importErrorTemplateConstant, ErrMissingIdentifier)
		}
	}

	written, insertError := writer.Insert(executionContext, documents)
	if insertError != nil {
		return 0, fmt.Errorf(importErrorTemplateConstant, insertError)
	}
	service.logger.Debug(logMessageDocumentsImportedConstant, zap.Int(logFieldDocumentsConstant, written))

	return written, nil
}

func (service *Service) violationsOf(member records.MemberRecord) []ViolationCategory {
	violations := make([]ViolationCategory, 0)
	for _, validator := range service.validators {
		if validator.Violates(member) {
			violations = append(violations, validator.Category)
		}
	}
	return violations
}

func normalizeColumns(columns []string) []string {
	normalized := make([]string, 0, len(columns))
	for _, column := range columns {
		trimmed := spreadsheet.NormalizeHeader(column)
		if len(trimmed) == 0 {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
