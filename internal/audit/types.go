package audit

import (
	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/spreadsheet"
)

// ViolationCategory names a class of data-quality defect.
type ViolationCategory string

// Violation categories checked by the auditor.
const (
	ViolationMissingPackageName   ViolationCategory = ViolationCategory("missing-package-name")
	ViolationMissingPackageID     ViolationCategory = ViolationCategory("missing-package-id")
	ViolationMissingRequiredField ViolationCategory = ViolationCategory("missing-required-field")
)

// SourceKind selects the record source an audit run reads from.
type SourceKind string

// Supported record sources.
const (
	SourceKindMongoDB     SourceKind = SourceKind("mongodb")
	SourceKindSQLite      SourceKind = SourceKind("sqlite")
	SourceKindDocuments   SourceKind = SourceKind("documents")
	SourceKindSpreadsheet SourceKind = SourceKind("spreadsheet")
)

// Default caps applied when configuration leaves them unset.
const (
	DefaultSampleLimit       = 10
	DefaultIssuePreviewLimit = 5
)

// CollectionOptions parameterizes the count-query path.
type CollectionOptions struct {
	SampleLimit int
}

// RowOptions parameterizes the full-scan path.
type RowOptions struct {
	RequiredColumns   []string
	IssuePreviewLimit int
}

// CategoryCount is the number of records violating one category.
type CategoryCount struct {
	Category ViolationCategory
	Count    int64
}

// SampleEntry is one spot-check record and the categories it violates.
type SampleEntry struct {
	Member     records.MemberRecord
	Violations []ViolationCategory
}

// CollectionReport is the count-query path outcome.
type CollectionReport struct {
	Counts []CategoryCount
	Sample []SampleEntry
}

// RowIssue is a row failing at least one required-column check.
type RowIssue struct {
	Line           int
	Data           []spreadsheet.Cell
	MissingColumns []string
}

// RowReport is the full-scan path outcome. TotalIssues counts every failing
// row; Issues holds at most the configured preview.
type RowReport struct {
	SheetName   string
	RowsScanned int
	TotalIssues int
	Issues      []RowIssue
}

// HeaderInspection describes a sheet's header row against the required columns.
type HeaderInspection struct {
	SheetName      string
	Headers        []string
	MissingColumns []string
}
