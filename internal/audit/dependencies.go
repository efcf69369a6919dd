package audit

import (
	"context"

	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/spreadsheet"
)

// CollectionSource is a record source supporting the count-query path.
type CollectionSource interface {
	Count(executionContext context.Context, condition records.Condition) (int64, error)
	Fetch(executionContext context.Context, limit int) ([]records.MemberRecord, error)
	Close(executionContext context.Context) error
}

// RowSource is a record source supporting the full-scan path.
type RowSource interface {
	Sheet(executionContext context.Context) (spreadsheet.Sheet, error)
}

// DocumentWriter persists documents into a collection.
type DocumentWriter interface {
	Insert(executionContext context.Context, documents []records.Document) (int, error)
	Close(executionContext context.Context) error
}

// SourceOpener resolves configured record sources. Every returned source is
// owned by the caller, which must close it.
type SourceOpener interface {
	OpenCollection(executionContext context.Context, configuration CommandConfiguration) (CollectionSource, error)
	OpenRows(executionContext context.Context, configuration CommandConfiguration) (RowSource, error)
	OpenDocumentWriter(executionContext context.Context, configuration CommandConfiguration) (DocumentWriter, error)
	LoadDocuments(executionContext context.Context, filePath string) ([]records.Document, error)
}
