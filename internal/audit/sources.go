package audit

import (
	"context"
	"fmt"

	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/records/memorystore"
	"github.com/temirov/memberaudit/internal/records/mongostore"
	"github.com/temirov/memberaudit/internal/records/sqlitestore"
	"github.com/temirov/memberaudit/internal/spreadsheet"
)

const (
	unsupportedCollectionSourceTemplateConstant = "source %q does not support the member audit"
	unknownSourceTemplateConstant               = "unknown audit source %q"
)

// DefaultSourceOpener opens record sources backed by MongoDB, SQLite,
// document files, and spreadsheets.
type DefaultSourceOpener struct{}

// OpenCollection connects to the configured member collection.
func (DefaultSourceOpener) OpenCollection(executionContext context.Context, configuration CommandConfiguration) (CollectionSource, error) {
	switch configuration.Source {
	case SourceKindMongoDB:
		store, connectError := mongostore.Connect(executionContext, mongostore.Options{
			URI:            configuration.MongoDB.URI,
			Database:       configuration.MongoDB.Database,
			Collection:     configuration.MongoDB.Collection,
			ConnectTimeout: configuration.MongoDB.ConnectTimeout,
		})
		if connectError != nil {
			return nil, connectError
		}
		return store, nil
	case SourceKindSQLite:
		store, openError := sqlitestore.Open(executionContext, sqlitestore.Options{
			Path:       configuration.SQLite.Path,
			Collection: configuration.SQLite.Collection,
		})
		if openError != nil {
			return nil, openError
		}
		return store, nil
	case SourceKindDocuments:
		store, loadError := memorystore.LoadFile(configuration.Documents.Path)
		if loadError != nil {
			return nil, loadError
		}
		return store, nil
	case SourceKindSpreadsheet:
		return nil, fmt.Errorf(unsupportedCollectionSourceTemplateConstant, configuration.Source)
	default:
		return nil, fmt.Errorf(unknownSourceTemplateConstant, configuration.Source)
	}
}

// OpenRows returns a reader over the configured spreadsheet.
func (DefaultSourceOpener) OpenRows(executionContext context.Context, configuration CommandConfiguration) (RowSource, error) {
	return spreadsheet.NewReader(configuration.Spreadsheet.Path, configuration.Spreadsheet.Sheet), nil
}

// OpenDocumentWriter opens the configured SQLite collection, creating the database file when needed.
func (DefaultSourceOpener) OpenDocumentWriter(executionContext context.Context, configuration CommandConfiguration) (DocumentWriter, error) {
	store, openError := sqlitestore.Open(executionContext, sqlitestore.Options{
		Path:            configuration.SQLite.Path,
		Collection:      configuration.SQLite.Collection,
		CreateIfMissing: true,
	})
	if openError != nil {
		return nil, openError
	}
	return store, nil
}

// LoadDocuments reads a YAML or JSON document file.
func (DefaultSourceOpener) LoadDocuments(executionContext context.Context, filePath string) ([]records.Document, error) {
	store, loadError := memorystore.LoadFile(filePath)
	if loadError != nil {
		return nil, loadError
	}
	return store.Documents(), nil
}
