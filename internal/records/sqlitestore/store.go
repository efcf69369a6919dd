// Package sqlitestore keeps member documents as JSON bodies in a SQLite
// database and counts violations with SQL over the JSON1 functions.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/temirov/memberaudit/internal/records"
)

const (
	driverNameConstant                  = "sqlite3"
	readWriteDataSourceTemplateConstant = "file:%s?mode=rw"
	createDataSourceTemplateConstant    = "file:%s?mode=rwc"
	sourceDescriptionTemplateConstant   = "sqlite collection %s in %s"
	jsonPathTemplateConstant            = `$."%s"`
	pathRequiredMessageConstant         = "sqlite path must be provided"
	collectionRequiredMessageConstant   = "sqlite collection must be provided"
	identifierRequiredTemplateConstant  = "document %d has no %s"
	unsupportedTermTemplateConstant     = "unsupported condition term: %s"
	unlimitedRowsConstant               = -1
)

// Options configures the database file and the collection inside it.
type Options struct {
	Path            string
	Collection      string
	CreateIfMissing bool
}

// Store is a record source over one collection of a SQLite document table.
type Store struct {
	database    *sql.DB
	collection  string
	description string
}

// Open connects to the database file, verifies it, and applies pending migrations.
func Open(executionContext context.Context, storeOptions Options) (*Store, error) {
	description := fmt.Sprintf(sourceDescriptionTemplateConstant, storeOptions.Collection, storeOptions.Path)
	switch {
	case len(strings.TrimSpace(storeOptions.Path)) == 0:
		return nil, &records.ConnectionError{Source: description, Err: errors.New(pathRequiredMessageConstant)}
	case len(strings.TrimSpace(storeOptions.Collection)) == 0:
		return nil, &records.ConnectionError{Source: description, Err: errors.New(collectionRequiredMessageConstant)}
	}

	dataSourceTemplate := readWriteDataSourceTemplateConstant
	if storeOptions.CreateIfMissing {
		dataSourceTemplate = createDataSourceTemplateConstant
	}

	database, openError := sql.Open(driverNameConstant, fmt.Sprintf(dataSourceTemplate, storeOptions.Path))
	if openError != nil {
		return nil, &records.ConnectionError{Source: description, Err: fmt.Errorf("failed to open database: %w", openError)}
	}

	if pingError := database.PingContext(executionContext); pingError != nil {
		database.Close()
		return nil, &records.ConnectionError{Source: description, Err: fmt.Errorf("failed to ping database: %w", pingError)}
	}

	if migrateError := runMigrations(executionContext, database); migrateError != nil {
		database.Close()
		return nil, &records.ConnectionError{Source: description, Err: migrateError}
	}

	return &Store{database: database, collection: storeOptions.Collection, description: description}, nil
}

// Count returns the number of documents in the collection matching condition.
func (store *Store) Count(executionContext context.Context, condition records.Condition) (int64, error) {
	clause, arguments, clauseError := conditionClause(condition)
	if clauseError != nil {
		return 0, clauseError
	}

	query := "SELECT COUNT(*) FROM documents WHERE collection = ? AND " + clause
	queryArguments := append([]any{store.collection}, arguments...)

	var count int64
	if scanError := store.database.QueryRowContext(executionContext, query, queryArguments...).Scan(&count); scanError != nil {
		return 0, &records.ConnectionError{Source: store.description, Err: fmt.Errorf("failed to count %s: %w", condition.Field, scanError)}
	}
	return count, nil
}

// Fetch returns the first limit members in identifier order; limit <= 0
// returns all. Numeric identifiers sort numerically ahead of text ones, as
// they do in MongoDB.
func (store *Store) Fetch(executionContext context.Context, limit int) ([]records.MemberRecord, error) {
	if limit <= 0 {
		limit = unlimitedRowsConstant
	}

	query := `
		SELECT body
		FROM documents
		WHERE collection = ?
		ORDER BY
			CASE json_type(body, ?) WHEN 'integer' THEN 0 WHEN 'real' THEN 0 ELSE 1 END,
			json_extract(body, ?),
			id
		LIMIT ?
	`
	identifierPath := fmt.Sprintf(jsonPathTemplateConstant, records.IdentifierFieldName)
	rows, queryError := store.database.QueryContext(executionContext, query, store.collection, identifierPath, identifierPath, limit)
	if queryError != nil {
		return nil, &records.ConnectionError{Source: store.description, Err: fmt.Errorf("failed to query documents: %w", queryError)}
	}
	defer rows.Close()

	var members []records.MemberRecord
	for rows.Next() {
		var body string
		if scanError := rows.Scan(&body); scanError != nil {
			return nil, fmt.Errorf("failed to scan document: %w", scanError)
		}
		document, decodeError := decodeDocument(body)
		if decodeError != nil {
			return nil, fmt.Errorf("failed to decode document: %w", decodeError)
		}
		members = append(members, records.MemberFromDocument(document))
	}

	if iterationError := rows.Err(); iterationError != nil {
		return nil, &records.ConnectionError{Source: store.description, Err: fmt.Errorf("error iterating documents: %w", iterationError)}
	}

	if members == nil {
		members = []records.MemberRecord{}
	}
	return members, nil
}

// Insert upserts documents keyed by their _id and returns how many were written.
func (store *Store) Insert(executionContext context.Context, documents []records.Document) (int, error) {
	transaction, beginError := store.database.BeginTx(executionContext, nil)
	if beginError != nil {
		return 0, &records.ConnectionError{Source: store.description, Err: beginError}
	}
	defer transaction.Rollback()

	statement, prepareError := transaction.PrepareContext(executionContext, `
		INSERT INTO documents (collection, id, body)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body
	`)
	if prepareError != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", prepareError)
	}
	defer statement.Close()

	for documentIndex, document := range documents {
		identifier, identifierPresent := document.Field(records.IdentifierFieldName).Value()
		if !identifierPresent || len(identifier) == 0 {
			return 0, fmt.Errorf(identifierRequiredTemplateConstant, documentIndex, records.IdentifierFieldName)
		}
		body, encodeError := json.Marshal(document)
		if encodeError != nil {
			return 0, fmt.Errorf("failed to encode document %s: %w", identifier, encodeError)
		}
		if _, execError := statement.ExecContext(executionContext, store.collection, identifier, string(body)); execError != nil {
			return 0, fmt.Errorf("failed to insert document %s: %w", identifier, execError)
		}
	}

	if commitError := transaction.Commit(); commitError != nil {
		return 0, fmt.Errorf("failed to commit documents: %w", commitError)
	}
	return len(documents), nil
}

// Close releases the database handle.
func (store *Store) Close(executionContext context.Context) error {
	if store == nil || store.database == nil {
		return nil
	}
	return store.database.Close()
}

// conditionClause renders a condition as a parenthesised SQL expression over
// json_type, which yields NULL for a missing key and 'null' for a JSON null.
func conditionClause(condition records.Condition) (string, []any, error) {
	if validationError := condition.Validate(); validationError != nil {
		return "", nil, validationError
	}

	jsonPath := fmt.Sprintf(jsonPathTemplateConstant, condition.Field)
	fragments := make([]string, 0, len(condition.Terms))
	var arguments []any
	for _, term := range condition.Terms {
		switch term {
		case records.TermAbsent:
			fragments = append(fragments, "json_type(body, ?) IS NULL")
			arguments = append(arguments, jsonPath)
		case records.TermNull:
			fragments = append(fragments, "json_type(body, ?) = 'null'")
			arguments = append(arguments, jsonPath)
		case records.TermEmptyString:
			fragments = append(fragments, "(json_type(body, ?) = 'text' AND json_extract(body, ?) = '')")
			arguments = append(arguments, jsonPath, jsonPath)
		default:
			return "", nil, fmt.Errorf(unsupportedTermTemplateConstant, term)
		}
	}
	return "(" + strings.Join(fragments, " OR ") + ")", arguments, nil
}

// decodeDocument keeps numbers as json.Number so identifiers and references
// render with their stored digits.
func decodeDocument(body string) (records.Document, error) {
	decoder := json.NewDecoder(strings.NewReader(body))
	decoder.UseNumber()
	document := records.Document{}
	if decodeError := decoder.Decode(&document); decodeError != nil {
		return nil, decodeError
	}
	return document, nil
}
