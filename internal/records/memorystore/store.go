// Package memorystore keeps member documents in memory and counts violations
// by evaluating conditions client-side. It backs document files exported from
// the member collection and the audit tests.
package memorystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/memberaudit/internal/records"
)

const (
	documentFilePathRequiredMessageConstant = "document file path must be provided"
	documentFileReadErrorTemplateConstant   = "failed to read document file: %w"
	documentFileDecodeErrorTemplateConstant = "failed to decode documents: %w"
)

// Store is an in-memory record source.
type Store struct {
	documents []records.Document
}

// New constructs a Store over the provided documents in their given order.
func New(documents []records.Document) *Store {
	duplicated := make([]records.Document, len(documents))
	copy(duplicated, documents)
	return &Store{documents: duplicated}
}

// LoadFile reads a YAML or JSON array of documents. Keys holding null stay
// present with a nil value so that null and absent remain distinct.
func LoadFile(filePath string) (*Store, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, &records.ParseError{Path: filePath, Err: errors.New(documentFilePathRequiredMessageConstant)}
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, &records.ConnectionError{Source: trimmedPath, Err: fmt.Errorf(documentFileReadErrorTemplateConstant, readError)}
	}

	var decoded []map[string]any
	if decodeError := yaml.Unmarshal(contentBytes, &decoded); decodeError != nil {
		return nil, &records.ParseError{Path: trimmedPath, Err: fmt.Errorf(documentFileDecodeErrorTemplateConstant, decodeError)}
	}

	documents := make([]records.Document, 0, len(decoded))
	for _, rawDocument := range decoded {
		documents = append(documents, records.Document(rawDocument))
	}
	return New(documents), nil
}

// Documents returns a copy of the stored documents.
func (store *Store) Documents() []records.Document {
	duplicated := make([]records.Document, len(store.documents))
	copy(duplicated, store.documents)
	return duplicated
}

// Count returns the number of documents matching condition.
func (store *Store) Count(executionContext context.Context, condition records.Condition) (int64, error) {
	if validationError := condition.Validate(); validationError != nil {
		return 0, validationError
	}
	var matched int64
	for _, document := range store.documents {
		if condition.Matches(document) {
			matched++
		}
	}
	return matched, nil
}

// Fetch returns the first limit records in insertion order; limit <= 0 returns all.
func (store *Store) Fetch(executionContext context.Context, limit int) ([]records.MemberRecord, error) {
	selected := store.documents
	if limit > 0 && limit < len(selected) {
		selected = selected[:limit]
	}
	members := make([]records.MemberRecord, 0, len(selected))
	for _, document := range selected {
		members = append(members, records.MemberFromDocument(document))
	}
	return members, nil
}

// Close is a no-op; the store holds no external resources.
func (store *Store) Close(executionContext context.Context) error {
	return nil
}
