package memorystore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/records/memorystore"
)

const (
	testDocumentFileNameConstant = "members.json"
	testDocumentFileContent      = `[
  {"_id": "m1", "name": "Asha", "packageId": "p1", "packageName": ""},
  {"_id": "m2", "name": "Ravi", "packageId": null, "packageName": "Gold"},
  {"_id": "m3", "name": "Mina", "packageId": "p2", "packageName": "Silver"},
  {"_id": "m4", "name": "Omar"}
]`
)

var missingPackageNameCondition = records.Condition{
	Field: records.PackageNameFieldName,
	Terms: []records.Term{records.TermAbsent, records.TermNull, records.TermEmptyString},
}

var missingPackageIDCondition = records.Condition{
	Field: records.PackageIDFieldName,
	Terms: []records.Term{records.TermAbsent, records.TermNull},
}

func writeDocumentFile(testInstance *testing.T, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(testInstance.TempDir(), testDocumentFileNameConstant)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func TestLoadFileCountsDistinguishNullAndAbsent(testInstance *testing.T) {
	store, loadError := memorystore.LoadFile(writeDocumentFile(testInstance, testDocumentFileContent))
	require.NoError(testInstance, loadError)

	nameCount, nameError := store.Count(context.Background(), missingPackageNameCondition)
	require.NoError(testInstance, nameError)
	require.Equal(testInstance, int64(2), nameCount)

	identifierCount, identifierError := store.Count(context.Background(), missingPackageIDCondition)
	require.NoError(testInstance, identifierError)
	require.Equal(testInstance, int64(2), identifierCount)

	members, fetchError := store.Fetch(context.Background(), 0)
	require.NoError(testInstance, fetchError)
	require.Len(testInstance, members, 4)
	require.True(testInstance, members[1].PackageID.IsNull())
	require.True(testInstance, members[3].PackageID.IsAbsent())
}

func TestFetchHonorsLimit(testInstance *testing.T) {
	documents := make([]records.Document, 0, 25)
	for index := 0; index < 25; index++ {
		documents = append(documents, records.Document{records.IdentifierFieldName: index})
	}
	store := memorystore.New(documents)

	members, fetchError := store.Fetch(context.Background(), 10)
	require.NoError(testInstance, fetchError)
	require.Len(testInstance, members, 10)
	require.Equal(testInstance, "0", members[0].ID)

	emptyMembers, emptyError := memorystore.New(nil).Fetch(context.Background(), 10)
	require.NoError(testInstance, emptyError)
	require.Empty(testInstance, emptyMembers)
}

func TestLoadFileErrors(testInstance *testing.T) {
	_, missingError := memorystore.LoadFile(filepath.Join(testInstance.TempDir(), "missing.json"))
	var connectionError *records.ConnectionError
	require.True(testInstance, errors.As(missingError, &connectionError))

	_, malformedError := memorystore.LoadFile(writeDocumentFile(testInstance, `{"not": "a list"}`))
	var parseError *records.ParseError
	require.True(testInstance, errors.As(malformedError, &parseError))
}
