package audit_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/memberaudit/internal/audit"
	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/records/memorystore"
	"github.com/temirov/memberaudit/internal/spreadsheet"
)

const (
	enquirySheetFileNameConstant = "enquiries.csv"
	enquirySheetNameConstant     = "enquiries"
	enquirySheetContentConstant  = "Name,ID,Mobile Number\nAsha,1,9990001111\nRavi,2,9990002222\nMina,3,\nOmar,4,9990004444\n"
	mobileNumberColumnConstant   = "Mobile Number"
	unreachableSourceConstant    = "mongodb collection gym.members"
)

var requiredEnquiryColumns = []string{"Name", "ID", mobileNumberColumnConstant}

type stubCollectionSource struct {
	countError   error
	fetchError   error
	fetchResults []records.MemberRecord
	countCalls   []records.Condition
	fetchLimits  []int
}

func (source *stubCollectionSource) Count(executionContext context.Context, condition records.Condition) (int64, error) {
	source.countCalls = append(source.countCalls, condition)
	if source.countError != nil {
		return 0, source.countError
	}
	return int64(len(source.countCalls)), nil
}

func (source *stubCollectionSource) Fetch(executionContext context.Context, limit int) ([]records.MemberRecord, error) {
	source.fetchLimits = append(source.fetchLimits, limit)
	if source.fetchError != nil {
		return nil, source.fetchError
	}
	return source.fetchResults, nil
}

func (source *stubCollectionSource) Close(executionContext context.Context) error {
	return nil
}

type stubRowSource struct {
	sheet      spreadsheet.Sheet
	sheetError error
}

func (source stubRowSource) Sheet(executionContext context.Context) (spreadsheet.Sheet, error) {
	return source.sheet, source.sheetError
}

type recordingDocumentWriter struct {
	inserted []records.Document
}

func (writer *recordingDocumentWriter) Insert(executionContext context.Context, documents []records.Document) (int, error) {
	writer.inserted = append(writer.inserted, documents...)
	return len(documents), nil
}

func (writer *recordingDocumentWriter) Close(executionContext context.Context) error {
	return nil
}

func threeMemberStore() *memorystore.Store {
	return memorystore.New([]records.Document{
		{records.IdentifierFieldName: "a", records.NameFieldName: "Asha", records.PackageIDFieldName: "p1", records.PackageNameFieldName: ""},
		{records.IdentifierFieldName: "b", records.NameFieldName: "Ravi", records.PackageIDFieldName: nil, records.PackageNameFieldName: "Gold"},
		{records.IdentifierFieldName: "c", records.NameFieldName: "Mina", records.PackageIDFieldName: "p2", records.PackageNameFieldName: "Silver"},
	})
}

func writeEnquirySheet(testInstance *testing.T, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(testInstance.TempDir(), enquirySheetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func TestAuditCollectionThreeMemberScenario(testInstance *testing.T) {
	service := audit.NewService(zap.NewNop())

	report, auditError := service.AuditCollection(context.Background(), threeMemberStore(), audit.CollectionOptions{SampleLimit: audit.DefaultSampleLimit})
	require.NoError(testInstance, auditError)

	require.Equal(testInstance, []audit.CategoryCount{
		{Category: audit.ViolationMissingPackageName, Count: 1},
		{Category: audit.ViolationMissingPackageID, Count: 1},
	}, report.Counts)
	require.Len(testInstance, report.Sample, 3)
	require.Equal(testInstance, []audit.ViolationCategory{audit.ViolationMissingPackageName}, report.Sample[0].Violations)
	require.Equal(testInstance, []audit.ViolationCategory{audit.ViolationMissingPackageID}, report.Sample[1].Violations)
	require.Empty(testInstance, report.Sample[2].Violations)
}

func TestAuditCollectionSampleBounds(testInstance *testing.T) {
	testCases := []struct {
		name           string
		documentCount  int
		sampleLimit    int
		expectedSample int
	}{
		{name: "empty_collection", documentCount: 0, sampleLimit: 10, expectedSample: 0},
		{name: "below_limit", documentCount: 4, sampleLimit: 10, expectedSample: 4},
		{name: "above_limit", documentCount: 25, sampleLimit: 10, expectedSample: 10},
		{name: "default_limit", documentCount: 25, sampleLimit: 0, expectedSample: audit.DefaultSampleLimit},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			documents := make([]records.Document, 0, testCase.documentCount)
			for documentIndex := 0; documentIndex < testCase.documentCount; documentIndex++ {
				documents = append(documents, records.Document{
					records.IdentifierFieldName:  fmt.Sprintf("m%02d", documentIndex),
					records.PackageNameFieldName: "Gold",
					records.PackageIDFieldName:   "p1",
				})
			}

			report, auditError := audit.NewService(nil).AuditCollection(context.Background(), memorystore.New(documents), audit.CollectionOptions{SampleLimit: testCase.sampleLimit})
			require.NoError(subTest, auditError)
			require.Len(subTest, report.Sample, testCase.expectedSample)
			for _, categoryCount := range report.Counts {
				require.Zero(subTest, categoryCount.Count)
			}
		})
	}
}

func TestAuditCollectionQueriesSequentiallyThenSamples(testInstance *testing.T) {
	source := &stubCollectionSource{fetchResults: make([]records.MemberRecord, 12)}

	report, auditError := audit.NewService(zap.NewNop()).AuditCollection(context.Background(), source, audit.CollectionOptions{SampleLimit: 3})
	require.NoError(testInstance, auditError)

	require.Len(testInstance, source.countCalls, 2)
	require.Equal(testInstance, records.PackageNameFieldName, source.countCalls[0].Field)
	require.Equal(testInstance, records.PackageIDFieldName, source.countCalls[1].Field)
	require.Equal(testInstance, []int{3}, source.fetchLimits)
	require.Len(testInstance, report.Sample, 3)
}

func TestAuditCollectionPropagatesSourceErrors(testInstance *testing.T) {
	connectionError := &records.ConnectionError{Source: unreachableSourceConstant, Err: errors.New("server selection timeout")}

	testCases := []struct {
		name   string
		source *stubCollectionSource
	}{
		{name: "count_failure", source: &stubCollectionSource{countError: connectionError}},
		{name: "fetch_failure", source: &stubCollectionSource{fetchError: connectionError}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			report, auditError := audit.NewService(zap.NewNop()).AuditCollection(context.Background(), testCase.source, audit.CollectionOptions{})
			require.Error(subTest, auditError)
			require.Empty(subTest, report.Counts)

			var unwrapped *records.ConnectionError
			require.True(subTest, errors.As(auditError, &unwrapped))
			require.Equal(subTest, unreachableSourceConstant, unwrapped.Source)
		})
	}
}

func TestAuditCollectionIsIdempotent(testInstance *testing.T) {
	service := audit.NewService(zap.NewNop())
	store := threeMemberStore()

	firstReport, firstError := service.AuditCollection(context.Background(), store, audit.CollectionOptions{})
	require.NoError(testInstance, firstError)
	secondReport, secondError := service.AuditCollection(context.Background(), store, audit.CollectionOptions{})
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, audit.CollectionLines(firstReport), audit.CollectionLines(secondReport))
}

func TestMemberValidatorsAgreeWithConditions(testInstance *testing.T) {
	documents := []records.Document{
		{records.IdentifierFieldName: "absent"},
		{records.IdentifierFieldName: "null", records.PackageNameFieldName: nil, records.PackageIDFieldName: nil},
		{records.IdentifierFieldName: "empty", records.PackageNameFieldName: "", records.PackageIDFieldName: ""},
		{records.IdentifierFieldName: "blank", records.PackageNameFieldName: "   ", records.PackageIDFieldName: "   "},
		{records.IdentifierFieldName: "filled", records.PackageNameFieldName: "Gold", records.PackageIDFieldName: "p1"},
		{records.IdentifierFieldName: "numeric", records.PackageNameFieldName: 0, records.PackageIDFieldName: 7},
	}

	for _, validator := range audit.DefaultMemberValidators() {
		for _, document := range documents {
			member := records.MemberFromDocument(document)
			require.Equal(testInstance, validator.Condition.Matches(document), validator.Violates(member),
				"category %s document %s", validator.Category, member.ID)
		}
	}
}

func TestMemberValidatorsPolicy(testInstance *testing.T) {
	testCases := []struct {
		name                string
		member              records.MemberRecord
		expectedMissingName bool
		expectedMissingID   bool
	}{
		{name: "absent_fields", member: records.MemberRecord{PackageName: records.AbsentField(), PackageID: records.AbsentField()}, expectedMissingName: true, expectedMissingID: true},
		{name: "null_fields", member: records.MemberRecord{PackageName: records.NullField(), PackageID: records.NullField()}, expectedMissingName: true, expectedMissingID: true},
		{name: "empty_strings", member: records.MemberRecord{PackageName: records.PresentField(""), PackageID: records.PresentField("")}, expectedMissingName: true, expectedMissingID: false},
		{name: "whitespace_only", member: records.MemberRecord{PackageName: records.PresentField("  "), PackageID: records.PresentField("  ")}, expectedMissingName: false, expectedMissingID: false},
		{name: "populated", member: records.MemberRecord{PackageName: records.PresentField("Gold"), PackageID: records.PresentField("p1")}, expectedMissingName: false, expectedMissingID: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedMissingName, audit.MissingPackageName(testCase.member))
			require.Equal(subTest, testCase.expectedMissingID, audit.MissingPackageID(testCase.member))
		})
	}
}

func TestAuditRowsReportsMissingMobileNumber(testInstance *testing.T) {
	reader := spreadsheet.NewReader(writeEnquirySheet(testInstance, enquirySheetContentConstant), "")

	report, auditError := audit.NewService(zap.NewNop()).AuditRows(context.Background(), reader, audit.RowOptions{RequiredColumns: requiredEnquiryColumns})
	require.NoError(testInstance, auditError)

	require.Equal(testInstance, enquirySheetNameConstant, report.SheetName)
	require.Equal(testInstance, 4, report.RowsScanned)
	require.Equal(testInstance, 1, report.TotalIssues)
	require.Equal(testInstance, []audit.RowIssue{
		{
			Line: 4,
			Data: []spreadsheet.Cell{
				{Column: "Name", Value: "Mina"},
				{Column: "ID", Value: "3"},
			},
			MissingColumns: []string{mobileNumberColumnConstant},
		},
	}, report.Issues)
}

func TestAuditRowsCapsPreviewButCountsAll(testInstance *testing.T) {
	testCases := []struct {
		name            string
		failingRows     int
		previewLimit    int
		expectedPreview int
	}{
		{name: "no_issues", failingRows: 0, previewLimit: 5, expectedPreview: 0},
		{name: "below_cap", failingRows: 3, previewLimit: 5, expectedPreview: 3},
		{name: "above_cap", failingRows: 12, previewLimit: 5, expectedPreview: 5},
		{name: "default_cap", failingRows: 12, previewLimit: 0, expectedPreview: audit.DefaultIssuePreviewLimit},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			sheet := spreadsheet.Sheet{Name: enquirySheetNameConstant, Headers: requiredEnquiryColumns}
			for rowIndex := 0; rowIndex < 20; rowIndex++ {
				values := map[string]string{"Name": "member", "ID": fmt.Sprint(rowIndex), mobileNumberColumnConstant: "999"}
				if rowIndex < testCase.failingRows {
					delete(values, mobileNumberColumnConstant)
				}
				sheet.Rows = append(sheet.Rows, spreadsheet.Row{Index: rowIndex, Values: values})
			}

			report, auditError := audit.NewService(zap.NewNop()).AuditRows(context.Background(), stubRowSource{sheet: sheet}, audit.RowOptions{
				RequiredColumns:   requiredEnquiryColumns,
				IssuePreviewLimit: testCase.previewLimit,
			})
			require.NoError(subTest, auditError)
			require.Equal(subTest, 20, report.RowsScanned)
			require.Equal(subTest, testCase.failingRows, report.TotalIssues)
			require.Len(subTest, report.Issues, testCase.expectedPreview)
			if testCase.expectedPreview > 0 {
				require.Equal(subTest, 2, report.Issues[0].Line)
			}
		})
	}
}

func TestAuditRowsCountsRowOnceForSeveralMissingColumns(testInstance *testing.T) {
	sheet := spreadsheet.Sheet{
		Name:    enquirySheetNameConstant,
		Headers: requiredEnquiryColumns,
		Rows:    []spreadsheet.Row{{Index: 0, Values: map[string]string{"Name": ""}}},
	}

	report, auditError := audit.NewService(zap.NewNop()).AuditRows(context.Background(), stubRowSource{sheet: sheet}, audit.RowOptions{RequiredColumns: requiredEnquiryColumns})
	require.NoError(testInstance, auditError)
	require.Equal(testInstance, 1, report.TotalIssues)
	require.Equal(testInstance, requiredEnquiryColumns, report.Issues[0].MissingColumns)
	require.Empty(testInstance, report.Issues[0].Data)
}

func TestAuditRowsPropagatesSheetErrors(testInstance *testing.T) {
	reader := spreadsheet.NewReader(filepath.Join(testInstance.TempDir(), "missing.xlsx"), "")

	_, auditError := audit.NewService(zap.NewNop()).AuditRows(context.Background(), reader, audit.RowOptions{RequiredColumns: requiredEnquiryColumns})
	require.Error(testInstance, auditError)

	var connectionError *records.ConnectionError
	require.True(testInstance, errors.As(auditError, &connectionError))
}

func TestInspectHeadersReportsMissingColumns(testInstance *testing.T) {
	reader := spreadsheet.NewReader(writeEnquirySheet(testInstance, " Name ,Mobile Number,Notes\nAsha,999,\n"), "")

	inspection, inspectionError := audit.NewService(zap.NewNop()).InspectHeaders(context.Background(), reader, requiredEnquiryColumns)
	require.NoError(testInstance, inspectionError)
	require.Equal(testInstance, enquirySheetNameConstant, inspection.SheetName)
	require.Equal(testInstance, []string{"Name", mobileNumberColumnConstant, "Notes"}, inspection.Headers)
	require.Equal(testInstance, []string{"ID"}, inspection.MissingColumns)
}

func TestImportDocumentsRequiresIdentifiers(testInstance *testing.T) {
	service := audit.NewService(zap.NewNop())
	writer := &recordingDocumentWriter{}

	written, importError := service.ImportDocuments(context.Background(), []records.Document{
		{records.IdentifierFieldName: "a", records.PackageNameFieldName: "Gold"},
		{records.IdentifierFieldName: "b"},
	}, writer)
	require.NoError(testInstance, importError)
	require.Equal(testInstance, 2, written)
	require.Len(testInstance, writer.inserted, 2)

	_, missingError := service.ImportDocuments(context.Background(), []records.Document{{records.NameFieldName: "Omar"}}, &recordingDocumentWriter{})
	require.ErrorIs(testInstance, missingError, audit.ErrMissingIdentifier)
}
