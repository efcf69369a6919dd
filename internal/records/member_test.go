package records_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/memberaudit/internal/records"
)

type hexIdentifier string

func (identifier hexIdentifier) Hex() string {
	return string(identifier)
}

func TestMemberFromDocumentPreservesFieldStates(testInstance *testing.T) {
	document := records.Document{
		records.IdentifierFieldName:  hexIdentifier("64b7f0c2a1e4"),
		records.NameFieldName:        "Asha",
		records.PackageIDFieldName:   nil,
		records.PackageNameFieldName: "",
	}

	member := records.MemberFromDocument(document)

	require.Equal(testInstance, "64b7f0c2a1e4", member.ID)
	require.Equal(testInstance, records.FieldStatePresent, member.Name.State())
	require.True(testInstance, member.PackageID.IsNull())
	require.True(testInstance, member.PackageName.IsEmptyString())

	delete(document, records.PackageNameFieldName)
	require.True(testInstance, records.MemberFromDocument(document).PackageName.IsAbsent())
}

func TestFieldRendering(testInstance *testing.T) {
	require.Equal(testInstance, "<absent>", records.AbsentField().String())
	require.Equal(testInstance, "<null>", records.NullField().String())
	require.Equal(testInstance, `"Gold"`, records.PresentField("Gold").String())
	require.Equal(testInstance, `""`, records.PresentField("").String())

	value, present := records.PresentField(" ").Value()
	require.True(testInstance, present)
	require.Equal(testInstance, " ", value)
	require.False(testInstance, records.PresentField(" ").IsEmptyString())
}

func TestErrorsUnwrap(testInstance *testing.T) {
	rootCause := errors.New("dial tcp: connection refused")

	var connectionError error = &records.ConnectionError{Source: "mongodb", Err: rootCause}
	require.ErrorIs(testInstance, connectionError, rootCause)
	require.Equal(testInstance, "unable to reach mongodb: dial tcp: connection refused", connectionError.Error())

	var parseError error = &records.ParseError{Path: "members.xlsx", Err: rootCause}
	require.ErrorIs(testInstance, parseError, rootCause)
	require.Contains(testInstance, parseError.Error(), "members.xlsx")
}
