package mongostore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/records/mongostore"
)

func TestFilterForTranslatesTerms(testInstance *testing.T) {
	testCases := []struct {
		name           string
		condition      records.Condition
		expectedFilter bson.D
	}{
		{
			name: "single_absent_term",
			condition: records.Condition{
				Field: records.PackageIDFieldName,
				Terms: []records.Term{records.TermAbsent},
			},
			expectedFilter: bson.D{{Key: "packageId", Value: bson.D{{Key: "$exists", Value: false}}}},
		},
		{
			name: "empty_string_excludes_arrays",
			condition: records.Condition{
				Field: records.PackageNameFieldName,
				Terms: []records.Term{records.TermEmptyString},
			},
			expectedFilter: bson.D{{Key: "packageName", Value: bson.D{
				{Key: "$eq", Value: ""},
				{Key: "$not", Value: bson.D{{Key: "$type", Value: "array"}}},
			}}},
		},
		{
			name: "package_name_all_terms",
			condition: records.Condition{
				Field: records.PackageNameFieldName,
				Terms: []records.Term{records.TermAbsent, records.TermNull, records.TermEmptyString},
			},
			expectedFilter: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "packageName", Value: bson.D{{Key: "$exists", Value: false}}}},
				bson.D{{Key: "packageName", Value: bson.D{{Key: "$type", Value: "null"}}}},
				bson.D{{Key: "packageName", Value: bson.D{
					{Key: "$eq", Value: ""},
					{Key: "$not", Value: bson.D{{Key: "$type", Value: "array"}}},
				}}},
			}}},
		},
		{
			name: "package_id_absent_or_null",
			condition: records.Condition{
				Field: records.PackageIDFieldName,
				Terms: []records.Term{records.TermAbsent, records.TermNull},
			},
			expectedFilter: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "packageId", Value: bson.D{{Key: "$exists", Value: false}}}},
				bson.D{{Key: "packageId", Value: bson.D{{Key: "$type", Value: "null"}}}},
			}}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			filter, filterError := mongostore.FilterFor(testCase.condition)
			require.NoError(testInstance, filterError)
			require.Equal(testInstance, testCase.expectedFilter, filter)
		})
	}
}

func TestFilterForRejectsInvalidCondition(testInstance *testing.T) {
	_, filterError := mongostore.FilterFor(records.Condition{Field: records.PackageIDFieldName})
	require.Error(testInstance, filterError)
}

func TestConnectReportsConnectionErrors(testInstance *testing.T) {
	testCases := []struct {
		name    string
		options mongostore.Options
	}{
		{
			name:    "missing_uri",
			options: mongostore.Options{Database: "gym", Collection: "members"},
		},
		{
			name:    "malformed_uri",
			options: mongostore.Options{URI: "not-a-mongodb-uri", Database: "gym", Collection: "members", ConnectTimeout: time.Second},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			store, connectError := mongostore.Connect(context.Background(), testCase.options)
			require.Nil(testInstance, store)

			var connectionError *records.ConnectionError
			require.True(testInstance, errors.As(connectError, &connectionError))
			require.Equal(testInstance, "mongodb collection gym.members", connectionError.Source)
		})
	}
}
