// Package mongostore reads member documents from a MongoDB collection and
// delegates violation counting to the server.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/temirov/memberaudit/internal/records"
)

const (
	sourceDescriptionTemplateConstant = "mongodb collection %s.%s"
	uriRequiredMessageConstant        = "mongodb uri must be provided"
	databaseRequiredMessageConstant   = "mongodb database must be provided"
	collectionRequiredMessageConstant = "mongodb collection must be provided"
	connectErrorTemplateConstant      = "connect failed: %w"
	pingErrorTemplateConstant         = "ping failed: %w"
	countErrorTemplateConstant        = "count on %s failed: %w"
	findErrorTemplateConstant         = "find failed: %w"
	decodeErrorTemplateConstant       = "decode failed: %w"
	existsOperatorConstant            = "$exists"
	typeOperatorConstant              = "$type"
	orOperatorConstant                = "$or"
	equalOperatorConstant             = "$eq"
	notOperatorConstant               = "$not"
	nullTypeAliasConstant             = "null"
	arrayTypeAliasConstant            = "array"
	ascendingSortConstant             = 1
	defaultConnectTimeoutConstant     = 10 * time.Second
	unsupportedTermTemplateConstant   = "unsupported condition term: %s"
)

// Options configures the connection to the member collection.
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store is a record source over a MongoDB collection.
type Store struct {
	client      *mongo.Client
	collection  *mongo.Collection
	description string
}

// Connect opens a client, verifies the primary is reachable, and binds the collection.
func Connect(executionContext context.Context, connectionOptions Options) (*Store, error) {
	description := fmt.Sprintf(sourceDescriptionTemplateConstant, connectionOptions.Database, connectionOptions.Collection)
	if validationError := connectionOptions.validate(); validationError != nil {
		return nil, &records.ConnectionError{Source: description, Err: validationError}
	}

	connectTimeout := connectionOptions.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeoutConstant
	}

	connectContext, cancel := context.WithTimeout(executionContext, connectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(connectionOptions.URI).SetConnectTimeout(connectTimeout)
	client, connectError := mongo.Connect(connectContext, clientOptions)
	if connectError != nil {
		return nil, &records.ConnectionError{Source: description, Err: fmt.Errorf(connectErrorTemplateConstant, connectError)}
	}

	if pingError := client.Ping(connectContext, readpref.Primary()); pingError != nil {
		_ = client.Disconnect(executionContext)
		return nil, &records.ConnectionError{Source: description, Err: fmt.Errorf(pingErrorTemplateConstant, pingError)}
	}

	return &Store{
		client:      client,
		collection:  client.Database(connectionOptions.Database).Collection(connectionOptions.Collection),
		description: description,
	}, nil
}

func (connectionOptions Options) validate() error {
	switch {
	case len(strings.TrimSpace(connectionOptions.URI)) == 0:
		return errors.New(uriRequiredMessageConstant)
	case len(strings.TrimSpace(connectionOptions.Database)) == 0:
		return errors.New(databaseRequiredMessageConstant)
	case len(strings.TrimSpace(connectionOptions.Collection)) == 0:
		return errors.New(collectionRequiredMessageConstant)
	}
	return nil
}

// Count runs a server-side count for the documents matching condition.
func (store *Store) Count(executionContext context.Context, condition records.Condition) (int64, error) {
	filter, filterError := FilterFor(condition)
	if filterError != nil {
		return 0, filterError
	}
	count, countError := store.collection.CountDocuments(executionContext, filter)
	if countError != nil {
		return 0, &records.ConnectionError{Source: store.description, Err: fmt.Errorf(countErrorTemplateConstant, condition.Field, countError)}
	}
	return count, nil
}

// Fetch returns the first limit members ordered by _id; limit <= 0 returns all.
func (store *Store) Fetch(executionContext context.Context, limit int) ([]records.MemberRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: records.IdentifierFieldName, Value: ascendingSortConstant}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, findError := store.collection.Find(executionContext, bson.D{}, findOptions)
	if findError != nil {
		return nil, &records.ConnectionError{Source: store.description, Err: fmt.Errorf(findErrorTemplateConstant, findError)}
	}
	defer cursor.Close(executionContext)

	var rawDocuments []bson.M
	if decodeError := cursor.All(executionContext, &rawDocuments); decodeError != nil {
		return nil, &records.ConnectionError{Source: store.description, Err: fmt.Errorf(decodeErrorTemplateConstant, decodeError)}
	}

	members := make([]records.MemberRecord, 0, len(rawDocuments))
	for _, rawDocument := range rawDocuments {
		members = append(members, records.MemberFromDocument(records.Document(rawDocument)))
	}
	return members, nil
}

// Close disconnects the client.
func (store *Store) Close(executionContext context.Context) error {
	if store == nil || store.client == nil {
		return nil
	}
	return store.client.Disconnect(executionContext)
}

// FilterFor translates a condition into a MongoDB filter. Null is matched by
// BSON type so that it stays distinct from a missing key.
func FilterFor(condition records.Condition) (bson.D, error) {
	if validationError := condition.Validate(); validationError != nil {
		return nil, validationError
	}

	clauses := make([]bson.D, 0, len(condition.Terms))
	for _, term := range condition.Terms {
		switch term {
		case records.TermAbsent:
			clauses = append(clauses, bson.D{{Key: condition.Field, Value: bson.D{{Key: existsOperatorConstant, Value: false}}}})
		case records.TermNull:
			clauses = append(clauses, bson.D{{Key: condition.Field, Value: bson.D{{Key: typeOperatorConstant, Value: nullTypeAliasConstant}}}})
		case records.TermEmptyString:
			// Equality alone would also match arrays holding "".
			clauses = append(clauses, bson.D{{Key: condition.Field, Value: bson.D{
				{Key: equalOperatorConstant, Value: ""},
				{Key: notOperatorConstant, Value: bson.D{{Key: typeOperatorConstant, Value: arrayTypeAliasConstant}}},
			}}})
		default:
			return nil, fmt.Errorf(unsupportedTermTemplateConstant, term)
		}
	}

	if len(clauses) == 1 {
		return clauses[0], nil
	}

	alternatives := make(bson.A, 0, len(clauses))
	for _, clause := range clauses {
		alternatives = append(alternatives, clause)
	}
	return bson.D{{Key: orOperatorConstant, Value: alternatives}}, nil
}
