package audit

import (
	"strings"
	"time"
)

const (
	defaultSourceKindConstant                  = SourceKindMongoDB
	defaultMongoURIConstant                    = "mongodb://localhost:27017"
	defaultMongoDatabaseConstant               = "gym"
	defaultCollectionNameConstant              = "members"
	defaultMongoConnectTimeoutConstant         = 10 * time.Second
	defaultSQLitePathConstant                  = "members.db"
	defaultDocumentsPathConstant               = "members.json"
	defaultSpreadsheetPathConstant             = "enquiries.xlsx"
	configurationKeySeparatorConstant          = "."
	sourceConfigurationKeyConstant             = "source"
	sampleLimitConfigurationKeyConstant        = "sample_limit"
	issuePreviewConfigurationKeyConstant       = "issue_preview_limit"
	mongoURIConfigurationKeyConstant           = "mongodb.uri"
	mongoDatabaseConfigurationKeyConstant      = "mongodb.database"
	mongoCollectionConfigurationKeyConstant    = "mongodb.collection"
	mongoTimeoutConfigurationKeyConstant       = "mongodb.connect_timeout"
	sqlitePathConfigurationKeyConstant         = "sqlite.path"
	sqliteCollectionConfigurationKeyConstant   = "sqlite.collection"
	documentsPathConfigurationKeyConstant      = "documents.path"
	spreadsheetPathConfigurationKeyConstant    = "spreadsheet.path"
	spreadsheetSheetConfigurationKeyConstant   = "spreadsheet.sheet"
	spreadsheetColumnsConfigurationKeyConstant = "spreadsheet.required_columns"
)

var defaultRequiredColumns = []string{"Name", "ID", "Mobile Number"}

// CommandConfiguration captures persistent settings for the audit commands.
type CommandConfiguration struct {
	Source            SourceKind               `mapstructure:"source"`
	SampleLimit       int                      `mapstructure:"sample_limit"`
	IssuePreviewLimit int                      `mapstructure:"issue_preview_limit"`
	MongoDB           MongoDBConfiguration     `mapstructure:"mongodb"`
	SQLite            SQLiteConfiguration      `mapstructure:"sqlite"`
	Documents         DocumentsConfiguration   `mapstructure:"documents"`
	Spreadsheet       SpreadsheetConfiguration `mapstructure:"spreadsheet"`
}

// MongoDBConfiguration locates the member collection in MongoDB.
type MongoDBConfiguration struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// SQLiteConfiguration locates the member collection in a SQLite document table.
type SQLiteConfiguration struct {
	Path       string `mapstructure:"path"`
	Collection string `mapstructure:"collection"`
}

// DocumentsConfiguration locates an exported YAML or JSON document file.
type DocumentsConfiguration struct {
	Path string `mapstructure:"path"`
}

// SpreadsheetConfiguration locates the sheet scanned by the full-scan path.
type SpreadsheetConfiguration struct {
	Path            string   `mapstructure:"path"`
	Sheet           string   `mapstructure:"sheet"`
	RequiredColumns []string `mapstructure:"required_columns"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Source:            defaultSourceKindConstant,
		SampleLimit:       DefaultSampleLimit,
		IssuePreviewLimit: DefaultIssuePreviewLimit,
		MongoDB: MongoDBConfiguration{
			URI:            defaultMongoURIConstant,
			Database:       defaultMongoDatabaseConstant,
			Collection:     defaultCollectionNameConstant,
			ConnectTimeout: defaultMongoConnectTimeoutConstant,
		},
		SQLite: SQLiteConfiguration{
			Path:       defaultSQLitePathConstant,
			Collection: defaultCollectionNameConstant,
		},
		Documents: DocumentsConfiguration{
			Path: defaultDocumentsPathConstant,
		},
		Spreadsheet: SpreadsheetConfiguration{
			Path:            defaultSpreadsheetPathConstant,
			RequiredColumns: append([]string{}, defaultRequiredColumns...),
		},
	}
}

// DefaultConfigurationValues flattens the defaults into viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		sourceConfigurationKeyConstant:             string(defaults.Source),
		sampleLimitConfigurationKeyConstant:        defaults.SampleLimit,
		issuePreviewConfigurationKeyConstant:       defaults.IssuePreviewLimit,
		mongoURIConfigurationKeyConstant:           defaults.MongoDB.URI,
		mongoDatabaseConfigurationKeyConstant:      defaults.MongoDB.Database,
		mongoCollectionConfigurationKeyConstant:    defaults.MongoDB.Collection,
		mongoTimeoutConfigurationKeyConstant:       defaults.MongoDB.ConnectTimeout,
		sqlitePathConfigurationKeyConstant:         defaults.SQLite.Path,
		sqliteCollectionConfigurationKeyConstant:   defaults.SQLite.Collection,
		documentsPathConfigurationKeyConstant:      defaults.Documents.Path,
		spreadsheetPathConfigurationKeyConstant:    defaults.Spreadsheet.Path,
		spreadsheetSheetConfigurationKeyConstant:   defaults.Spreadsheet.Sheet,
		spreadsheetColumnsConfigurationKeyConstant: defaults.Spreadsheet.RequiredColumns,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixed
}

// MongoURIConfigurationKey returns the viper key of the MongoDB URI under prefix.
func MongoURIConfigurationKey(prefix string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return mongoURIConfigurationKeyConstant
	}
	return trimmedPrefix + configurationKeySeparatorConstant + mongoURIConfigurationKeyConstant
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Source = SourceKind(strings.ToLower(strings.TrimSpace(string(configuration.Source))))
	if len(sanitized.Source) == 0 {
		sanitized.Source = defaults.Source
	}
	if sanitized.SampleLimit <= 0 {
		sanitized.SampleLimit = defaults.SampleLimit
	}
	if sanitized.IssuePreviewLimit <= 0 {
		sanitized.IssuePreviewLimit = defaults.IssuePreviewLimit
	}

	sanitized.MongoDB.URI = strings.TrimSpace(configuration.MongoDB.URI)
	sanitized.MongoDB.Database = strings.TrimSpace(configuration.MongoDB.Database)
	sanitized.MongoDB.Collection = strings.TrimSpace(configuration.MongoDB.Collection)
	if sanitized.MongoDB.ConnectTimeout <= 0 {
		sanitized.MongoDB.ConnectTimeout = defaults.MongoDB.ConnectTimeout
	}
	sanitized.SQLite.Path = strings.TrimSpace(configuration.SQLite.Path)
	sanitized.SQLite.Collection = strings.TrimSpace(configuration.SQLite.Collection)
	sanitized.Documents.Path = strings.TrimSpace(configuration.Documents.Path)
	sanitized.Spreadsheet.Path = strings.TrimSpace(configuration.Spreadsheet.Path)
	sanitized.Spreadsheet.Sheet = strings.TrimSpace(configuration.Spreadsheet.Sheet)
	sanitized.Spreadsheet.RequiredColumns = sanitizeColumns(configuration.Spreadsheet.RequiredColumns)
	if len(sanitized.Spreadsheet.RequiredColumns) == 0 {
		sanitized.Spreadsheet.RequiredColumns = defaults.Spreadsheet.RequiredColumns
	}

	return sanitized
}

func sanitizeColumns(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
