package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	membersCommandUseConstant              = "members"
	membersCommandShortDescriptionConstant = "Audit member records for missing package data"
	membersCommandLongDescriptionConstant  = "members counts records missing a package name or package reference server-side and prints a spot-check sample."
	rowsCommandUseConstant                 = "rows"
	rowsCommandShortDescriptionConstant    = "Audit spreadsheet rows for missing required columns"
	rowsCommandLongDescriptionConstant     = "rows scans every data row of the configured sheet and reports rows missing a required column."
	headersCommandUseConstant              = "headers"
	headersCommandShortDescriptionConstant = "Inspect the spreadsheet header row"
	headersCommandLongDescriptionConstant  = "headers prints the normalized header row of the configured sheet and the required columns it lacks."
	importCommandUseConstant               = "import <file>"
	importCommandShortDescriptionConstant  = "Import a document file into the SQLite collection"
	importCommandLongDescriptionConstant   = "import loads a YAML or JSON array of member documents and upserts them into the configured SQLite collection by _id."
	importedDocumentsTemplateConstant      = "imported %d documents into %s"
	openSourceErrorTemplateConstant        = "unable to open %s source: %w"
	auditFailedErrorTemplateConstant       = "%s audit failed: %w"
	emitFailedErrorTemplateConstant        = "%s report failed: %w"
	loadDocumentsErrorTemplateConstant     = "unable to load documents: %w"
	auditNameMembersConstant               = "members"
	auditNameRowsConstant                  = "rows"
	auditNameHeadersConstant               = "headers"
	auditNameImportConstant                = "import"
	logMessageAuditStartedConstant         = "audit started"
	logMessageAuditCompletedConstant       = "audit completed"
	logMessageSourceCloseFailedConstant    = "unable to close source"
	logFieldRunIDConstant                  = "run_id"
	logFieldAuditConstant                  = "audit"
	logFieldSourceConstant                 = "source"
	logFieldSampleConstant                 = "sample"
	logFieldTotalIssuesConstant            = "total_issues"
	logFieldMissingColumnsConstant         = "missing_columns"
	logFieldImportedConstant               = "imported"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra commands with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	SourceOpener          SourceOpener
}

// Build constructs the members, rows, headers, and import commands.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	membersCommand := &cobra.Command{
		Use:   membersCommandUseConstant,
		Short: membersCommandShortDescriptionConstant,
		Long:  membersCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runMembers,
	}

	rowsCommand := &cobra.Command{
		Use:   rowsCommandUseConstant,
		Short: rowsCommandShortDescriptionConstant,
		Long:  rowsCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runRows,
	}

	headersCommand := &cobra.Command{
		Use:   headersCommandUseConstant,
		Short: headersCommandShortDescriptionConstant,
		Long:  headersCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runHeaders,
	}

	importCommand := &cobra.Command{
		Use:   importCommandUseConstant,
		Short: importCommandShortDescriptionConstant,
		Long:  importCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.runImport,
	}

	return []*cobra.Command{membersCommand, rowsCommand, headersCommand, importCommand}, nil
}

// RunConfigured runs the audit matching the configured source: the full-scan
// audit for spreadsheets and the member audit otherwise.
func (builder *CommandBuilder) RunConfigured(command *cobra.Command, arguments []string) error {
	if builder.resolveConfiguration().Source == SourceKindSpreadsheet {
		return builder.runRows(command, arguments)
	}
	return builder.runMembers(command, arguments)
}

func (builder *CommandBuilder) runMembers(command *cobra.Command, arguments []string) error {
	executionContext := resolveContext(command)
	configuration := builder.resolveConfiguration()
	logger := builder.runLogger(auditNameMembersConstant, string(configuration.Source))
	logger.Info(logMessageAuditStartedConstant)

	source, openError := builder.resolveSourceOpener().OpenCollection(executionContext, configuration)
	if openError != nil {
		return fmt.Errorf(openSourceErrorTemplateConstant, configuration.Source, openError)
	}
	defer func() {
		if closeError := source.Close(executionContext); closeError != nil {
			logger.Warn(logMessageSourceCloseFailedConstant, zap.Error(closeError))
		}
	}()

	report, auditError := NewService(logger).AuditCollection(executionContext, source, CollectionOptions{SampleLimit: configuration.SampleLimit})
	if auditError != nil {
		return fmt.Errorf(auditFailedErrorTemplateConstant, auditNameMembersConstant, auditError)
	}

	if emitError := NewReportEmitter(command.OutOrStdout()).EmitCollection(report); emitError != nil {
		return fmt.Errorf(emitFailedErrorTemplateConstant, auditNameMembersConstant, emitError)
	}

	logger.Info(logMessageAuditCompletedConstant, zap.Int(logFieldSampleConstant, len(report.Sample)))
	return nil
}

func (builder *CommandBuilder) runRows(command *cobra.Command, arguments []string) error {
	executionContext := resolveContext(command)
	configuration := builder.resolveConfiguration()
	logger := builder.runLogger(auditNameRowsConstant, configuration.Spreadsheet.Path)
	logger.Info(logMessageAuditStartedConstant)

	source, openError := builder.resolveSourceOpener().OpenRows(executionContext, configuration)
	if openError != nil {
		return fmt.Errorf(openSourceErrorTemplateConstant, SourceKindSpreadsheet, openError)
	}

	report, auditError := NewService(logger).AuditRows(executionContext, source, RowOptions{
		RequiredColumns:   configuration.Spreadsheet.RequiredColumns,
		IssuePreviewLimit: configuration.IssuePreviewLimit,
	})
	if auditError != nil {
		return fmt.Errorf(auditFailedErrorTemplateConstant, auditNameRowsConstant, auditError)
	}

	if emitError := NewReportEmitter(command.OutOrStdout()).EmitRows(report); emitError != nil {
		return fmt.Errorf(emitFailedErrorTemplateConstant, auditNameRowsConstant, emitError)
	}

	logger.Info(logMessageAuditCompletedConstant, zap.Int(logFieldTotalIssuesConstant, report.TotalIssues))
	return nil
}

func (builder *CommandBuilder) runHeaders(command *cobra.Command, arguments []string) error {
	executionContext := resolveContext(command)
	configuration := builder.resolveConfiguration()
	logger := builder.runLogger(auditNameHeadersConstant, configuration.Spreadsheet.Path)

	source, openError := builder.resolveSourceOpener().OpenRows(executionContext, configuration)
	if openError != nil {
		return fmt.Errorf(openSourceErrorTemplateConstant, SourceKindSpreadsheet, openError)
	}

	inspection, inspectionError := NewService(logger).InspectHeaders(executionContext, source, configuration.Spreadsheet.RequiredColumns)
	if inspectionError != nil {
		return fmt.Errorf(auditFailedErrorTemplateConstant, auditNameHeadersConstant, inspectionError)
	}

	if emitError := NewReportEmitter(command.OutOrStdout()).EmitHeaders(inspection); emitError != nil {
		return fmt.Errorf(emitFailedErrorTemplateConstant, auditNameHeadersConstant, emitError)
	}

	logger.Info(logMessageAuditCompletedConstant, zap.Strings(logFieldMissingColumnsConstant, inspection.MissingColumns))
	return nil
}

func (builder *CommandBuilder) runImport(command *cobra.Command, arguments []string) error {
	executionContext := resolveContext(command)
	configuration := builder.resolveConfiguration()
	logger := builder.runLogger(auditNameImportConstant, configuration.SQLite.Path)
	opener := builder.resolveSourceOpener()

	documents, loadError := opener.LoadDocuments(executionContext, arguments[0])
	if loadError != nil {
		return fmt.Errorf(loadDocumentsErrorTemplateConstant, loadError)
	}

	writer, openError := opener.OpenDocumentWriter(executionContext, configuration)
	if openError != nil {
		return fmt.Errorf(openSourceErrorTemplateConstant, SourceKindSQLite, openError)
	}
	defer func() {
		if closeError := writer.Close(executionContext); closeError != nil {
			logger.Warn(logMessageSourceCloseFailedConstant, zap.Error(closeError))
		}
	}()

	written, importError := NewService(logger).ImportDocuments(executionContext, documents, writer)
	if importError != nil {
		return importError
	}

	if _, printError := fmt.Fprintf(command.OutOrStdout(), importedDocumentsTemplateConstant+"\n", written, configuration.SQLite.Collection); printError != nil {
		return fmt.Errorf(emitFailedErrorTemplateConstant, auditNameImportConstant, printError)
	}

	logger.Info(logMessageAuditCompletedConstant, zap.Int(logFieldImportedConstant, written))
	return nil
}

func (builder *CommandBuilder) runLogger(auditName string, source string) *zap.Logger {
	return builder.resolveLogger().With(
		zap.String(logFieldRunIDConstant, uuid.NewString()),
		zap.String(logFieldAuditConstant, auditName),
		zap.String(logFieldSourceConstant, source),
	)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveSourceOpener() SourceOpener {
	if builder.SourceOpener == nil {
		return DefaultSourceOpener{}
	}
	return builder.SourceOpener
}

func resolveContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}
