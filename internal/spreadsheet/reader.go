package spreadsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/temirov/memberaudit/internal/records"
)

const (
	csvExtensionConstant                 = ".csv"
	workbookExtensionConstant            = ".xlsx"
	macroWorkbookExtensionConstant       = ".xlsm"
	pathRequiredMessageConstant          = "spreadsheet path must be provided"
	unsupportedExtensionTemplateConstant = "unsupported spreadsheet extension %q"
	emptyFileMessageConstant             = "empty file: no header row found"
	workbookWithoutSheetsMessageConstant = "workbook contains no sheets"
	missingSheetTemplateConstant         = "sheet %q not found"
	decodeErrorTemplateConstant          = "encoding detection failed: %w"
	readRowErrorTemplateConstant         = "failed to read rows: %w"
	openWorkbookErrorTemplateConstant    = "failed to open workbook: %w"
	readSpreadsheetErrorTemplateConstant = "failed to read spreadsheet: %w"
)

// Reader loads one sheet from a CSV or XLSX file.
type Reader struct {
	Path      string
	SheetName string
}

// NewReader constructs a Reader for the file at filePath. An empty sheetName
// selects the first sheet of a workbook.
func NewReader(filePath string, sheetName string) *Reader {
	return &Reader{Path: strings.TrimSpace(filePath), SheetName: strings.TrimSpace(sheetName)}
}

// Sheet reads and normalizes the configured sheet.
func (reader *Reader) Sheet(executionContext context.Context) (Sheet, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return Sheet{}, contextError
	}
	if len(reader.Path) == 0 {
		return Sheet{}, &records.ConnectionError{Source: reader.Path, Err: errors.New(pathRequiredMessageConstant)}
	}
	if _, statError := os.Stat(reader.Path); statError != nil {
		return Sheet{}, &records.ConnectionError{Source: reader.Path, Err: statError}
	}

	switch strings.ToLower(filepath.Ext(reader.Path)) {
	case csvExtensionConstant:
		return reader.readDelimited()
	case workbookExtensionConstant, macroWorkbookExtensionConstant:
		return reader.readWorkbook()
	default:
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: fmt.Errorf(unsupportedExtensionTemplateConstant, filepath.Ext(reader.Path))}
	}
}

func (reader *Reader) readDelimited() (Sheet, error) {
	content, readError := os.ReadFile(reader.Path)
	if readError != nil {
		return Sheet{}, &records.ConnectionError{Source: reader.Path, Err: fmt.Errorf(readSpreadsheetErrorTemplateConstant, readError)}
	}

	decoded, decodeError := decodeText(content)
	if decodeError != nil {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: fmt.Errorf(decodeErrorTemplateConstant, decodeError)}
	}

	csvReader := csv.NewReader(bytes.NewReader(decoded))
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	var rawRecords [][]string
	for {
		rawRecord, recordError := csvReader.Read()
		if errors.Is(recordError, io.EOF) {
			break
		}
		if recordError != nil {
			return Sheet{}, &records.ParseError{Path: reader.Path, Err: fmt.Errorf(readRowErrorTemplateConstant, recordError)}
		}
		rawRecords = append(rawRecords, rawRecord)
	}

	if len(rawRecords) == 0 {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: errors.New(emptyFileMessageConstant)}
	}

	sheetName := strings.TrimSuffix(filepath.Base(reader.Path), filepath.Ext(reader.Path))
	return buildSheet(sheetName, rawRecords), nil
}

func (reader *Reader) readWorkbook() (Sheet, error) {
	workbook, openError := excelize.OpenFile(reader.Path)
	if openError != nil {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: fmt.Errorf(openWorkbookErrorTemplateConstant, openError)}
	}
	defer workbook.Close()

	sheetNames := workbook.GetSheetList()
	if len(sheetNames) == 0 {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: errors.New(workbookWithoutSheetsMessageConstant)}
	}

	sheetName := reader.SheetName
	if len(sheetName) == 0 {
		sheetName = sheetNames[0]
	} else if !slices.Contains(sheetNames, sheetName) {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: fmt.Errorf(missingSheetTemplateConstant, sheetName)}
	}

	rawRecords, rowsError := workbook.GetRows(sheetName)
	if rowsError != nil {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: fmt.Errorf(readRowErrorTemplateConstant, rowsError)}
	}
	if len(rawRecords) == 0 {
		return Sheet{}, &records.ParseError{Path: reader.Path, Err: errors.New(emptyFileMessageConstant)}
	}

	return buildSheet(sheetName, rawRecords), nil
}
