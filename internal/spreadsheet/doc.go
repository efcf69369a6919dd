// Package spreadsheet reads tabular enquiry and member exports (CSV or XLSX)
// into a header row plus data rows keyed by normalized column names.
//
// Cells that a row does not carry stay absent from Row.Values, mirroring how
// spreadsheet-to-object conversion omits them. Cell values are never trimmed.
package spreadsheet
