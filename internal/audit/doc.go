// Package audit checks member records and enquiry spreadsheets for missing
// data and reports the findings.
//
// Two paths exist. The count-query path asks a CollectionSource to count each
// violation category server-side and fetches a small unconditioned sample for
// spot checks. The full-scan path reads every row of a sheet and collects the
// rows lacking a required column, keeping the true total alongside a capped
// preview. CommandBuilder wires both into cobra commands; Service drives them
// programmatically; ReportEmitter renders the results as plain text.
package audit
