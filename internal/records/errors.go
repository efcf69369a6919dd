package records

import "fmt"

const (
	connectionErrorTemplateConstant = "unable to reach %s: %v"
	parseErrorTemplateConstant      = "unable to parse %s: %v"
)

// ConnectionError reports a record source that could not be opened or queried.
type ConnectionError struct {
	Source string
	Err    error
}

// Error describes the unreachable source.
func (connectionError *ConnectionError) Error() string {
	return fmt.Sprintf(connectionErrorTemplateConstant, connectionError.Source, connectionError.Err)
}

// Unwrap exposes the underlying failure.
func (connectionError *ConnectionError) Unwrap() error {
	return connectionError.Err
}

// ParseError reports a file-backed source that is malformed or lacks the expected sheet.
type ParseError struct {
	Path string
	Err  error
}

// Error describes the malformed file.
func (parseError *ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Path, parseError.Err)
}

// Unwrap exposes the underlying failure.
func (parseError *ParseError) Unwrap() error {
	return parseError.Err
}
