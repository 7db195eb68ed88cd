package scanner

import "fmt"

// ToolInvocationError reports that an external diagnostic or termination
// utility could not be run at all.
type ToolInvocationError struct {
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// ParseError reports PID text that is not an integer. Only the kill path
// returns it; scans drop such lines.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse PID %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
