package results

import "strings"

// FatalError reports that the solver run ended with FATAL messages, or that
// the result file carries nothing to read.
type FatalError struct {
	Path     string
	Messages []string
}

// Error implements the error interface for FatalError.
func (e *FatalError) Error() string {
	if len(e.Messages) == 0 {
		return "fatal error in " + e.Path
	}
	return strings.Join(e.Messages, "\n")
}
