package nastran

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/nastranwrap/internal/results"
)

// ConfigError reports an invalid component definition or input value. It is
// always returned before any file is written.
type ConfigError struct {
	Component string
	Field     string
	Msg       string
	Err       error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "component '%s'", e.Component)
	if e.Field != "" {
		fmt.Fprintf(&b, ", field '%s'", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *ConfigError) Unwrap() error { return e.Err }

// SolverError reports a solver run that produced no usable results. Dir is
// the working directory, which is left in place for inspection.
type SolverError struct {
	Dir string
	Err error
}

// Error implements the error interface for SolverError.
func (e *SolverError) Error() string {
	var fatal *results.FatalError
	if errors.As(e.Err, &fatal) {
		return "nastran fatal error: " + fatal.Error()
	}
	return fmt.Sprintf("nastran run in %s failed: %v", e.Dir, e.Err)
}

// Unwrap returns the underlying error.
func (e *SolverError) Unwrap() error { return e.Err }
