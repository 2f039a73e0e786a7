package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// PipelineError wraps the failure of a pipeline stage with the location it
// was raised from. The wrapped error carries a stack trace for zerolog.
type PipelineError struct {
	Stage    string
	Location string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s failed at [%s]: %v", e.Stage, e.Location, errors.Cause(e.Err))
}

func (e *PipelineError) Unwrap() error { return e.Err }

func newPipelineError(stage string, err error) error {
	location := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return &PipelineError{
		Stage:    stage,
		Location: location,
		Err:      errors.WithStack(err),
	}
}
