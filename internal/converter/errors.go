package converter

import "errors"

// ErrFileNotFound indicates the input workbook does not exist.
var ErrFileNotFound = errors.New("file not found")

// Stage names the conversion step that failed.
type Stage string

const (
	StageRead   Stage = "read"
	StageExport Stage = "export"
)

// ConversionError wraps any failure after the input file was found. Its
// message is the underlying description; Stage is for callers that need to
// tell a read failure from an export failure.
type ConversionError struct {
	Stage Stage
	Err   error
}

func (e *ConversionError) Error() string {
	return e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func newConversionError(stage Stage, err error) *ConversionError {
	return &ConversionError{Stage: stage, Err: err}
}
