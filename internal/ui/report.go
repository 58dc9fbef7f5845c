package ui

import (
	"fmt"
	"io"

	"github.com/nconklindev/habatan/internal/types"
)

// Reporter prints human-facing status lines for the command line.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) Info(format string, args ...any) {
	fmt.Fprintln(r.w, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *Reporter) Success(format string, args ...any) {
	fmt.Fprintln(r.w, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *Reporter) Error(format string, args ...any) {
	fmt.Fprintln(r.w, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// Result prints the success notice followed by a preview of the output.
func (r *Reporter) Result(res *types.ConversionResult) {
	r.Success("Successfully converted %s to %s", res.InputFile, res.OutputFile)
	r.Info("First %d rows of the converted data:", len(res.Preview.Rows))
	fmt.Fprintln(r.w, RenderPreview(res.Preview, len(res.Preview.Rows)))
}

// Failure prints the operator-facing message for a failed conversion.
func (r *Reporter) Failure(input string, err error) {
	r.Error("%s", FailureMessage(input, err))
}
