// Package output provides context-aware output for wtctl.
//
// Stdout carries primary data only: the state report, the plan and the
// execution results, in whichever format the caller asked for. Diagnostics
// go through the log package to stderr so the report can be piped into
// another program without filtering.
package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

type ctxKey struct{}

// Printer writes primary output to stdout (or a substitute writer).
type Printer struct {
	w io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Printer{w: w})
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout}
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Capture returns a Printer that writes to both p and an in-memory buffer,
// so a rendered report can also be copied to the clipboard.
func (p *Printer) Capture() (*Printer, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Printer{w: io.MultiWriter(p.w, buf)}, buf
}
