// Package output writes operation results as single JSON objects.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"golang.org/x/term"
)

// Writer encodes one value per call as a JSON object followed by a newline.
type Writer struct {
	w      io.Writer
	pretty bool
}

// NewWriter returns a Writer. When pretty is set the object is indented with
// two spaces; otherwise it is written on one line.
func NewWriter(w io.Writer, pretty bool) *Writer {
	return &Writer{w: w, pretty: pretty}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Write encodes v and writes it with a trailing newline.
func (w *Writer) Write(v any) error {
	var (
		data []byte
		err  error
	)
	if w.pretty {
		data, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
	} else {
		data, err = sonic.ConfigStd.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	data = append(data, '\n')
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}
