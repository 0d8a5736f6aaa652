// Package csvexport writes spreadsheet-friendly CSV where every field is quoted
// and each record stays on a single physical line.
package csvexport

import (
	"bufio"
	"io"
	"strings"
)

var fieldReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	",", ";",
	`"`, `""`,
)

// Field escapes one value: line breaks become a single space, commas become
// semicolons and double quotes are doubled.
func Field(v string) string {
	return `"` + fieldReplacer.Replace(v) + `"`
}

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(record ...string) error {
	var b strings.Builder
	for i, field := range record {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Field(field))
	}
	b.WriteString("\r\n")

	_, err := w.w.WriteString(b.String())
	return err
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}
