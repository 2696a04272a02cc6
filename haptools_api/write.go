package haptools_api

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// A Writer emits a .hap file: the user-supplied comments verbatim, then the
// schema declaration lines regenerated from the live schema, then data lines
// through the codec. A Writer must not be shared between goroutines
type Writer struct {
	schema   *Schema
	comments []string

	out     io.Writer
	flusher func() error
	closers []io.Closer

	sorted        bool
	headerWritten bool
	wroteRecord   bool
	previous      sortKey
}

// NewWriter writes plain .hap text to w
func NewWriter(w io.Writer, schema *Schema) *Writer {
	buffered := bufio.NewWriter(w)
	return &Writer{
		schema:  schema,
		out:     buffered,
		flusher: buffered.Flush,
	}
}

// Create creates the file at path and writes a .hap file to it. Paths ending
// in .gz are written through a bgzf writer so the output can be indexed
func Create(path string, schema *Schema) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".gz") {
		bgWriter := bgzf.NewWriter(file, 1)
		return &Writer{
			schema:  schema,
			out:     bgWriter,
			flusher: bgWriter.Flush,
			closers: []io.Closer{bgWriter, file},
		}, nil
	}

	buffered := bufio.NewWriter(file)
	return &Writer{
		schema:  schema,
		out:     buffered,
		flusher: buffered.Flush,
		closers: []io.Closer{file},
	}, nil
}

// Sorted makes the writer verify the index-compatible order of the records it
// is given and fail with an UnsortedFileError instead of reordering them
func (w *Writer) Sorted() {
	w.sorted = true
}

// AddComment adds a header comment line, emitted verbatim before the schema
// declarations. Comments must be added before the first record is written
func (w *Writer) AddComment(line string) error {
	if w.headerWritten {
		return fmt.Errorf("cannot add comment %q: the header has already been written", line)
	}
	if !strings.HasPrefix(line, "#") {
		return fmt.Errorf("comment %q does not start with '#'", line)
	}
	w.comments = append(w.comments, line)
	return nil
}

// Write the header comments followed by the regenerated schema declarations
func (w *Writer) writeHeader() error {
	for _, comment := range w.comments {
		if err := w.writeLine(comment); err != nil {
			return err
		}
	}
	for _, declaration := range w.schema.DeclarationLines() {
		if err := w.writeLine(declaration); err != nil {
			return err
		}
	}
	w.headerWritten = true
	return nil
}

// Write serializes one record to the output
func (w *Writer) Write(record Record) error {
	if !w.headerWritten {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	if w.sorted {
		key := keyOf(record)
		if w.wroteRecord && key.less(w.previous) {
			return &UnsortedFileError{
				Line:   record.LineNumber(),
				Reason: fmt.Sprintf("%c record for %q at position %d supplied after a later record", key.lineType, key.name, key.start),
			}
		}
		w.previous = key
	}

	line, err := record.String(w.schema)
	if err != nil {
		return err
	}
	w.wroteRecord = true
	return w.writeLine(line)
}

func (w *Writer) writeLine(line string) error {
	_, err := io.WriteString(w.out, line+"\n")
	return err
}

// Flush writes any buffered lines to the destination
func (w *Writer) Flush() error {
	if !w.headerWritten {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}
	return w.flusher()
}

// Close flushes the writer and releases the underlying file handles. A file
// without data lines still gets its header
func (w *Writer) Close() error {
	err := w.Flush()
	for _, closer := range w.closers {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// WriteFile writes a whole record set to the file at path. When sorted is
// true the record order is verified, not fixed up; use Sort beforehand to
// produce indexable output from an unsorted record set
func WriteFile(path string, hapFile *HapFile, sorted bool) error {
	writer, err := Create(path, hapFile.Header.Schema)
	if err != nil {
		return err
	}
	if sorted {
		writer.Sorted()
	}
	for _, comment := range hapFile.Header.Comments {
		if err := writer.AddComment(comment); err != nil {
			writer.Close()
			return err
		}
	}
	for _, record := range hapFile.Records {
		if err := writer.Write(record); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}
