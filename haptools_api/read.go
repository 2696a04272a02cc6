package haptools_api

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// A Reader streams the records of a .hap file. The header is parsed when the
// reader is opened; data lines are parsed on each call to Next
type Reader struct {
	header  *Header
	next    func() (string, error)
	closers []io.Closer

	lineNumber int
	peeked     *string
}

// Open opens a .hap file for streaming and parses its header. Files ending in
// .gz are read through a bgzf reader
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader := &Reader{header: &Header{Schema: NewSchema()}}
	if strings.HasSuffix(path, ".gz") {
		bgReader, err := bgzf.NewReader(file, 1)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("opening bgzf stream: %w", err)
		}
		reader.next = func() (string, error) {
			line, _, err := readBgzfLine(bgReader)
			return line, err
		}
		reader.closers = []io.Closer{bgReader, file}
	} else {
		reader.next = scanLines(file)
		reader.closers = []io.Closer{file}
	}

	if err := reader.readHeader(); err != nil {
		reader.Close()
		return nil, err
	}
	return reader, nil
}

// NewReader reads plain (uncompressed) .hap text from r and parses its header
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{
		header: &Header{Schema: NewSchema()},
		next:   scanLines(r),
	}
	if err := reader.readHeader(); err != nil {
		return nil, err
	}
	return reader, nil
}

// scanLines returns a line source over a plain text stream
func scanLines(r io.Reader) func() (string, error) {
	scanner := bufio.NewScanner(r)
	const maxCapacity = 8 * 1000000 // 8 MB
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)
	return func() (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
}

// readBgzfLine reads a line from a bgzf file along with the chunk of virtual
// offsets spanning it
func readBgzfLine(r *bgzf.Reader) (string, bgzf.Chunk, error) {
	// The transaction anchors its begin on the final byte of the previous
	// read; the line itself starts where that read ended
	begin := r.LastChunk().End
	tx := r.Begin()
	var (
		data []byte
		b    byte
		err  error
	)
	for {
		b, err = r.ReadByte()
		if err != nil {
			break
		}
		data = append(data, b)
		if b == '\n' {
			break
		}
	}
	chunk := tx.End()
	chunk.Begin = begin
	if errors.Is(err, io.EOF) && len(data) > 0 {
		// A final line without a trailing newline is still a line
		err = nil
	}
	return strings.TrimRight(string(data), "\r\n"), chunk, err
}

// Consume the contiguous header block at the start of the file. Schema
// declaration lines are folded into the schema; every other comment line is
// kept verbatim
func (r *Reader) readHeader() error {
	for {
		line, err := r.nextLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !strings.HasPrefix(line, "#") {
			r.peeked = &line
			r.lineNumber--
			return nil
		}
		if err := r.header.parseLine(line, r.lineNumber); err != nil {
			return err
		}
	}
}

// Parse a single header line into the schema or the verbatim comment list
func (h *Header) parseLine(line string, lineNumber int) error {
	if !strings.HasPrefix(line, "#H\t") && !strings.HasPrefix(line, "#V\t") {
		h.Comments = append(h.Comments, line)
		return nil
	}

	parts := strings.SplitN(line[1:], "\t", 4)
	if len(parts) != 4 {
		return &MalformedLineError{Line: lineNumber, Reason: fmt.Sprintf("schema declaration has %d columns, expected 4", len(parts))}
	}
	err := h.Schema.Declare(LineType(parts[0][0]), parts[1], parts[2], parts[3])
	var duplicate *DuplicateFieldError
	if err != nil && !errors.As(err, &duplicate) {
		return &MalformedLineError{Line: lineNumber, Reason: err.Error()}
	}
	return err
}

func (r *Reader) nextLine() (string, error) {
	if r.peeked != nil {
		line := *r.peeked
		r.peeked = nil
		r.lineNumber++
		return line, nil
	}
	line, err := r.next()
	if err != nil {
		return "", err
	}
	r.lineNumber++
	return line, nil
}

// Header returns the parsed header of the file
func (r *Reader) Header() *Header {
	return r.header
}

// Next parses and returns the next data record. It returns io.EOF at the end
// of the stream
func (r *Reader) Next() (Record, error) {
	line, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(line, "#") {
		return nil, &MalformedLineError{Line: r.lineNumber, Reason: "comment line after the first data line"}
	}
	return ParseRecord(line, r.lineNumber, r.header.Schema)
}

// Close releases the underlying file handles
func (r *Reader) Close() error {
	var err error
	for _, closer := range r.closers {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Read opens and fully parses a .hap file into a HapFile struct
func Read(path string) (*HapFile, error) {
	reader, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	hapFile := &HapFile{Header: *reader.Header()}
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return hapFile, nil
		}
		if err != nil {
			return nil, err
		}
		hapFile.Records = append(hapFile.Records, record)
	}
}
