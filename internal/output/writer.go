package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"lovelybooks/collector/internal/domain"
)

// ErrWriterState is returned for a write that does not fit the document position.
var ErrWriterState = errors.New("invalid document writer state")

const (
	documentOpen  = `{"books": [`
	documentClose = `]}`
	documentEmpty = `{"books": []}`
)

type writerState int

const (
	stateNotStarted writerState = iota
	stateOpened
	stateClosed
)

func (s writerState) String() string {
	switch s {
	case stateNotStarted:
		return "not started"
	case stateOpened:
		return "opened"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DocumentWriter streams books into one {"books": [...]} document. The caller
// states for every record whether it is first and/or last; the wrapper is
// opened on the first record and closed on the last.
type DocumentWriter struct {
	w       io.Writer
	state   writerState
	written int
}

func NewDocumentWriter(w io.Writer) *DocumentWriter {
	return &DocumentWriter{w: w}
}

// WriteRecord appends one book to the document.
func (d *DocumentWriter) WriteRecord(book *domain.Book, first, last bool) error {
	switch {
	case first && d.state != stateNotStarted:
		return fmt.Errorf("%w: first record while %s", ErrWriterState, d.state)
	case !first && d.state != stateOpened:
		return fmt.Errorf("%w: record while %s", ErrWriterState, d.state)
	}

	record, err := encodeBook(book)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if first {
		buf.WriteString(documentOpen)
	}
	buf.Write(record)
	if last {
		buf.WriteString(documentClose)
	} else {
		buf.WriteByte(',')
	}

	if _, err := d.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write book %s: %w", book.Identifier, err)
	}

	d.written++
	if last {
		d.state = stateClosed
	} else {
		d.state = stateOpened
	}
	return nil
}

// WriteEmpty writes the complete document of a run without books.
func (d *DocumentWriter) WriteEmpty() error {
	if d.state != stateNotStarted {
		return fmt.Errorf("%w: empty document while %s", ErrWriterState, d.state)
	}
	if _, err := io.WriteString(d.w, documentEmpty); err != nil {
		return fmt.Errorf("failed to write empty document: %w", err)
	}
	d.state = stateClosed
	return nil
}

// Closed reports whether the document is structurally complete.
func (d *DocumentWriter) Closed() bool {
	return d.state == stateClosed
}

func (d *DocumentWriter) Written() int {
	return d.written
}

// WriteAll writes books in the given order as one complete document.
// Zero books produce {"books": []}.
func WriteAll(w io.Writer, books []*domain.Book) (int, error) {
	doc := NewDocumentWriter(w)

	if len(books) == 0 {
		return 0, doc.WriteEmpty()
	}

	for i, book := range books {
		if err := doc.WriteRecord(book, i == 0, i == len(books)-1); err != nil {
			return doc.Written(), err
		}
	}
	return doc.Written(), nil
}

// encodeBook keeps non-ASCII and HTML characters literal.
func encodeBook(book *domain.Book) ([]byte, error) {
	if book == nil {
		return nil, fmt.Errorf("cannot encode nil book")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(book); err != nil {
		return nil, fmt.Errorf("failed to encode book %s: %w", book.Identifier, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
