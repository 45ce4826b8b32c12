package jsonrec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/tidwall/gjson"
)

// DefaultMaxLine is the largest accepted JSON Lines record, in bytes.
const DefaultMaxLine = 16 << 20

var ErrInvalidJSON = errors.New("invalid JSON")

// LineError reports a failure tied to one input line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Scanner reads one JSON document per line.
//
// Blank lines are skipped. The first invalid line stops the scan; Err
// reports it once All has returned.
type Scanner struct {
	sc   *bufio.Scanner
	line int
	err  error
}

// NewScanner reads from r. maxLine <= 0 selects DefaultMaxLine.
func NewScanner(r io.Reader, maxLine int) *Scanner {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	sc := bufio.NewScanner(r)
	// bufio uses the larger of cap(buf) and max as the limit.
	sc.Buffer(make([]byte, 0, min(64<<10, maxLine)), maxLine)
	return &Scanner{sc: sc}
}

// All yields every record in stream order. The returned sequence is single
// pass; each Raw slice is owned by the receiver.
func (s *Scanner) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for s.sc.Scan() {
			s.line++
			raw := bytes.TrimSpace(s.sc.Bytes())
			if len(raw) == 0 {
				continue
			}
			if !gjson.ValidBytes(raw) {
				s.err = &LineError{Line: s.line, Err: ErrInvalidJSON}
				return
			}
			rec := Record{Line: s.line, Raw: bytes.Clone(raw)}
			if !yield(rec) {
				return
			}
		}
		if err := s.sc.Err(); err != nil {
			s.err = &LineError{Line: s.line + 1, Err: err}
		}
	}
}

// Err returns the first error met by All, if any.
func (s *Scanner) Err() error { return s.err }

// Lines returns the number of lines consumed so far, blank lines included.
func (s *Scanner) Lines() int { return s.line }
