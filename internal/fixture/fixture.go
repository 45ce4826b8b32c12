// Package fixture persists a reduced JSON corpus.
//
// The corpus file holds one JSON object per representative:
//
//	{"id":"<16 hex digits>","count":N,"first_index":I,"line":L,"record":<raw JSON>}
//
// All writes are atomic and durable (temp file, fsync, rename, directory
// fsync), so a reader never observes a partially written corpus.
package fixture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"

	"corpusreduce/internal/classify"
	"corpusreduce/internal/jsonrec"
	"corpusreduce/internal/reduce"
)

// Line is one corpus entry on disk.
type Line struct {
	ID         string          `json:"id"`
	Count      uint64          `json:"count"`
	FirstIndex uint64          `json:"first_index"`
	SourceLine int             `json:"line,omitempty"`
	Record     json.RawMessage `json:"record"`
}

// Class parses the hexadecimal ID.
func (l Line) Class() (classify.Class, error) {
	v, err := strconv.ParseUint(l.ID, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid class id %q: %w", l.ID, err)
	}
	return classify.Class(v), nil
}

// Summary holds the statistics of one reduction.
type Summary struct {
	Total    uint64 `json:"total"`
	Distinct int    `json:"distinct"`
	// Digest is the sha256 of the canonical reduction trace.
	Digest string `json:"digest,omitempty"`
}

// WriteCorpus writes entries, in the given order, to path.
//
// Each representative is stored exactly as it was read: the raw bytes are
// spliced into the line without re-encoding, so escapes and inner whitespace
// survive. A record must be valid JSON on a single line.
func WriteCorpus(path string, entries []reduce.Entry[jsonrec.Record]) error {
	return writeFileAtomicDurable(path, 0o644, func(w io.Writer) error {
		var buf []byte
		for _, e := range entries {
			var err error
			buf, err = appendLine(buf[:0], e)
			if err != nil {
				return err
			}
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
		return nil
	})
}

// appendLine encodes e with the field order of Line.
func appendLine(buf []byte, e reduce.Entry[jsonrec.Record]) ([]byte, error) {
	raw := e.Representative.Raw
	if len(raw) == 0 {
		raw = []byte("null")
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("class %s: representative is not valid JSON", e.ID.Hex())
	}
	if bytes.ContainsAny(raw, "\r\n") {
		return nil, fmt.Errorf("class %s: representative spans several lines", e.ID.Hex())
	}

	buf = append(buf, `{"id":"`...)
	buf = append(buf, e.ID.Hex()...)
	buf = append(buf, `","count":`...)
	buf = strconv.AppendUint(buf, e.Count, 10)
	buf = append(buf, `,"first_index":`...)
	buf = strconv.AppendUint(buf, e.FirstIndex, 10)
	if e.Representative.Line != 0 {
		buf = append(buf, `,"line":`...)
		buf = strconv.AppendInt(buf, int64(e.Representative.Line), 10)
	}
	buf = append(buf, `,"record":`...)
	buf = append(buf, raw...)
	buf = append(buf, "}\n"...)
	return buf, nil
}

// ReadCorpus loads a corpus written by WriteCorpus.
func ReadCorpus(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	for {
		var l Line
		if err := dec.Decode(&l); err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return nil, fmt.Errorf("decode corpus entry %d: %w", len(lines)+1, err)
		}
		lines = append(lines, l)
	}
}

// WriteSummary writes s as indented JSON to path.
func WriteSummary(path string, s Summary) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return writeFileAtomicDurable(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

func writeFileAtomicDurable(path string, perm os.FileMode, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
