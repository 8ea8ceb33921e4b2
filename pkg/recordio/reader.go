// Package recordio reads two-field whitespace-separated input files and writes
// tab-separated membership records.
package recordio

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/duynguyendang/listmembers/pkg/chain"
	"github.com/duynguyendang/listmembers/pkg/common/errors"
	"github.com/duynguyendang/listmembers/pkg/expand"
	"github.com/klauspost/compress/s2"
)

// CompressedSuffix marks input files stored as s2 streams.
const CompressedSuffix = ".s2"

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// LineError reports an input line that does not hold exactly two fields.
type LineError struct {
	File   string
	Line   int
	Fields int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: expected 2 fields, got %d", e.File, e.Line, e.Fields)
}

func (e *LineError) Unwrap() error {
	return errors.ErrMalformedLine
}

type s2ReadCloser struct {
	*s2.Reader
	f *os.File
}

func (r s2ReadCloser) Close() error {
	return r.f.Close()
}

// Open opens an input file, decompressing it when the name ends in ".s2".
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s: %w", path, errors.ErrNotFound)
		}
		return nil, err
	}
	if strings.HasSuffix(path, CompressedSuffix) {
		return s2ReadCloser{Reader: s2.NewReader(f), f: f}, nil
	}
	return f, nil
}

// Fields yields the two fields of every line of r. The first line that does
// not split into exactly two fields yields a *LineError and ends the sequence.
func Fields(r io.Reader, name string) iter.Seq2[[2]string, error] {
	return func(yield func([2]string, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		line := 0
		for sc.Scan() {
			line++
			parts := strings.Fields(sc.Text())
			if len(parts) != 2 {
				yield([2]string{}, &LineError{File: name, Line: line, Fields: len(parts)})
				return
			}
			if !yield([2]string{parts[0], parts[1]}, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield([2]string{}, fmt.Errorf("read %s: %w", name, err))
		}
	}
}

// fileFields opens path on first pull and closes it when iteration ends.
func fileFields(path string) iter.Seq2[[2]string, error] {
	return func(yield func([2]string, error) bool) {
		rc, err := Open(path)
		if err != nil {
			yield([2]string{}, err)
			return
		}
		defer rc.Close()
		for f, err := range Fields(rc, path) {
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// Pairs reads predecessor/successor pairs from path.
func Pairs(path string) iter.Seq2[chain.Pair, error] {
	return func(yield func(chain.Pair, error) bool) {
		for f, err := range fileFields(path) {
			if !yield(chain.Pair{Predecessor: f[0], Successor: f[1]}, err) || err != nil {
				return
			}
		}
	}
}

// References reads referrer/referent pairs from path.
func References(path string) iter.Seq2[expand.Reference, error] {
	return func(yield func(expand.Reference, error) bool) {
		for f, err := range fileFields(path) {
			if !yield(expand.Reference{Referrer: f[0], Referent: f[1]}, err) || err != nil {
				return
			}
		}
	}
}
