package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

type scannedLine struct {
	err  error
	text string
}

// lineReader hands out lines scanned by a single background goroutine, so a
// read can be abandoned on cancellation without losing the next line.
type lineReader struct {
	src   io.Reader
	lines chan scannedLine
	once  sync.Once
}

func newLineReader(src io.Reader) *lineReader {
	return &lineReader{src: src, lines: make(chan scannedLine)}
}

func (r *lineReader) scan() {
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		r.lines <- scannedLine{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		r.lines <- scannedLine{err: err}
	}
}

// ReadLine returns the next trimmed line. After the last line it returns io.EOF.
func (r *lineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.once.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line := <-r.lines:
		return strings.TrimSpace(line.text), line.err
	}
}
