package lines

import (
	"bytes"
	"io"
)

// DefaultChunkSize is the read size used when a caller does not choose one.
const DefaultChunkSize = 64 * 1024

// maxEmptyReads bounds consecutive zero-byte reads from a misbehaving
// reader before the scan gives up with io.ErrNoProgress.
const maxEmptyReads = 100

// ReaderScanner drives the line splitter from an arbitrary byte stream. It
// reads fixed-size chunks and assembles lines across chunk boundaries,
// including a line split exactly at a boundary. Scan blocks while the
// underlying reader blocks; this is the only suspension point in a parse.
//
// The same splitter serves the file variant, so the two cannot diverge.
type ReaderScanner struct {
	r       io.Reader
	buf     []byte // fixed-size read buffer
	chunk   []byte // unconsumed tail of the current chunk
	pending []byte // partial line carried across chunk boundaries
	line    []byte
	read    int64
	err     error
	eof     bool
}

// NewReaderScanner wraps r. chunkSize controls the read size; values <= 0
// use DefaultChunkSize.
func NewReaderScanner(r io.Reader, chunkSize int) *ReaderScanner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ReaderScanner{r: r, buf: make([]byte, chunkSize)}
}

func (s *ReaderScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	emptyReads := 0
	for {
		if i := bytes.IndexByte(s.chunk, '\n'); i >= 0 {
			if len(s.pending) > 0 {
				s.pending = append(s.pending, s.chunk[:i]...)
				s.line = stripCR(s.pending)
				s.pending = s.pending[:0]
			} else {
				s.line = stripCR(s.chunk[:i])
			}
			s.chunk = s.chunk[i+1:]
			return true
		}

		// No line feed in the current chunk: carry the remainder and
		// acquire the next chunk.
		s.pending = append(s.pending, s.chunk...)
		s.chunk = nil

		if s.eof {
			if len(s.pending) > 0 {
				s.line = stripCR(s.pending)
				s.pending = nil
				return true
			}
			return false
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.chunk = s.buf[:n]
			s.read += int64(n)
			emptyReads = 0
		}
		switch {
		case err == io.EOF:
			s.eof = true
		case err != nil:
			s.err = err
			return false
		case n == 0:
			emptyReads++
			if emptyReads >= maxEmptyReads {
				s.err = io.ErrNoProgress
				return false
			}
		}
	}
}

func (s *ReaderScanner) Bytes() []byte {
	return s.line
}

// Err returns the terminal I/O error, if any. Errors here are fatal to the
// parse: a stream failure never yields a partial result.
func (s *ReaderScanner) Err() error {
	return s.err
}

// BytesRead reports how many bytes have been acquired from the reader so
// far. Suitable for progress reporting; it runs ahead of the yielded lines
// by at most one chunk.
func (s *ReaderScanner) BytesRead() int64 {
	return s.read
}
