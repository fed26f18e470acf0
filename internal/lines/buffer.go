package lines

import "bytes"

// BufferScanner scans a fully materialized byte buffer. Yielded lines are
// subslices of the buffer, so no per-line allocation happens and no copy is
// ever made. It never blocks and never fails.
type BufferScanner struct {
	data []byte
	pos  int
	line []byte
}

// NewBufferScanner scans data in place. The scanner does not modify data
// but aliases it; the caller must not mutate the buffer mid-scan.
func NewBufferScanner(data []byte) *BufferScanner {
	return &BufferScanner{data: data}
}

func (s *BufferScanner) Scan() bool {
	if s.pos >= len(s.data) {
		return false
	}
	rest := s.data[s.pos:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		s.line = stripCR(rest[:i])
		s.pos += i + 1
		return true
	}
	// Unterminated final fragment, non-empty by construction.
	s.line = stripCR(rest)
	s.pos = len(s.data)
	return true
}

func (s *BufferScanner) Bytes() []byte {
	return s.line
}

// Err always returns nil: the in-memory variant has no I/O to fail.
func (s *BufferScanner) Err() error {
	return nil
}
