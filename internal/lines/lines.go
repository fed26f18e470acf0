// Package lines splits raw bytes into lines from three kinds of origin: an
// in-memory buffer, a chunk-read file, and an arbitrary byte stream. All
// variants follow one contract and yield byte-identical lines for identical
// underlying bytes, so the parser above them never cares where the bytes
// came from.
package lines

// Scanner is the pull-style line source contract, shaped like
// bufio.Scanner: Scan advances to the next line and reports whether one is
// available, Bytes returns it, Err reports a terminal I/O failure after
// Scan returns false.
//
// A line is everything between successive line-feed bytes with any single
// trailing carriage return stripped. A final unterminated fragment at end
// of input is yielded as the last line if and only if it is non-empty.
// Bytes pass through raw; no encoding validation happens at this layer.
//
// The slice returned by Bytes is only valid until the next call to Scan;
// callers that keep a line must copy it.
type Scanner interface {
	Scan() bool
	Bytes() []byte
	Err() error
}

// stripCR removes a single trailing carriage return, if present. Applied to
// every yielded line, including a final unterminated fragment.
func stripCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
