package lines

import (
	"fmt"
	"os"
)

// FileScanner reads a file in fixed-size chunks and splits it into lines
// using the shared stream splitter. The scanner owns the file handle;
// callers must Close it when done.
type FileScanner struct {
	ReaderScanner
	file *os.File
	size int64
}

// OpenFileScanner opens path for scanning. chunkSize controls the read
// size; values <= 0 use DefaultChunkSize (64 KiB).
func OpenFileScanner(path string, chunkSize int) (*FileScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &FileScanner{
		ReaderScanner: *NewReaderScanner(f, chunkSize),
		file:          f,
		size:          info.Size(),
	}, nil
}

// Size returns the file size in bytes, for progress reporting against
// BytesRead.
func (s *FileScanner) Size() int64 {
	return s.size
}

// Close releases the file handle.
func (s *FileScanner) Close() error {
	return s.file.Close()
}
