package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/couchcryptid/obstacle-data-etl/internal/lines"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
)

// The DOF layout is positional: line 1 is the currency header and lines 2
// through 4 are column headers with no data.
const headerLines = 4

// progressStride is how many lines pass between progress callbacks. Coarse
// enough to stay invisible in the profile, fine enough for a smooth bar.
const progressStride = 5000

// ErrorFunc receives each non-fatal per-line failure with its 1-based line
// number. The line is omitted from the result and the parse continues.
type ErrorFunc func(err error, lineNumber int)

// ProgressFunc receives parse progress: lines seen so far and, when the
// source can report it, bytes acquired so far (0 otherwise).
type ProgressFunc func(linesRead, bytesRead int64)

// Option configures a Parser.
type Option func(*Parser)

// WithErrorHandler installs a callback for non-fatal per-line failures.
// Without one, failed lines are skipped silently; that is the documented
// best-effort mode, not a defect.
func WithErrorHandler(fn ErrorFunc) Option {
	return func(p *Parser) { p.onError = fn }
}

// WithProgress installs a progress callback, invoked every few thousand
// lines and once at the end of the pass.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Parser) { p.onProgress = fn }
}

// Parser drives a line source through the positional DOF structure and
// assembles the resulting container. One Parse call is strictly sequential
// and keeps all state local, so a single Parser may run concurrent parses
// of independent sources.
type Parser struct {
	logger     *slog.Logger
	metrics    *observability.Metrics
	onError    ErrorFunc
	onProgress ProgressFunc
}

// New creates a Parser with the given observability and options.
func New(logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Parser {
	p := &Parser{logger: logger, metrics: metrics}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// byteCounter is implemented by sources that can report acquired bytes;
// progress reporting degrades gracefully for those that cannot.
type byteCounter interface {
	BytesRead() int64
}

// Parse consumes the line source to completion and returns the container.
//
// Fatal conditions return an error and no container: a missing or malformed
// currency header, a stream I/O failure, an input with zero decodable
// records, and context cancellation. Everything else is per-line: the
// record is dropped, the error handler (if any) is told, and the pass
// continues.
func (p *Parser) Parse(ctx context.Context, src lines.Scanner) (*domain.ObstacleContainer, error) {
	start := time.Now()

	var (
		cycle      domain.Cycle
		haveCycle  bool
		obstacles  = make(map[string]domain.Obstacle)
		lineNumber int
		lineErrors int
	)

	for src.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNumber++
		line := src.Bytes()

		switch {
		case lineNumber == 1:
			parsed, err := domain.ParseCurrencyDate(line, lineNumber)
			if err != nil {
				// Header failures doom the whole parse.
				return nil, err
			}
			cycle, haveCycle = parsed, true

		case lineNumber <= headerLines:
			// Column headers, never data.

		case len(line) == 0 || line[0] == '-':
			// Blank or ruled separator.

		default:
			obstacle, err := domain.ParseRecord(line, lineNumber)
			if err != nil {
				lineErrors++
				p.reportLineError(err, lineNumber)
				continue
			}
			// Identifier collisions are resolved last-one-wins, silently;
			// the published files do repeat identifiers across sections.
			obstacles[obstacle.Identifier] = obstacle
		}

		if p.onProgress != nil && lineNumber%progressStride == 0 {
			p.onProgress(int64(lineNumber), bytesRead(src))
		}
	}

	if err := src.Err(); err != nil {
		return nil, &domain.StreamError{Err: err}
	}
	if !haveCycle {
		return nil, domain.ErrMissingCurrencyDate
	}
	if len(obstacles) == 0 {
		return nil, domain.ErrNoObstacles
	}

	if p.onProgress != nil {
		p.onProgress(int64(lineNumber), bytesRead(src))
	}

	elapsed := time.Since(start)
	p.metrics.LinesProcessed.Add(float64(lineNumber))
	p.metrics.ObstaclesParsed.Add(float64(len(obstacles)))
	p.metrics.ParseDuration.Observe(elapsed.Seconds())

	p.logger.Info("parse complete",
		"cycle", cycle.ID(),
		"lines", lineNumber,
		"obstacles", len(obstacles),
		"line_errors", lineErrors,
		"duration", elapsed,
	)

	return domain.NewContainer(cycle, obstacles), nil
}

// ParseBytes parses an in-memory DOF image.
func (p *Parser) ParseBytes(ctx context.Context, data []byte) (*domain.ObstacleContainer, error) {
	return p.Parse(ctx, lines.NewBufferScanner(data))
}

// ParseFile parses a DOF file read in chunks. chunkSize <= 0 uses the
// default chunk size.
func (p *Parser) ParseFile(ctx context.Context, path string, chunkSize int) (*domain.ObstacleContainer, error) {
	src, err := lines.OpenFileScanner(path, chunkSize)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return p.Parse(ctx, src)
}

// ParseReader parses an arbitrary byte stream, e.g. a network body.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*domain.ObstacleContainer, error) {
	return p.Parse(ctx, lines.NewReaderScanner(r, 0))
}

func (p *Parser) reportLineError(err error, lineNumber int) {
	p.metrics.ParseErrors.WithLabelValues(ErrorKind(err)).Inc()
	p.logger.Debug("line skipped", "line", lineNumber, "error", err)
	if p.onError != nil {
		p.onError(err, lineNumber)
	}
}

// ErrorKind buckets a per-line failure into one of line_too_short, field,
// encoding, format, or other. The buckets label the parse_errors_total
// metric and the parse command's summary.
func ErrorKind(err error) string {
	var (
		tooShort *domain.LineTooShortError
		field    *domain.FieldParseError
		encoding *domain.EncodingError
		format   *domain.FormatError
	)
	switch {
	case errors.As(err, &tooShort):
		return "line_too_short"
	case errors.As(err, &field):
		return "field"
	case errors.As(err, &encoding):
		return "encoding"
	case errors.As(err, &format):
		return "format"
	default:
		return "other"
	}
}

func bytesRead(src lines.Scanner) int64 {
	if counter, ok := src.(byteCounter); ok {
		return counter.BytesRead()
	}
	return 0
}
