package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

const currencyLine = "                                      CURRENCY DATE = 12/21/25"

func newParser(t *testing.T, opts ...pipeline.Option) *pipeline.Parser {
	t.Helper()
	return pipeline.New(slog.Default(), observability.NewMetricsForTesting(), opts...)
}

// dofRecord builds a minimal valid 127-byte record line. All records share
// the same coordinates; identity comes from the identifier.
func dofRecord(t *testing.T, identifier, state, city string) []byte {
	t.Helper()
	line := []byte(strings.Repeat(" ", 127))
	put := func(start int, s string) { copy(line[start:], s) }
	put(0, identifier)
	put(10, "O")
	put(12, "US")
	put(15, state)
	put(18, city)
	put(35, "30")
	put(38, "10")
	put(41, "45.00N")
	put(48, "088")
	put(52, "04")
	put(55, "39.00W")
	put(62, "TOWER")
	put(81, "1")
	put(83, "  562")
	put(89, "  731")
	put(95, "R")
	put(97, "4")
	put(99, "P")
	put(103, "2025ASO001307")
	put(118, "A")
	put(120, "2025157")
	return line
}

// dofDocument assembles a currency header, three banner lines, and the
// given body lines into a complete newline-terminated input.
func dofDocument(body ...[]byte) []byte {
	doc := [][]byte{
		[]byte(currencyLine),
		[]byte("   CO ST  CITY               LATITUDE       LONGITUDE"),
		[]byte(strings.Repeat("-", 60)),
		nil,
	}
	doc = append(doc, body...)
	return append(bytes.Join(doc, []byte("\n")), '\n')
}

// --- tests ---

func TestParser_HappyPath(t *testing.T) {
	input := dofDocument(
		dofRecord(t, "01-001307", "AL", "MOBILE"),
		dofRecord(t, "22-000123", "LA", "NEW ORLEANS"),
		dofRecord(t, "48-005678", "TX", "HOUSTON"),
	)

	container, err := newParser(t).ParseBytes(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "20251221", container.Cycle().ID())
	assert.Equal(t, 3, container.Len())
	assert.Equal(t, []string{"01-001307", "22-000123", "48-005678"}, container.Identifiers())

	mobile, ok := container.Get("01-001307")
	require.True(t, ok)
	assert.Equal(t, "MOBILE", mobile.City)
	assert.InDelta(t, 30.179167, mobile.Latitude, 1e-6)
	assert.InDelta(t, -88.0775, mobile.Longitude, 1e-6)
}

func TestParser_SkipsBlankAndRuledLines(t *testing.T) {
	var calls int
	input := dofDocument(
		dofRecord(t, "01-001307", "AL", "MOBILE"),
		nil,
		[]byte("--------------------"),
		dofRecord(t, "22-000123", "LA", "NEW ORLEANS"),
		nil,
	)

	container, err := newParser(t, pipeline.WithErrorHandler(func(error, int) { calls++ })).
		ParseBytes(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 2, container.Len())
	assert.Zero(t, calls, "blank and ruled lines are not errors")
}

func TestParser_MalformedLineTolerance(t *testing.T) {
	var (
		gotErr  error
		gotLine int
		calls   int
	)
	input := dofDocument(
		dofRecord(t, "01-001307", "AL", "MOBILE"),
		dofRecord(t, "22-000123", "LA", "NEW ORLEANS")[:100], // truncated
		dofRecord(t, "48-005678", "TX", "HOUSTON"),
	)

	handler := func(err error, line int) {
		calls++
		gotErr, gotLine = err, line
	}
	container, err := newParser(t, pipeline.WithErrorHandler(handler)).
		ParseBytes(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 2, container.Len())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 6, gotLine, "truncated record sits on line 6")

	var tooShort *domain.LineTooShortError
	require.ErrorAs(t, gotErr, &tooShort)
	assert.Equal(t, 100, tooShort.Actual)
}

func TestParser_SilentWithoutHandler(t *testing.T) {
	input := dofDocument(
		dofRecord(t, "01-001307", "AL", "MOBILE"),
		dofRecord(t, "22-000123", "LA", "NEW ORLEANS")[:50],
	)

	container, err := newParser(t).ParseBytes(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, container.Len())
}

func TestParser_DuplicateIdentifierLastWins(t *testing.T) {
	input := dofDocument(
		dofRecord(t, "01-001307", "AL", "MOBILE"),
		dofRecord(t, "01-001307", "AL", "THEODORE"),
	)

	container, err := newParser(t).ParseBytes(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 1, container.Len())
	obstacle, ok := container.Get("01-001307")
	require.True(t, ok)
	assert.Equal(t, "THEODORE", obstacle.City)
}

func TestParser_HeaderGarbage(t *testing.T) {
	input := bytes.Join([][]byte{
		[]byte("DIGITAL OBSTACLE FILE"),
		dofRecord(t, "01-001307", "AL", "MOBILE"),
	}, []byte("\n"))

	_, err := newParser(t).ParseBytes(context.Background(), input)
	require.Error(t, err)

	var formatErr *domain.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, domain.FormatMarkerNotFound, formatErr.Kind)
	assert.Equal(t, 1, formatErr.Line)
}

func TestParser_EmptyInput(t *testing.T) {
	_, err := newParser(t).ParseBytes(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrMissingCurrencyDate)
}

func TestParser_NoRecords(t *testing.T) {
	_, err := newParser(t).ParseBytes(context.Background(), dofDocument())
	assert.ErrorIs(t, err, domain.ErrNoObstacles)
}

func TestParser_StreamError(t *testing.T) {
	boom := errors.New("connection reset")
	prefix := dofDocument(dofRecord(t, "01-001307", "AL", "MOBILE"))
	r := io.MultiReader(bytes.NewReader(prefix), iotest.ErrReader(boom))

	_, err := newParser(t).ParseReader(context.Background(), r)
	require.Error(t, err)

	var streamErr *domain.StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.ErrorIs(t, err, boom)
}

func TestParser_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := dofDocument(dofRecord(t, "01-001307", "AL", "MOBILE"))
	_, err := newParser(t).ParseBytes(ctx, input)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParser_ParseFile(t *testing.T) {
	path := filepath.Join("testdata", "dof_sample.dat")
	info, err := os.Stat(path)
	require.NoError(t, err)

	var lastLines, lastBytes int64
	progress := func(lines, read int64) { lastLines, lastBytes = lines, read }

	container, err := newParser(t, pipeline.WithProgress(progress)).
		ParseFile(context.Background(), path, 0)
	require.NoError(t, err)

	assert.Equal(t, "20251221", container.Cycle().ID())
	assert.Equal(t, 10, container.Len())

	amarillo, ok := container.Get("48-001200")
	require.True(t, ok)
	assert.Equal(t, "AMARILLO", amarillo.City)
	assert.Equal(t, uint8(7), amarillo.Quantity)
	assert.Equal(t, 4078, amarillo.HeightMSL)

	assert.Equal(t, int64(14), lastLines)
	assert.Equal(t, info.Size(), lastBytes)
}
