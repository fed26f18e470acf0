package faa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

// Client downloads Digital Obstacle File archives from the FAA's
// aeronautical data server and keeps them in a local data directory.
type Client struct {
	baseURL    string
	dataDir    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an FAA archive client.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		dataDir: cfg.DataDir,
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		logger: logger,
	}
}

// ArchiveName returns the FAA file name for a cycle's archive. The FAA
// names each archive for the cutoff date, the day before the cycle becomes
// current.
func ArchiveName(cycle domain.Cycle) string {
	cutoff := cycle.CutoffDate()
	return fmt.Sprintf("DOF_%02d%02d%02d.zip", cutoff.Year()%100, int(cutoff.Month()), cutoff.Day())
}

// ArchiveURL returns the full download URL for a cycle's archive.
func (c *Client) ArchiveURL(cycle domain.Cycle) string {
	return c.baseURL + "/" + ArchiveName(cycle)
}

// StatusError reports a non-OK response from the FAA server. A 404 usually
// means the cycle has not been published yet.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// ProgressFunc receives download progress. total is the announced content
// length, -1 when the server does not send one.
type ProgressFunc func(downloaded, total int64)

// Download fetches the cycle's archive into the data directory and returns
// the local path. The archive lands under a temporary name first so a
// partial download never shadows a complete one.
func (c *Client) Download(ctx context.Context, cycle domain.Cycle, progress ProgressFunc) (string, error) {
	url := c.ArchiveURL(cycle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dataDir, ".dof-download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}

	written, err := io.Copy(tmp, body)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("flush download: %w", err)
	}

	dest := filepath.Join(c.dataDir, ArchiveName(cycle))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move download into place: %w", err)
	}

	c.logger.Info("archive downloaded", "url", url, "bytes", written, "path", dest)
	return dest, nil
}

// Fetch returns the path of the cycle's extracted data file, downloading
// and extracting the archive when it is not already present. The boolean
// reports whether the file was already on disk.
func (c *Client) Fetch(ctx context.Context, cycle domain.Cycle, progress ProgressFunc) (string, bool, error) {
	dest := c.dataPath(cycle)
	if _, err := os.Stat(dest); err == nil {
		c.logger.Debug("data file already present", "path", dest)
		return dest, true, nil
	}

	archive, err := c.Download(ctx, cycle, progress)
	if err != nil {
		return "", false, err
	}
	path, err := c.Extract(archive)
	if err != nil {
		return "", false, err
	}
	return path, false, nil
}

// dataPath is where a cycle's extracted .dat file lives.
func (c *Client) dataPath(cycle domain.Cycle) string {
	return filepath.Join(c.dataDir, strings.TrimSuffix(ArchiveName(cycle), ".zip")+".dat")
}

// progressReader invokes fn as bytes flow through it.
type progressReader struct {
	r          io.Reader
	total      int64
	downloaded int64
	fn         ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.downloaded += int64(n)
		p.fn(p.downloaded, p.total)
	}
	return n, err
}
