package faa

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extract pulls the obstacle data file out of a downloaded archive and
// writes it next to the archive, returning its path. FAA archives carry a
// single .dat member plus documentation; only the .dat member is taken.
func (c *Client) Extract(archivePath string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	members := dataMembers(&zr.Reader)
	switch len(members) {
	case 0:
		return "", fmt.Errorf("archive %s has no .dat member", archivePath)
	case 1:
	default:
		return "", fmt.Errorf("archive %s has %d .dat members, expected one", archivePath, len(members))
	}
	member := members[0]

	rc, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("open archive member %s: %w", member.Name, err)
	}
	defer rc.Close()

	dest := strings.TrimSuffix(archivePath, filepath.Ext(archivePath)) + ".dat"
	tmp, err := os.CreateTemp(filepath.Dir(archivePath), ".dof-extract-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	written, err := io.Copy(tmp, rc)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", member.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("flush extraction: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move extraction into place: %w", err)
	}

	c.logger.Info("archive extracted", "member", member.Name, "bytes", written, "path", dest)
	return dest, nil
}

func dataMembers(zr *zip.Reader) []*zip.File {
	var members []*zip.File
	for _, f := range zr.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".dat") {
			members = append(members, f)
		}
	}
	return members
}
