// Package archive unpacks the zip archives that build platforms attach to
// workflow runs and pretty prints their contents.
package archive

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	gcs "github.com/coverbotdev/coverbot/pkg/format"
)

var ErrExtract = errors.New("archive extraction error")

// Entry describes a single file written during extraction.
type Entry struct {
	Name string
	Size int64
}

// Extract unpacks zipData into dir and returns the written entries. Entries
// that would escape dir are rejected rather than silently skipped.
func Extract(zipData []byte, dir string) ([]Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}

	entries := make([]Entry, 0, len(reader.File))
	for _, file := range reader.File {
		target, err := securePath(dir, file.Name)
		if err != nil {
			return nil, err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExtract, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtract, err)
		}

		n, err := writeEntry(file, target)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: file.Name, Size: n})
	}

	return entries, nil
}

func writeEntry(file *zip.File, target string) (int64, error) {
	rc, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	defer out.Close()

	n, err := io.Copy(out, rc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	return n, nil
}

// securePath joins name onto dir and rejects traversal outside of it.
func securePath(dir string, name string) (string, error) {
	target := filepath.Join(dir, filepath.Clean(name))
	base := filepath.Clean(dir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes extraction directory", ErrExtract, name)
	}
	return target, nil
}

// PrettyWriter renders an archive's table of contents with digests and
// humanized sizes.
type PrettyWriter struct {
	w io.Writer
}

func NewPrettyWriter(w io.Writer) *PrettyWriter {
	return &PrettyWriter{w: w}
}

func (p *PrettyWriter) Encode(zipData []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtract, err)
	}

	table := new(gcs.Table).WithHeader("Name", "Size", "Digest")

	totalSize := uint64(0)
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		content, err := readEntry(file)
		if err != nil {
			return err
		}
		totalSize += uint64(len(content))
		digest := sha256.Sum256(content)
		table = table.WithRow(
			gcs.Summarize(file.Name, 48, gcs.ClipLeft),
			humanize.Bytes(uint64(len(content))),
			"sha256:"+gcs.Summarize(strings.ToUpper(hex.EncodeToString(digest[:])), 16, gcs.ClipRight),
		)
	}
	table = table.SortBy([]gcs.SortBy{{Name: "Name", Mode: gcs.Asc}}).Sort()

	horizontalLength := len(strings.Split(table.String(), "\n")[0])

	if _, err := strings.NewReader(table.String() + "\n").WriteTo(p.w); err != nil {
		return err
	}

	summary := "Total Size: " + humanize.Bytes(totalSize)
	// Left pad with spaces
	line := strings.Repeat(" ", max(horizontalLength-len(summary), 0)) + summary
	_, err = strings.NewReader(line + "\n").WriteTo(p.w)
	return err
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	return content, nil
}
