package download

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadArchive = errors.New("invalid mod archive")

// extractZip unpacks archive into dest. Entries that would land outside dest
// are refused. onProgress receives the uncompressed bytes written so far and
// the uncompressed size of the whole archive. It returns the bytes written.
func extractZip(archive, dest string, onProgress ProgressFunc) (int64, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer func() { _ = r.Close() }()

	root := filepath.Clean(dest) + string(filepath.Separator)

	var total, written int64
	for _, f := range r.File {
		total += int64(f.UncompressedSize64)
	}
	if onProgress != nil {
		onProgress(0, total)
	}

	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, root) {
			return written, fmt.Errorf("%w: entry escapes destination: %s", ErrBadArchive, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, err
			}
			continue
		}

		n, err := extractFile(f, target)
		written += n
		if err != nil {
			return written, err
		}
		if onProgress != nil {
			onProgress(written, total)
		}
	}

	return written, nil
}

func extractFile(f *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, err
	}

	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer func() { _ = src.Close() }()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		return n, fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return n, dst.Close()
}

// contentRoot returns the single top-level folder of an extracted archive,
// or dir itself when the archive has loose files at its root
func contentRoot(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return dir
	}
	return filepath.Join(dir, entries[0].Name())
}

// folderName turns a catalog name into a safe directory name
func folderName(name string, modID int64) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, ". ")
	if clean == "" {
		return fmt.Sprintf("mod-%d", modID)
	}
	return clean
}
