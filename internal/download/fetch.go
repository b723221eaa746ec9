package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "modctl/1.0 (FNF mod manager)"

// ProgressFunc is a callback for byte progress updates
type ProgressFunc func(downloaded, total int64)

// Fetcher opens remote archives
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher. A zero timeout means no overall deadline,
// large archives can take a while.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Open starts a GET request and returns the body with its content length.
// Unknown lengths are reported as 0.
func (f *Fetcher) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	length := resp.ContentLength
	if length < 0 {
		length = 0
	}
	return resp.Body, length, nil
}

// copyWithProgress copies from src to dst while reporting progress
func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, onProgress ProgressFunc) (int64, error) {
	buf := make([]byte, 32*1024) // 32KB buffer
	var written int64
	var lastReport int64

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)

			// Report progress every 100KB
			if written-lastReport > 100*1024 {
				onProgress(written, total)
				lastReport = written
			}

			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er != io.EOF {
				if ctx.Err() != nil {
					return written, ctx.Err()
				}
				return written, er
			}
			break
		}
	}

	// Final progress report
	onProgress(written, total)
	return written, nil
}
