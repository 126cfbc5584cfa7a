// Package fetch downloads model artifacts over HTTP into a local
// directory. A fetch is idempotent: when the destination file already
// exists with nonzero size it is treated as valid and the network is
// never touched. There is no checksum verification and no retry at
// this level; callers wanting retries wrap Fetch themselves.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Result describes the outcome of a fetch.
type Result struct {
	// Path is the absolute destination the artifact lives at.
	Path string
	// Size is the artifact size in bytes.
	Size int64
	// Skipped is true when the artifact was already present and no
	// download was performed.
	Skipped bool
}

// ProgressFunc receives the bytes written so far and the total
// expected bytes. Total is -1 when the server did not announce a
// content length.
type ProgressFunc func(written, total int64)

// Options tune a fetch. The zero value is usable.
type Options struct {
	// Client overrides the HTTP client. Defaults to a client without
	// an overall timeout so that large model downloads are bounded by
	// the caller's context instead.
	Client *http.Client
	// Progress, when set, is invoked periodically during the download.
	Progress ProgressFunc
}

const partialSuffix = ".partial"

// Fetch downloads url into dest unless dest already exists with
// nonzero size. The download streams into dest + ".partial" and is
// renamed into place only on success, so an interrupted fetch never
// leaves a destination file behind that a later run would mistake for
// a complete artifact.
func Fetch(ctx context.Context, url, dest string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	ok, err := NonEmpty(dest)
	if err != nil {
		return nil, err
	}
	if ok {
		info, err := os.Stat(dest)
		if err != nil {
			return nil, fmt.Errorf("unable to stat %s: %w", dest, err)
		}
		return &Result{Path: dest, Size: info.Size(), Skipped: true}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create directory for %s: %w", dest, err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unable to fetch %s: unexpected status %s", url, resp.Status)
	}

	partial := dest + partialSuffix
	out, err := os.Create(partial)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s: %w", partial, err)
	}

	written, err := copyWithProgress(out, resp.Body, resp.ContentLength, opts.Progress)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(partial)
		return nil, fmt.Errorf("unable to download %s: %w", url, err)
	}
	if written == 0 {
		_ = os.Remove(partial)
		return nil, fmt.Errorf("unable to download %s: server returned an empty body", url)
	}

	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return nil, fmt.Errorf("unable to finalize %s: %w", dest, err)
	}

	return &Result{Path: dest, Size: written}, nil
}

// Exists reports whether path exists, regardless of size.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NonEmpty reports whether path exists with nonzero size. A zero-byte
// file counts as absent so a previously failed download is re-fetched
// rather than served.
func NonEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to stat %s: %w", path, err)
	}
	return info.Size() > 0, nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	if progress == nil {
		return io.Copy(dst, src)
	}

	var written int64
	buf := make([]byte, 256*1024)
	last := time.Now()
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if wn != n {
				return written, io.ErrShortWrite
			}
			if time.Since(last) >= 200*time.Millisecond {
				progress(written, total)
				last = time.Now()
			}
		}
		if rerr == io.EOF {
			progress(written, total)
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
