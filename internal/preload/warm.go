// internal/preload/warm.go
package preload

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// FileWarmer reads local assets in the background so the OS cache is hot when the
// browser asks for them, and reports the ones that are missing or are not images.
type FileWarmer struct {
	Root string
	Log  *zap.Logger

	wg sync.WaitGroup
}

// NewFileWarmer returns a warmer resolving relative asset URLs against root.
func NewFileWarmer(root string, log *zap.Logger) *FileWarmer {
	return &FileWarmer{Root: root, Log: log}
}

func (w *FileWarmer) Hint(raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return
	}
	name := filepath.Join(w.Root, filepath.FromSlash(path.Clean("/"+u.Path)))

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		f, err := os.Open(name)
		if err != nil {
			w.Log.Warn("Asset not found", zap.String("url", raw), zap.String("path", name))
			return
		}
		defer f.Close()

		// 262 bytes is all filetype needs to recognise any supported format
		head := make([]byte, 262)
		n, _ := io.ReadFull(f, head)
		if !filetype.IsImage(head[:n]) {
			w.Log.Warn("Asset does not look like an image", zap.String("url", raw), zap.String("path", name))
			return
		}
		w.Log.Debug("Asset warmed", zap.String("url", raw))
	}()
}

// Wait blocks until all started warm-ups are done.
func (w *FileWarmer) Wait() {
	w.wg.Wait()
}

// HTTPWarmer fetches remote assets in the background.
type HTTPWarmer struct {
	Client  *http.Client
	Timeout time.Duration
	Log     *zap.Logger

	wg sync.WaitGroup
}

// NewHTTPWarmer returns a warmer for absolute http(s) URLs.
func NewHTTPWarmer(log *zap.Logger) *HTTPWarmer {
	return &HTTPWarmer{Client: http.DefaultClient, Timeout: 10 * time.Second, Log: log}
}

func (w *HTTPWarmer) Hint(raw string) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
		if err != nil {
			w.Log.Debug("Unable to warm asset", zap.String("url", raw), zap.Error(err))
			return
		}
		resp, err := w.Client.Do(req)
		if err != nil {
			w.Log.Debug("Unable to warm asset", zap.String("url", raw), zap.Error(err))
			return
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			w.Log.Debug("Unable to warm asset", zap.String("url", raw), zap.Int("status", resp.StatusCode))
			return
		}
		w.Log.Debug("Asset warmed", zap.String("url", raw))
	}()
}

// Wait blocks until all started fetches are done.
func (w *HTTPWarmer) Wait() {
	w.wg.Wait()
}
