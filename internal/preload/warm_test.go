package preload

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFileWarmer(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "ok.png"), pngHeader, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "notes.txt"), []byte("hello"), 0644))

	core, logs := observer.New(zapcore.DebugLevel)
	w := NewFileWarmer(root, zap.New(core))

	w.Hint("images/ok.png?v=2")
	w.Hint("images/notes.txt")
	w.Hint("images/missing.png")
	w.Hint("https://example.com/remote.png")
	w.Hint("data:image/png;base64,AAAA")
	w.Wait()

	assert.Equal(t, 1, logs.FilterMessage("Asset warmed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Asset does not look like an image").Len())
	assert.Equal(t, 1, logs.FilterMessage("Asset not found").Len())
	assert.Equal(t, 3, logs.Len())
}

func TestFileWarmerStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	core, logs := observer.New(zapcore.DebugLevel)
	w := NewFileWarmer(filepath.Join(root, "static"), zap.New(core))

	w.Hint("../../etc/passwd")
	w.Wait()

	entries := logs.FilterMessage("Asset not found").All()
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(root, "static", "etc", "passwd"), entries[0].ContextMap()["path"])
}

func TestHTTPWarmer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	w := NewHTTPWarmer(zap.New(core))
	w.Client = srv.Client()

	w.Hint(srv.URL + "/a.png")
	w.Hint(srv.URL + "/missing.png")
	w.Hint("images/local.png")
	w.Wait()

	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, 1, logs.FilterMessage("Asset warmed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Unable to warm asset").Len())
}

func TestHTTPWarmerSwallowsErrors(t *testing.T) {
	w := NewHTTPWarmer(zap.NewNop())
	assert.NotPanics(t, func() {
		w.Hint("http://127.0.0.1:1/unreachable.png")
		w.Wait()
	})
}
