// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pagina/internal/background"
	"pagina/internal/builder"
	"pagina/internal/config"
	"pagina/internal/nav"
	"pagina/internal/pages"
	"pagina/internal/preload"
)

// Options configures the development server.
type Options struct {
	Port int
	// ConfigFile is re-read on every rebuild when set.
	ConfigFile  string
	TemplateDir string
	Build       builder.BuildOptions
}

type server struct {
	mu      sync.RWMutex
	site    config.SiteConfig
	tmpl    *template.Template
	session *builder.Session

	// Survive reloads, so the reader's background and warmed assets carry over.
	preloader *preload.Preloader
	bg        *background.Manager

	opts Options
	hub  *Hub
	log  *zap.Logger
}

func newServer(site config.SiteConfig, opts Options, log *zap.Logger) (*server, error) {
	s := &server{
		site: site,
		preloader: preload.New(preload.Multi{
			preload.NewFileWarmer(site.Static, log),
			preload.NewHTTPWarmer(log),
		}),
		bg:   builder.NewBackground(site),
		opts: opts,
		hub:  newHub(log),
		log:  log,
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Run serves the site on opts.Port, rendering pages on request and reloading the
// browser whenever content, templates, static files or the configuration change.
// It returns when ctx is done.
func Run(ctx context.Context, site config.SiteConfig, opts Options, log *zap.Logger) error {
	s, err := newServer(site, opts, log)
	if err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.watchPaths(watcher); err != nil {
		return err
	}
	go s.watchForChanges(ctx, watcher)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Serving site", zap.String("url", "http://localhost"+addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// reload re-reads configuration, templates and pages and swaps them in at once.
func (s *server) reload() error {
	s.mu.RLock()
	site := s.site
	s.mu.RUnlock()

	if s.opts.ConfigFile != "" {
		cfg, err := config.LoadSiteConfig(s.opts.ConfigFile)
		switch {
		case err == nil:
			site = cfg
		case !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}

	tmpl, err := builder.LoadTemplates(s.opts.TemplateDir, site.Template)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	list, err := builder.LoadPages(site, s.log)
	if err != nil {
		return err
	}
	session := builder.NewSession(list, s.preloader, s.bg, builder.RenderOptions{
		Format: site.Format,
		Radius: site.Radius(),
		Unsafe: s.opts.Build.Unsafe,
		Href:   builder.QueryHref,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.site, s.tmpl, s.session = site, tmpl, session
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.hub.serveWs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache, injectLiveReload)
		r.Get("/", s.pageHandler)
		r.Get("/index.html", s.pageHandler)
		r.Handle("/*", http.FileServer(http.Dir(s.site.Static)))
	})
	return r
}

// pageHandler renders the page selected by the p query parameter, or downloads the
// tagged export when export=tags is given.
func (s *server) pageHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := r.URL.Query()
	if q.Get("export") == "tags" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="pages.txt"`)
		_, _ = io.WriteString(w, pages.ExportWithTags(s.session.Pages()))
		s.log.Info("Exported pages with tags", zap.Int("pages", len(s.session.Pages())))
		return
	}

	view, err := s.session.Render(nav.ParseRequested(q.Get("p")))
	if err != nil {
		s.log.Error("Unable to render page", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "main", builder.NewPageData(view, s.site)); err != nil {
		s.log.Error("Unable to execute template", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *server) watchPaths(watcher *fsnotify.Watcher) error {
	watchedDirs := make(map[string]bool)
	addWatch := func(dir string) {
		dir = filepath.Clean(dir)
		if watchedDirs[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			s.log.Warn("Unable to watch directory", zap.String("dir", dir), zap.Error(err))
			return
		}
		s.log.Debug("Watching directory", zap.String("dir", dir))
		watchedDirs[dir] = true
	}

	pathsToWatch := []string{s.site.Source, s.site.Static, s.opts.TemplateDir}
	if s.opts.ConfigFile != "" {
		pathsToWatch = append(pathsToWatch, s.opts.ConfigFile)
	}
	for _, path := range pathsToWatch {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			// the source may not exist yet; its directory is still worth watching
			addWatch(filepath.Dir(path))
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}

		if info.IsDir() {
			if err := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					addWatch(walkPath)
				}
				return nil
			}); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", path, err)
			}
		} else {
			// editors replace files on save, so the directory is watched instead
			addWatch(filepath.Dir(path))
		}
	}
	return nil
}

func (s *server) watchForChanges(ctx context.Context, watcher *fsnotify.Watcher) {
	var lastBuildTime time.Time
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// Create, remove and rename matter too, editors save in many ways.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(lastBuildTime) <= debounceDuration {
				continue
			}
			time.Sleep(100 * time.Millisecond)

			s.log.Info("Change detected, reloading", zap.String("file", event.Name))
			if err := s.reload(); err != nil {
				s.log.Error("Error reloading site", zap.Error(err))
			} else {
				s.log.Debug("Site reloaded, notifying clients", zap.Int("clients", s.hub.count()))
				s.hub.broadcastMessage([]byte("reload"))
			}
			lastBuildTime = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("Watcher error", zap.Error(err))
		}
	}
}

// injectLiveReload buffers HTML responses and adds the live reload client before
// </body>. Anything else is passed through untouched.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/") && !strings.HasSuffix(r.URL.Path, ".html") {
			next.ServeHTTP(w, r)
			return
		}

		rec := &bufferedResponse{header: w.Header(), status: http.StatusOK}
		next.ServeHTTP(rec, r)

		body := rec.body.Bytes()
		if rec.status == http.StatusOK && strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(rec.status)
		_, _ = w.Write(body)
	})
}

// bufferedResponse holds a response body until the live reload client is added.
// Headers go straight to the real writer.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedResponse) WriteHeader(status int) { b.status = status }

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'pagina serve'.");
    };
  })();
</script>
`
