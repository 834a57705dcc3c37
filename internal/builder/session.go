// internal/builder/session.go
package builder

import (
	"fmt"
	"html/template"
	"sync"

	"pagina/internal/background"
	"pagina/internal/config"
	"pagina/internal/highlight"
	"pagina/internal/meta"
	"pagina/internal/nav"
	"pagina/internal/preload"
)

const emptyHint = "Add your content to the page source (each * on its own line separates pages)."

// RenderOptions controls how a Session turns pages into views.
type RenderOptions struct {
	Format string
	Radius int
	Unsafe bool
	// Href returns the link to a page number.
	Href func(page int) string
}

// Session renders pages of one document. It owns the state that must survive
// from one navigation to the next: the preloader's memory of requested assets and
// the background layer currently on screen.
type Session struct {
	mu        sync.Mutex
	pages     []string
	preloader *preload.Preloader
	bg        *background.Manager
	opts      RenderOptions
}

// NewSession creates a session over pages. Both state objects are required.
func NewSession(pages []string, preloader *preload.Preloader, bg *background.Manager, opts RenderOptions) *Session {
	if opts.Href == nil {
		opts.Href = QueryHref
	}
	if opts.Format == "" {
		opts.Format = config.FormatText
	}
	return &Session{pages: pages, preloader: preloader, bg: bg, opts: opts}
}

// QueryHref links to a page through the p query parameter.
func QueryHref(page int) string {
	return fmt.Sprintf("index.html?p=%d", page)
}

// FileHref links to the static file written for a page.
func FileHref(page int) string {
	return fmt.Sprintf("%d.html", page)
}

// Pages returns the current document.
func (s *Session) Pages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// Render produces the view for the requested page number, clamped into range.
// Neighbor assets are handed to the preloader only once the page itself is done.
func (s *Session) Render(requested int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := nav.Resolve(requested, len(s.pages))
	view := View{
		Nav:      state,
		PrevHref: s.opts.Href(state.Prev()),
		NextHref: s.opts.Href(state.Next()),
	}
	if len(s.pages) == 0 {
		view.Empty = true
		view.Content = template.HTML("<p>" + template.HTMLEscapeString(emptyHint) + "</p>")
		view.Background = s.bg.Current()
		return view, nil
	}

	text, m := meta.Parse(s.pages[state.Index()])
	content, err := renderBody(text, bodyContext{
		format: s.opts.Format,
		unsafe: s.opts.Unsafe,
		href:   s.opts.Href,
		total:  state.Total,
		rules:  highlight.ParseRules(m.Highlight),
	})
	if err != nil {
		return View{}, fmt.Errorf("failed to render page %d: %w", state.Current, err)
	}

	view.Meta = m
	view.Content = template.HTML(content)
	view.Image = m.Img
	view.ImageAlt = m.ImgAlt
	view.Background = s.bg.Apply(m)

	view.Preload = preload.NeighborAssets(s.pages, state.Index(), s.opts.Radius)
	s.preloader.PreloadNeighbors(s.pages, state.Index(), s.opts.Radius)
	return view, nil
}
