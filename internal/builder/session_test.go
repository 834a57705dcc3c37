package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagina/internal/background"
	"pagina/internal/config"
	"pagina/internal/preload"
)

type hintRecorder struct {
	urls []string
}

func (r *hintRecorder) Hint(url string) { r.urls = append(r.urls, url) }

var samplePages = []string{
	"[bg=#112233]\n[hl=cat:#f00]\n// author note\nthe cat\n\nsat",
	"[bg-image=url('b.jpg')]\nsecond",
	"[img=c.png]\n[img-alt=a cat]\nthird",
}

func newTestSession(pages []string, opts RenderOptions) (*Session, *hintRecorder) {
	rec := &hintRecorder{}
	return NewSession(pages, preload.New(rec), background.NewManager(), opts), rec
}

func TestSessionRender(t *testing.T) {
	s, rec := newTestSession(samplePages, RenderOptions{Radius: 2, Unsafe: true})

	view, err := s.Render(1)
	require.NoError(t, err)

	assert.Equal(t, 1, view.Nav.Current)
	assert.Equal(t, 3, view.Nav.Total)
	assert.Equal(t, "index.html?p=3", view.PrevHref)
	assert.Equal(t, "index.html?p=2", view.NextHref)
	assert.Equal(t, `<p>the <span class="hl" style="color:#f00">cat</span></p><p>sat</p>`, string(view.Content))
	assert.Equal(t, "#112233", view.Background.BaseColor)
	assert.Equal(t, []string{"b.jpg", "c.png"}, view.Preload)
	assert.Equal(t, []string{"b.jpg", "c.png"}, rec.urls)
	assert.False(t, view.Empty)
}

func TestSessionRenderClampsAndShowsImage(t *testing.T) {
	s, _ := newTestSession(samplePages, RenderOptions{Radius: 1, Unsafe: true})

	view, err := s.Render(99)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Nav.Current)
	assert.Equal(t, "index.html?p=1", view.NextHref)
	assert.Equal(t, "c.png", view.Image)
	assert.Equal(t, "a cat", view.ImageAlt)
	assert.Equal(t, "<p>third</p>", string(view.Content))
	assert.Equal(t, []string{"b.jpg"}, view.Preload)
}

func TestSessionKeepsBackgroundAcrossRenders(t *testing.T) {
	s, _ := newTestSession(samplePages, RenderOptions{Unsafe: true})

	view, err := s.Render(2)
	require.NoError(t, err)
	assert.Equal(t, background.Layer{Name: "bgB", Image: "b.jpg", Active: true}, view.Background.Layers[1])

	view, err = s.Render(1)
	require.NoError(t, err)
	assert.Empty(t, view.Background.Layers[0].Image)
	assert.Empty(t, view.Background.Layers[1].Image)
	assert.True(t, view.Background.Layers[1].Active)
	assert.Equal(t, "#112233", view.Background.BaseColor)
}

func TestSessionPreloadsEachAssetOnce(t *testing.T) {
	s, rec := newTestSession(samplePages, RenderOptions{Radius: 2})
	for _, p := range []int{1, 2, 3, 1} {
		_, err := s.Render(p)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"b.jpg", "c.png"}, rec.urls)
}

func TestSessionEmptyDocument(t *testing.T) {
	s, rec := newTestSession(nil, RenderOptions{})

	view, err := s.Render(5)
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Equal(t, 1, view.Nav.Current)
	assert.Equal(t, 1, view.Nav.Total)
	assert.Contains(t, string(view.Content), "each * on its own line separates pages")
	assert.Empty(t, rec.urls)
}

func TestSessionsShareInjectedState(t *testing.T) {
	rec := &hintRecorder{}
	preloader := preload.New(rec)
	bg := background.NewManager()

	first := NewSession(samplePages, preloader, bg, RenderOptions{Radius: 1})
	_, err := first.Render(1)
	require.NoError(t, err)

	// a reloaded document keeps the layer and preload state of the previous one
	second := NewSession([]string{"[bg-image=b.jpg]\nfresh", "[bg-image=d.jpg]\nnext"}, preloader, bg, RenderOptions{Radius: 1})
	assert.Equal(t, []string{"[bg-image=b.jpg]\nfresh", "[bg-image=d.jpg]\nnext"}, second.Pages())
	view, err := second.Render(1)
	require.NoError(t, err)
	assert.Equal(t, "bgB", activeName(view))
	assert.Equal(t, []string{"b.jpg", "d.jpg"}, rec.urls)
}

func activeName(v View) string {
	for _, l := range v.Background.Layers {
		if l.Active {
			return l.Name
		}
	}
	return ""
}

func TestSessionSanitizes(t *testing.T) {
	s, _ := newTestSession([]string{"[hl=cat:red|underline]\n<script>alert(1)</script>a cat <b onclick=\"x()\">bold</b>"}, RenderOptions{})

	view, err := s.Render(1)
	require.NoError(t, err)
	content := string(view.Content)
	assert.NotContains(t, content, "<script>")
	assert.NotContains(t, content, "onclick")
	assert.Contains(t, content, `<span class="hl" style="color:red;text-decoration:underline">cat</span>`)
	assert.Contains(t, content, "<b>bold</b>")
}

func TestSessionHighlightMarkupIsVerbatim(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "value not validated",
			page: "[hl=cat:red !important]\nthe cat",
			want: `<p>the <span class="hl" style="color:red !important">cat</span></p>`,
		},
		{
			name: "later rule matches earlier markup",
			page: "[hl=cat:red;red:blue]\nthe cat",
			want: `<p>the <span class="hl" style="color:<span class="hl" style="color:blue">red</span>">cat</span></p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, unsafe := range []bool{false, true} {
				s, _ := newTestSession([]string{tt.page}, RenderOptions{Unsafe: unsafe})
				view, err := s.Render(1)
				require.NoError(t, err)
				assert.Equal(t, tt.want, string(view.Content), "unsafe=%v", unsafe)
			}
		})
	}
}

func TestSessionMarkdownHighlightsTextOnly(t *testing.T) {
	page := "[hl=cat:red]\n![a cat](cat.png) and [cat](cat.html) `cat` the cat <b onclick=\"x()\">bold</b>\n\n<script>alert(1)</script>"
	s, _ := newTestSession([]string{page}, RenderOptions{Format: config.FormatMarkdown})

	view, err := s.Render(1)
	require.NoError(t, err)
	content := string(view.Content)
	assert.Contains(t, content, `<img src="cat.png" alt="a cat">`)
	assert.Contains(t, content, `<a href="cat.html"><span class="hl" style="color:red">cat</span></a>`)
	assert.Contains(t, content, `<code>cat</code>`)
	assert.Contains(t, content, ` the <span class="hl" style="color:red">cat</span> `)
	assert.Contains(t, content, "bold")
	assert.NotContains(t, content, "onclick")
	assert.NotContains(t, content, "<script>")
}

func TestSessionMarkdown(t *testing.T) {
	pages := []string{
		"[hl=cat:red]\n# Title\n\nSee [the cat](?p=3) or [far](index.html?p=99) or [site](https://example.com/?p=2).",
		"two",
		"three",
	}
	s, _ := newTestSession(pages, RenderOptions{Format: config.FormatMarkdown, Unsafe: true, Href: FileHref})

	view, err := s.Render(1)
	require.NoError(t, err)
	content := string(view.Content)
	assert.Contains(t, content, "<h1>Title</h1>")
	assert.Contains(t, content, `<a href="3.html">the <span class="hl" style="color:red">cat</span></a>`)
	assert.Contains(t, content, `<a href="3.html">far</a>`)
	assert.Contains(t, content, `href="https://example.com/?p=2"`)
	assert.Equal(t, "3.html", view.PrevHref)
}

func TestPageTarget(t *testing.T) {
	tests := []struct {
		dest string
		page int
		ok   bool
	}{
		{dest: "?p=4", page: 4, ok: true},
		{dest: "index.html?p=2", page: 2, ok: true},
		{dest: "?p=zero", page: 1, ok: true},
		{dest: "other.html?p=2", ok: false},
		{dest: "https://example.com/?p=2", ok: false},
		{dest: "#top", ok: false},
	}
	for _, tt := range tests {
		page, ok := pageTarget(tt.dest)
		assert.Equal(t, tt.ok, ok, tt.dest)
		if tt.ok {
			assert.Equal(t, tt.page, page, tt.dest)
		}
	}
}
