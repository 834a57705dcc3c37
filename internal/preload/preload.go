// internal/preload/preload.go
package preload

import (
	"pagina/internal/meta"
)

// DefaultRadius is how many pages on each side of the current one get their assets warmed.
const DefaultRadius = 2

// Hinter starts warming a single asset. Implementations must not block on I/O and
// must swallow their own failures.
type Hinter interface {
	Hint(url string)
}

// HinterFunc adapts an ordinary function to the Hinter interface.
type HinterFunc func(url string)

func (f HinterFunc) Hint(url string) { f(url) }

// Multi forwards every hint to all of its members.
type Multi []Hinter

func (m Multi) Hint(url string) {
	for _, h := range m {
		h.Hint(url)
	}
}

// Preloader remembers which assets were already requested so that each one is warmed
// at most once per session.
type Preloader struct {
	seen   map[string]struct{}
	hinter Hinter
}

// New creates a preloader delivering hints to h. A nil h only records URLs.
func New(h Hinter) *Preloader {
	if h == nil {
		h = HinterFunc(func(string) {})
	}
	return &Preloader{seen: make(map[string]struct{}), hinter: h}
}

// Preload asks for url to be warmed. It reports false when url is empty or was
// already requested.
func (p *Preloader) Preload(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := p.seen[url]; ok {
		return false
	}
	p.seen[url] = struct{}{}
	p.hinter.Hint(url)
	return true
}

// PreloadNeighbors warms the background and inline images of pages within radius
// steps of current. It should run after the current page has been rendered.
func (p *Preloader) PreloadNeighbors(pages []string, current, radius int) {
	for _, url := range NeighborAssets(pages, current, radius) {
		p.Preload(url)
	}
}

// NeighborAssets lists, without side effects, the images PreloadNeighbors would warm.
// Nearer pages come first, the previous page before the next one.
func NeighborAssets(pages []string, current, radius int) []string {
	var (
		urls []string
		seen = make(map[string]bool)
	)
	add := func(url string) {
		if url != "" && !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	for d := 1; d <= radius; d++ {
		for _, sign := range []int{-1, 1} {
			i := current + d*sign
			if i < 0 || i >= len(pages) {
				continue
			}
			_, m := meta.Parse(pages[i])
			add(m.BgImage)
			add(m.Img)
		}
	}
	return urls
}
