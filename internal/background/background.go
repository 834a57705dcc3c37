// internal/background/background.go
package background

import (
	"pagina/internal/meta"
)

// Layer is one of the two stacked background planes. Only the active one is visible;
// the presentation layer fades between them.
type Layer struct {
	Name   string
	Image  string
	Active bool
}

// Frame is what the page should look like after applying a page's metadata.
type Frame struct {
	DualLayer bool
	Layers    [2]Layer
	// BaseColor is painted on the page surface below the layers.
	BaseColor string
	// SurfaceImage is only used by single surface hosts.
	SurfaceImage string
}

// Manager keeps track of which background layer is on screen across renders.
// The zero value is not usable, see NewManager and NewSingleSurface.
type Manager struct {
	dual   bool
	layers [2]Layer
	active int
	color  string
	image  string
}

// NewManager returns a cross-fading manager with layer A visible.
func NewManager() *Manager {
	return &Manager{
		dual:   true,
		layers: [2]Layer{{Name: "bgA", Active: true}, {Name: "bgB"}},
	}
}

// NewSingleSurface returns a manager for hosts without the two layers: colors and
// images go straight to the page surface and never transition.
func NewSingleSurface() *Manager {
	return &Manager{}
}

// Apply updates the layers for a newly shown page and returns the result.
func (m *Manager) Apply(md meta.Meta) Frame {
	if md.Bg != "" {
		m.color = md.Bg
	}
	if !m.dual {
		m.image = md.BgImage
		return m.frame()
	}

	if md.BgImage == "" {
		m.layers[0].Image = ""
		m.layers[1].Image = ""
		return m.frame()
	}

	next := 1 - m.active
	m.layers[next].Image = md.BgImage
	m.layers[next].Active = true
	m.layers[m.active].Active = false
	m.active = next
	return m.frame()
}

// Current returns the last applied state without changing it.
func (m *Manager) Current() Frame {
	return m.frame()
}

func (m *Manager) frame() Frame {
	f := Frame{DualLayer: m.dual, BaseColor: m.color}
	if !m.dual {
		f.SurfaceImage = m.image
		return f
	}
	f.Layers = m.layers
	return f
}
