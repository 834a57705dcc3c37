// internal/builder/models.go
package builder

import (
	"fmt"
	"html/template"
	"pagina/internal/background"
	"pagina/internal/config"
	"pagina/internal/meta"
	"pagina/internal/nav"
)

// View is one rendered page: everything the templates need to draw it.
type View struct {
	Nav     nav.State
	Meta    meta.Meta
	Empty   bool
	Content template.HTML

	// Image is the inline illustration, drawn above Content.
	Image    string
	ImageAlt string

	Background background.Frame
	// Preload lists neighbor page images the browser should fetch early.
	Preload []string

	PrevHref string
	NextHref string
}

// PageData is the struct passed to templates.
type PageData struct {
	View
	Site           config.SiteConfig
	Title          string
	Author         string
	Description    string
	ContentWarning string
}

// BodyStyle is the inline style of the page surface.
func (v View) BodyStyle() template.CSS {
	style := ""
	if c := v.Background.BaseColor; c != "" {
		style += "background-color:" + c + ";"
	}
	if img := v.Background.SurfaceImage; img != "" {
		style += fmt.Sprintf("background-image:url(%q);background-size:cover;background-position:center;background-repeat:no-repeat;", img)
	}
	return template.CSS(style)
}

// LayerStyle is the inline style of background layer i (0 or 1).
func (v View) LayerStyle(i int) template.CSS {
	if img := v.Background.Layers[i].Image; img != "" {
		return template.CSS(fmt.Sprintf("background-image:url(%q)", img))
	}
	return ""
}

// LayerClass marks the visible background layer.
func (v View) LayerClass(i int) string {
	if v.Background.Layers[i].Active {
		return "bg-layer show"
	}
	return "bg-layer"
}
