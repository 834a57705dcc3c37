// internal/scaffold/scaffold.go
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// CreateNewSite lays out a new site in a directory under root named after title.
// It refuses to touch a directory that already exists and returns the new path.
func CreateNewSite(root, title string, log *zap.Logger) (string, error) {
	name := slug.Make(title)
	if name == "" {
		return "", fmt.Errorf("cannot derive a directory name from %q", title)
	}
	siteDir := filepath.Join(root, name)
	if _, err := os.Stat(siteDir); err == nil {
		return "", fmt.Errorf("directory %s already exists", siteDir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	log.Info("Scaffolding new site", zap.String("dir", siteDir))
	mkdir := func(path string) error { return os.MkdirAll(filepath.Join(siteDir, path), 0755) }
	writeFile := func(path, content string) error {
		return os.WriteFile(filepath.Join(siteDir, path), []byte(content), 0644)
	}
	dirs := []string{"static/css", "static/images", "templates/simple"}
	for _, dir := range dirs {
		if err := mkdir(dir); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"site.yaml":                    strings.ReplaceAll(siteYamlContent, "{{TITLE}}", quoteYAML(title)),
		"pages.txt":                    pagesTxtContent,
		"static/css/style.css":         staticCssContent,
		"templates/simple/layout.html": templateLayoutHtmlContent,
		"templates/simple/header.html": templateHeaderHtmlContent,
		"templates/simple/footer.html": templateFooterHtmlContent,
	}
	for path, content := range files {
		if err := writeFile(path, content); err != nil {
			return "", fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}
	log.Info("Site scaffolded, next run 'pagina build' or 'pagina serve' inside it", zap.String("dir", siteDir))
	return siteDir, nil
}

func quoteYAML(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// Constants for default file contents
const siteYamlContent = `title: {{TITLE}}
author: Your Name
description: A paged story powered by pagina.
template: simple
source: pages.txt
static: static
format: text
preload_radius: 2
dual_layer: true
content_warning: ""
logging:
  console:
    level: normal
`

const pagesTxtContent = `[page=1]
[bg=#1b1b24]
[hl=door:#e0b040|weight=700]
// Directives go first, one per line. Comment lines like this one are never shown.
You stand in front of a door.

Blank lines separate paragraphs.
*
[page=2]
[bg=#0d1a12]
[hl=garden:#7fd07f|underline;light:#fff|bg=#333]
Behind the door there is a garden, and a light in the distance.
*
[page=3]
[bg=#000000]
The end. The arrow on the right takes you back to the beginning.
`

const staticCssContent = `html, body { margin: 0; min-height: 100%; }
body {
  font-family: Georgia, serif;
  color: #eee;
  background: #111;
  line-height: 1.7;
  transition: background-color 0.6s ease;
}
.bg-layer {
  position: fixed;
  inset: 0;
  background-size: cover;
  background-position: center;
  background-repeat: no-repeat;
  opacity: 0;
  transition: opacity 0.8s ease;
  z-index: -1;
}
.bg-layer.show { opacity: 1; }
header { display: flex; justify-content: space-between; padding: 1em 2em; font-size: 0.9em; color: #aaa; font-style: italic; }
main { max-width: 700px; margin: 2em auto; padding: 1.5em 2em; background: rgba(0, 0, 0, 0.55); border-radius: 6px; }
.page-image { display: block; max-width: 100%; margin: 0 auto 1.5em; }
footer nav { display: flex; justify-content: center; align-items: center; gap: 2em; margin: 2em 0; }
footer nav a { color: #ddd; text-decoration: none; font-size: 1.6em; }
.page-number { color: #999; }
.cw { position: fixed; inset: 0; display: flex; align-items: center; justify-content: center; background: rgba(0, 0, 0, 0.92); z-index: 10; }
.cw[hidden] { display: none; }
.cw-box { max-width: 480px; padding: 2em; text-align: center; }
.cw-box button { font-size: 1em; padding: 0.5em 1.5em; }
`

const templateLayoutHtmlContent = `{{ define "main" }}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  {{ if .Description }}<meta name="description" content="{{ .Description }}">{{ end }}
  <link rel="stylesheet" href="css/style.css">
  {{ range .Preload }}<link rel="preload" as="image" href="{{ . }}">
  {{ end }}
</head>
<body style="{{ .BodyStyle }}">
  {{ if .Background.DualLayer }}
  <div id="bgA" class="{{ .LayerClass 0 }}" style="{{ .LayerStyle 0 }}"></div>
  <div id="bgB" class="{{ .LayerClass 1 }}" style="{{ .LayerStyle 1 }}"></div>
  {{ end }}
  {{ template "header" . }}
  <main id="pageContent">
    {{ if .Image }}<img class="page-image" src="{{ .Image }}" alt="{{ .ImageAlt }}">{{ end }}
    {{ .Content }}
  </main>
  {{ template "footer" . }}
</body>
</html>
{{ end }}`

const templateHeaderHtmlContent = `{{ define "header" }}
{{ if .ContentWarning }}
<div id="cw" class="cw" hidden>
  <div class="cw-box">
    <p>{{ .ContentWarning }}</p>
    <button id="cwContinue" type="button">Continue</button>
  </div>
</div>
<script>
  (function () {
    var cw = document.getElementById('cw');
    var key = 'cw-dismissed-v1';
    if (localStorage.getItem(key) === '1') return;
    cw.removeAttribute('hidden');
    document.getElementById('cwContinue').addEventListener('click', function () {
      localStorage.setItem(key, '1');
      cw.setAttribute('hidden', '');
    });
  })();
</script>
{{ end }}
<header>
  <div class="site-name">{{ .Site.Title }}</div>
  {{ if .Author }}<div class="story-author">{{ .Author }}</div>{{ end }}
</header>
{{ end }}`

const templateFooterHtmlContent = `{{ define "footer" }}
<footer>
  <nav>
    <a id="backLink" href="{{ .PrevHref }}">&larr;</a>
    <span class="page-number">{{ .Nav.Current }} / {{ .Nav.Total }}</span>
    <a id="nextLink" href="{{ .NextHref }}">&rarr;</a>
  </nav>
</footer>
<script>
  document.addEventListener('keydown', function (ev) {
    var cw = document.getElementById('cw');
    if (cw && !cw.hasAttribute('hidden')) return;
    {{ if .Nav.HasPrev }}if (ev.key === 'ArrowLeft') { ev.preventDefault(); window.location.href = {{ .PrevHref }}; }{{ end }}
    {{ if .Nav.HasNext }}if (ev.key === 'ArrowRight') { ev.preventDefault(); window.location.href = {{ .NextHref }}; }{{ end }}
  });
</script>
{{ end }}`
