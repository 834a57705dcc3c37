// internal/builder/builder.go
package builder

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pagina/internal/background"
	"pagina/internal/config"
	"pagina/internal/pages"
	"pagina/internal/preload"
)

type BuildOptions struct {
	CleanDestination bool
	Unsafe           bool
}

// LoadPages reads the page source named in the site configuration. When there is no
// source, or it holds no pages, placeholder pages are generated instead.
func LoadPages(site config.SiteConfig, log *zap.Logger) ([]string, error) {
	list, err := pages.Load(site.Source)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	if err != nil {
		log.Info("No page source found, using placeholders", zap.String("source", site.Source), zap.Int("count", site.PlaceholderCount()))
		return pages.Placeholders(site.PlaceholderCount()), nil
	}
	if len(list) == 0 {
		log.Info("Page source is empty, using placeholders", zap.String("source", site.Source), zap.Int("count", site.PlaceholderCount()))
		return pages.Placeholders(site.PlaceholderCount()), nil
	}
	return list, nil
}

// NewBackground returns the background manager matching the site's layer setup.
func NewBackground(site config.SiteConfig) *background.Manager {
	if site.UseDualLayer() {
		return background.NewManager()
	}
	return background.NewSingleSurface()
}

// NewPageData wraps a view with site wide values for the templates.
func NewPageData(view View, site config.SiteConfig) PageData {
	return PageData{
		View:           view,
		Site:           site,
		Title:          site.Title,
		Author:         site.Author,
		Description:    site.Description,
		ContentWarning: site.ContentWarning,
	}
}

// BuildSite renders every page into its own HTML file, page 1 doubling as index.html,
// and copies static assets. It returns the number of pages written.
func BuildSite(outputDir string, site config.SiteConfig, tmpl *template.Template, opts BuildOptions, log *zap.Logger) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	if opts.CleanDestination {
		log.Debug("Cleaning destination directory", zap.String("dir", outputDir))
		entries, err := os.ReadDir(outputDir)
		if err != nil {
			return 0, err
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
				return 0, err
			}
		}
	}

	list, err := LoadPages(site, log)
	if err != nil {
		return 0, err
	}

	// One preloader for the whole build, so every broken asset is reported once.
	warmer := preload.NewFileWarmer(site.Static, log)
	defer warmer.Wait()
	preloader := preload.New(warmer)

	renderOpts := RenderOptions{
		Format: site.Format,
		Radius: site.Radius(),
		Unsafe: opts.Unsafe,
		Href:   FileHref,
	}

	total := len(list)
	if total == 0 {
		total = 1
	}
	for page := 1; page <= total; page++ {
		// Every static file is a fresh page load, with its own background layers.
		session := NewSession(list, preloader, NewBackground(site), renderOpts)
		view, err := session.Render(page)
		if err != nil {
			return 0, err
		}
		data := NewPageData(view, site)

		outputs := []string{filepath.Join(outputDir, FileHref(page))}
		if page == 1 {
			outputs = append(outputs, filepath.Join(outputDir, "index.html"))
		}
		for _, outputPath := range outputs {
			if err := renderPage(tmpl, outputPath, data); err != nil {
				return 0, fmt.Errorf("failed to render page %d: %w", page, err)
			}
		}
		log.Debug("Page written", zap.Int("page", page), zap.Strings("files", outputs))
	}

	if err := copyStaticAssets(site.Static, outputDir, site.Assets); err != nil {
		return 0, err
	}
	return total, nil
}

// copyStaticAssets copies files matching any of patterns from the static directory
// to the output directory. A missing static directory is not an error.
func copyStaticAssets(staticDir, outputDir string, patterns []string) error {
	if _, err := os.Stat(staticDir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	fsys := os.DirFS(staticDir)
	copied := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("bad asset pattern %q: %w", pattern, err)
		}
		for _, rel := range matches {
			if copied[rel] {
				continue
			}
			copied[rel] = true
			if err := copyFile(filepath.Join(staticDir, filepath.FromSlash(rel)), filepath.Join(outputDir, filepath.FromSlash(rel))); err != nil {
				return fmt.Errorf("failed to copy asset %s: %w", rel, err)
			}
		}
	}
	return nil
}

func copyFile(srcPath, destPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dst.Close())
	}()
	_, err = io.Copy(dst, src)
	return err
}

// renderPage executes the Go template and writes the output to a file.
func renderPage(tmpl *template.Template, outPath string, data PageData) (err error) {
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, outFile.Close())
	}()
	// "main" is the name of the template defined within our layout file.
	return tmpl.ExecuteTemplate(outFile, "main", data)
}

// LoadTemplates parses all necessary template files from a given theme directory.
func LoadTemplates(templateDir, templateName string) (*template.Template, error) {
	path := filepath.Join(templateDir, templateName)
	// This function assumes a specific structure for templates:
	// a layout file and partials for header/footer.
	tmpl, err := template.ParseFiles(
		filepath.Join(path, "layout.html"),
		filepath.Join(path, "header.html"),
		filepath.Join(path, "footer.html"),
	)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}
