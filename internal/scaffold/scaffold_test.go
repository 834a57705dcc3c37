package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagina/internal/builder"
	"pagina/internal/config"
)

func TestCreateNewSite(t *testing.T) {
	root := t.TempDir()

	dir, err := CreateNewSite(root, `The "Old" House`, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "the-old-house"), dir)

	for _, f := range []string{"site.yaml", "pages.txt", "static/css/style.css", "templates/simple/layout.html", "templates/simple/header.html", "templates/simple/footer.html"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	assert.DirExists(t, filepath.Join(dir, "static", "images"))

	cfg, err := config.LoadSiteConfig(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, `The "Old" House`, cfg.Title)
}

func TestCreateNewSiteRefusesExisting(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "taken"), 0755))

	_, err := CreateNewSite(root, "Taken", zap.NewNop())
	assert.Error(t, err)

	_, err = CreateNewSite(root, "!!!", zap.NewNop())
	assert.Error(t, err)
}

func TestScaffoldedSiteBuilds(t *testing.T) {
	root := t.TempDir()
	dir, err := CreateNewSite(root, "Demo", zap.NewNop())
	require.NoError(t, err)

	cfg, err := config.LoadSiteConfig(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	cfg.Source = filepath.Join(dir, cfg.Source)
	cfg.Static = filepath.Join(dir, cfg.Static)
	cfg.ContentWarning = "Mild peril."

	tmpl, err := builder.LoadTemplates(filepath.Join(dir, "templates"), cfg.Template)
	require.NoError(t, err)

	out := filepath.Join(dir, "public")
	count, err := builder.BuildSite(out, cfg, tmpl, builder.BuildOptions{CleanDestination: true}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	data, err := os.ReadFile(filepath.Join(out, "1.html"))
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, `<a id="backLink" href="3.html">`)
	assert.Contains(t, page, `<a id="nextLink" href="2.html">`)
	assert.Contains(t, page, `id="bgA"`)
	assert.Contains(t, page, "Mild peril.")
	assert.Contains(t, page, `class="hl"`)
	assert.NotContains(t, page, "Directives go first")
	assert.NotContains(t, page, "ArrowLeft")
	assert.Contains(t, page, "ArrowRight")

	assert.FileExists(t, filepath.Join(out, "css", "style.css"))
}
