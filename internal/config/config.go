// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Formats understood by the page body renderer.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// SiteConfig holds the configuration from the site.yaml file.
// The `yaml` tags are used by the parser to map file keys to struct fields.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	BaseURL     string `yaml:"baseurl"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`

	// Source is the text file holding every page, separated by '*' lines.
	Source string `yaml:"source"`
	// Static is copied into the output directory, and asset URLs are resolved against it.
	Static string `yaml:"static"`
	// Assets are doublestar patterns, relative to Static, selecting files to copy.
	Assets []string `yaml:"assets"`
	// Format is either "text" (blank lines separate paragraphs) or "markdown".
	Format string `yaml:"format"`
	// PreloadRadius is how many neighbor pages on each side get their images preloaded.
	PreloadRadius *int `yaml:"preload_radius"`
	// Placeholders is the number of stand-in pages generated when there is no content.
	Placeholders *int `yaml:"placeholders"`
	// DualLayer enables the cross-fading background layers.
	DualLayer      *bool  `yaml:"dual_layer"`
	ContentWarning string `yaml:"content_warning"`

	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when site.yaml leaves a field out.
func Default() SiteConfig {
	radius, placeholders, dual := 2, 100, true
	return SiteConfig{
		Title:         "pagina",
		Template:      "simple",
		Source:        "pages.txt",
		Static:        "static",
		Assets:        []string{"**/*.{css,js,txt,svg,png,jpg,jpeg,gif,webp,avif,woff,woff2}"},
		Format:        FormatText,
		PreloadRadius: &radius,
		Placeholders:  &placeholders,
		DualLayer:     &dual,
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
		},
	}
}

// LoadSiteConfig reads site.yaml and fills whatever it leaves out from Default.
// Unknown keys are an error, so typos do not go unnoticed.
func LoadSiteConfig(path string) (SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	cfg, err := parseSiteConfig(data)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func parseSiteConfig(data []byte) (SiteConfig, error) {
	cfg := SiteConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return SiteConfig{}, err
	}
	cfg.applyDefaults(Default())
	if err := cfg.validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

func (c *SiteConfig) applyDefaults(def SiteConfig) {
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Template == "" {
		c.Template = def.Template
	}
	if c.Source == "" {
		c.Source = def.Source
	}
	if c.Static == "" {
		c.Static = def.Static
	}
	if len(c.Assets) == 0 {
		c.Assets = def.Assets
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.PreloadRadius == nil {
		c.PreloadRadius = def.PreloadRadius
	}
	if c.Placeholders == nil {
		c.Placeholders = def.Placeholders
	}
	if c.DualLayer == nil {
		c.DualLayer = def.DualLayer
	}
	if c.Logging.Console.Level == "" {
		c.Logging.Console.Level = def.Logging.Console.Level
	}
}

func (c *SiteConfig) validate() error {
	if c.Format != FormatText && c.Format != FormatMarkdown {
		return fmt.Errorf("unknown format %q, expected %q or %q", c.Format, FormatText, FormatMarkdown)
	}
	if *c.PreloadRadius < 0 {
		return fmt.Errorf("preload_radius must not be negative, got %d", *c.PreloadRadius)
	}
	if *c.Placeholders < 0 {
		return fmt.Errorf("placeholders must not be negative, got %d", *c.Placeholders)
	}
	return c.Logging.validate()
}

// Radius, PlaceholderCount and UseDualLayer dereference the optional fields of a
// loaded configuration.
func (c SiteConfig) Radius() int { return *c.PreloadRadius }

func (c SiteConfig) PlaceholderCount() int { return *c.Placeholders }

func (c SiteConfig) UseDualLayer() bool { return *c.DualLayer }
