// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"pagina/internal/config"
	"pagina/internal/highlight"
)

var (
	htmlSanitizer = newSanitizer()
	// raw HTML in the source is passed through the sanitizer fragment by fragment,
	// highlight spans are emitted by the text highlighter and never sanitized
	markdownRenderer = newMarkdown(
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&sanitizedRawHTML{policy: htmlSanitizer}, 100)),
		),
	)
	unsafeMarkdownRenderer = newMarkdown(
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
)

func newMarkdown(opts ...goldmark.Option) goldmark.Markdown {
	opts = append([]goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(newPageLinkTransformer(), 100),
				util.Prioritized(newTextHighlighter(), 200),
			),
		),
	}, opts...)
	return goldmark.New(opts...)
}

// newSanitizer extends the UGC policy with the highlight spans an author may write
// by hand. Style values are accepted as written.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^hl$`)).OnElements("span")
	p.AllowStyles("color", "font-size", "font-weight", "text-decoration", "background").
		MatchingHandler(func(string) bool { return true }).
		OnElements("span")
	return p
}

type bodyContext struct {
	format string
	unsafe bool
	href   func(int) string
	total  int
	rules  []highlight.Rule
}

// renderBody turns page text into HTML. Plain text becomes one <p> per blank-line
// separated paragraph; markdown goes through goldmark. Sanitizing happens before
// highlighting, so highlight markup reaches the page exactly as the rules built it.
func renderBody(text string, bc bodyContext) (string, error) {
	if bc.format == config.FormatMarkdown {
		md := markdownRenderer
		if bc.unsafe {
			md = unsafeMarkdownRenderer
		}
		pc := parser.NewContext()
		pc.Set(hrefKey, pageLinker{href: bc.href, total: bc.total})
		pc.Set(rulesKey, bc.rules)
		var buf bytes.Buffer
		if err := md.Convert([]byte(text), &buf, parser.WithContext(pc)); err != nil {
			return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
		}
		return buf.String(), nil
	}

	if !bc.unsafe {
		text = htmlSanitizer.Sanitize(text)
	}
	var sb strings.Builder
	for _, par := range highlight.Paragraphs(highlight.Apply(text, bc.rules)) {
		sb.WriteString("<p>")
		sb.WriteString(par)
		sb.WriteString("</p>")
	}
	return sb.String(), nil
}
