// internal/builder/goldmark_extensions.go
package builder

import (
	"bufio"
	"bytes"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"pagina/internal/highlight"
	"pagina/internal/nav"
)

var (
	hrefKey  = parser.NewContextKey()
	rulesKey = parser.NewContextKey()
)

// pageLinker maps page numbers to links for the output being produced.
type pageLinker struct {
	href  func(int) string
	total int
}

// pageLinkTransformer rewrites links written as "?p=N" or "index.html?p=N" so they
// point at the right place in both the static build and the dev server.
type pageLinkTransformer struct {
}

func newPageLinkTransformer() parser.ASTTransformer {
	return &pageLinkTransformer{}
}

func (t *pageLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	linker, ok := pc.Get(hrefKey).(pageLinker)
	if !ok || linker.href == nil {
		return
	}
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if page, ok := pageTarget(string(link.Destination)); ok {
			current := nav.Resolve(page, linker.total).Current
			link.Destination = []byte(linker.href(current))
		}
		return ast.WalkContinue, nil
	})
}

// pageTarget recognises in-document page links.
func pageTarget(dest string) (int, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return 0, false
	}
	if u.Path != "" && u.Path != "index.html" {
		return 0, false
	}
	q := u.Query()
	if !q.Has("p") {
		return 0, false
	}
	return nav.ParseRequested(q.Get("p")), true
}

// textHighlighter applies highlight rules to the text nodes of a document. Link and
// image destinations, code and raw HTML are left alone.
type textHighlighter struct {
}

func newTextHighlighter() parser.ASTTransformer {
	return &textHighlighter{}
}

func (t *textHighlighter) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	rules, _ := pc.Get(rulesKey).([]highlight.Rule)
	if len(rules) == 0 {
		return
	}
	var texts []*ast.Text
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.CodeSpan, *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if !n.IsRaw() {
				texts = append(texts, n)
			}
		}
		return ast.WalkContinue, nil
	})

	source := reader.Source()
	for _, n := range texts {
		escaped := escapeText(n.Segment.Value(source))
		marked := highlight.Apply(escaped, rules)
		if marked == escaped {
			continue
		}
		if n.HardLineBreak() {
			marked += "<br>\n"
		} else if n.SoftLineBreak() {
			marked += "\n"
		}
		// code strings are written as is
		s := ast.NewString([]byte(marked))
		s.SetCode(true)
		n.Parent().ReplaceChild(n.Parent(), n, s)
	}
}

// escapeText escapes a text segment the way the HTML renderer would.
func escapeText(value []byte) string {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	html.DefaultWriter.Write(w, value)
	w.Flush()
	return buf.String()
}

// sanitizedRawHTML renders raw HTML from the source through a sanitizer policy
// instead of omitting it.
type sanitizedRawHTML struct {
	policy *bluemonday.Policy
}

func (r *sanitizedRawHTML) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
}

func (r *sanitizedRawHTML) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	var raw bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		raw.Write(segment.Value(source))
	}
	_, _ = w.Write(r.policy.SanitizeBytes(raw.Bytes()))
	return ast.WalkSkipChildren, nil
}

func (r *sanitizedRawHTML) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.HTMLBlock)
	var raw bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		raw.Write(line.Value(source))
	}
	if n.HasClosure() {
		raw.Write(n.ClosureLine.Value(source))
	}
	_, _ = w.Write(r.policy.SanitizeBytes(raw.Bytes()))
	return ast.WalkContinue, nil
}
