// internal/highlight/engine.go
package highlight

import (
	"regexp"
	"strings"
)

// Apply wraps the words named by rules in styled spans. Rules run one after another
// over the text produced by the previous rule, so a later rule may match inside
// markup inserted by an earlier one. Output depends on rule order.
func Apply(text string, rules []Rule) string {
	for _, rule := range rules {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(rule.Word) + `\b`)
		open := rule.openTag()
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return open + match + "</span>"
		})
	}
	return text
}

// Highlight parses spec and applies the resulting rules to text.
func Highlight(text, spec string) string {
	return Apply(text, ParseRules(spec))
}

// Paragraphs splits highlighted text on blank lines.
func Paragraphs(text string) []string {
	return strings.Split(text, "\n\n")
}

func (r Rule) openTag() string {
	var styles []string
	if r.Color != "" {
		styles = append(styles, "color:"+r.Color)
	}
	if r.Size != "" {
		styles = append(styles, "font-size:"+r.Size)
	}
	if r.Weight != "" {
		styles = append(styles, "font-weight:"+r.Weight)
	}
	if r.Underline {
		styles = append(styles, "text-decoration:underline")
	}
	if r.Background != "" {
		styles = append(styles, "background:"+r.Background)
	}
	if len(styles) == 0 {
		return `<span class="hl">`
	}
	return `<span class="hl" style="` + strings.Join(styles, ";") + `">`
}
