// internal/meta/meta.go
package meta

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Meta holds the directives found at the top of a page. An empty field means the
// directive was not given.
type Meta struct {
	Bg        string // base background color
	BgImage   string
	Img       string // inline illustration shown above the text
	ImgAlt    string
	Highlight string // raw highlight spec, see highlight.ParseRules

	// Author bookkeeping only, never rendered.
	Page  string
	Title string
	Label string
	Note  string
}

// Parse strips the leading directive block and any author comments that follow it
// from a page and returns the remaining text together with the collected metadata.
//
// Directives look like [key=value], one after another at the very start of the page.
// Comments are lines starting with "//" or ";;" followed by whitespace. Anything else
// ends the block, even if a later line would match.
func Parse(raw string) (string, Meta) {
	var m Meta
	text := raw
	for {
		key, value, rest, ok := cutDirective(text)
		if !ok {
			break
		}
		m.set(strings.ToLower(key), unwrapURL(strings.TrimSpace(value)))
		text = rest
	}
	for {
		rest, ok := cutComment(text)
		if !ok {
			break
		}
		text = rest
	}
	return strings.TrimSpace(text), m
}

func (m *Meta) set(key, value string) {
	switch key {
	case "bg", "bg-color":
		m.Bg = value
	case "bg-image":
		m.BgImage = value
	case "img":
		m.Img = value
	case "img-alt":
		m.ImgAlt = value
	case "hl", "highlight":
		m.Highlight = value
	case "page":
		m.Page = value
	case "title":
		m.Title = value
	case "label":
		m.Label = value
	case "note":
		m.Note = value
	}
}

// cutDirective matches `ws* "[" key "=" value "]" ws*` at the front of s.
func cutDirective(s string) (key, value, rest string, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if !strings.HasPrefix(s, "[") {
		return "", "", "", false
	}
	i := 1
	for i < len(s) && isKeyByte(s[i]) {
		i++
	}
	if i == 1 || i >= len(s) || s[i] != '=' {
		return "", "", "", false
	}
	key = s[1:i]
	end := strings.IndexByte(s[i+1:], ']')
	if end <= 0 {
		// no closing bracket, or an empty value
		return "", "", "", false
	}
	value = s[i+1 : i+1+end]
	rest = strings.TrimLeftFunc(s[i+2+end:], unicode.IsSpace)
	return key, value, rest, true
}

func isKeyByte(c byte) bool {
	return c == '-' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// cutComment removes one author comment line from the front of s.
func cutComment(s string) (string, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if !strings.HasPrefix(s, "//") && !strings.HasPrefix(s, ";;") {
		return "", false
	}
	line, rest, found := strings.Cut(s[2:], "\n")
	if r, _ := utf8.DecodeRuneInString(line); line != "" && !unicode.IsSpace(r) {
		return "", false
	}
	if !found {
		return "", true
	}
	return rest, true
}

// unwrapURL turns `url( "a.png" )` into `a.png`. Other values are returned as is.
func unwrapURL(v string) string {
	if len(v) < 5 || !strings.EqualFold(v[:4], "url(") || v[len(v)-1] != ')' {
		return v
	}
	inner := strings.TrimSpace(v[4 : len(v)-1])
	if inner != "" && (inner[0] == '"' || inner[0] == '\'') {
		inner = inner[1:]
	}
	if inner != "" && (inner[len(inner)-1] == '"' || inner[len(inner)-1] == '\'') {
		inner = inner[:len(inner)-1]
	}
	return inner
}
