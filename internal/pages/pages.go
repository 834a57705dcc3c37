// internal/pages/pages.go
package pages

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Separator is the delimiter line written between pages when they are joined back together.
const Separator = "\n*\n"

// Split divides raw text into pages. A page break is a line holding a single '*'
// (optionally padded with spaces or tabs) with a newline on both sides.
// Pages are trimmed and empty ones are dropped.
func Split(raw string) []string {
	if raw == "" {
		return nil
	}
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	var (
		result  []string
		current []string
	)
	flush := func() {
		if page := strings.TrimSpace(strings.Join(current, "\n")); page != "" {
			result = append(result, page)
		}
		current = current[:0]
	}
	for i, line := range lines {
		// The first line has no newline before it and the last one none after it.
		if i > 0 && i < len(lines)-1 && isDelimiter(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return result
}

func isDelimiter(line string) bool {
	return strings.TrimFunc(line, isHorizontalSpace) == "*"
}

func isHorizontalSpace(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}

// Join reassembles pages into a single document using the page break line.
func Join(pages []string) string {
	return strings.Join(pages, Separator)
}

// ExportWithTags joins pages after making sure every one of them starts with a
// [page=N] directive. Pages that already declare one keep it.
func ExportWithTags(pages []string) string {
	tagged := make([]string, len(pages))
	for i, p := range pages {
		if !strings.HasPrefix(strings.TrimLeftFunc(p, unicode.IsSpace), "[page=") {
			p = "[page=" + strconv.Itoa(i+1) + "]\n" + p
		}
		tagged[i] = strings.TrimSpace(p)
	}
	return Join(tagged)
}

// Placeholders generates n stand-in pages for sites without any content yet.
func Placeholders(n int) []string {
	result := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		result = append(result, fmt.Sprintf("Placeholder content for page %d.", i))
	}
	return result
}

// Load reads a page source file and splits it. A leading byte order mark is dropped.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("page source is not valid UTF-8: %s", path)
	}
	return Split(strings.TrimPrefix(string(data), "\ufeff")), nil
}
