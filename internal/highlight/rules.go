// internal/highlight/rules.go
package highlight

import (
	"strings"
)

// Rule styles every whole-word, case-insensitive occurrence of Word.
type Rule struct {
	Word       string
	Color      string
	Size       string
	Weight     string
	Underline  bool
	Background string
}

// ParseRules reads a highlight spec of the form
//
//	word:color[|size=V][|weight=V][|underline][|bg=V] ; word2:color2 ...
//
// Clauses are separated by ';' or ','. A clause without a word or a color is
// skipped, as is any modifier that is not understood.
func ParseRules(spec string) []Rule {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	var rules []Rule
	for _, clause := range strings.FieldsFunc(spec, isClauseSeparator) {
		if rule, ok := parseClause(clause); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

func isClauseSeparator(r rune) bool {
	return r == ';' || r == ','
}

func parseClause(clause string) (Rule, bool) {
	segments := strings.Split(clause, "|")
	word, color, found := strings.Cut(strings.TrimSpace(segments[0]), ":")
	if !found {
		return Rule{}, false
	}
	rule := Rule{Word: strings.TrimSpace(word), Color: strings.TrimSpace(color)}
	if rule.Word == "" || rule.Color == "" {
		return Rule{}, false
	}
	for _, mod := range segments[1:] {
		rule.applyModifier(strings.TrimSpace(mod))
	}
	return rule, true
}

func (r *Rule) applyModifier(mod string) {
	if strings.EqualFold(mod, "underline") {
		r.Underline = true
		return
	}
	key, value, found := strings.Cut(mod, "=")
	value = strings.TrimSpace(value)
	if !found || value == "" || strings.Contains(value, "=") {
		return
	}
	switch strings.ToLower(key) {
	case "size":
		r.Size = value
	case "weight":
		r.Weight = value
	case "bg", "background":
		r.Background = value
	}
}
