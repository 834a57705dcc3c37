package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		rules []Rule
		want  string
	}{
		{
			name: "no rules",
			text: "the cat sat",
			want: "the cat sat",
		},
		{
			name:  "whole word only",
			text:  "the cat sat on the concatenated cat.",
			rules: []Rule{{Word: "cat", Color: "#ff0000"}},
			want:  `the <span class="hl" style="color:#ff0000">cat</span> sat on the concatenated <span class="hl" style="color:#ff0000">cat</span>.`,
		},
		{
			name:  "case-insensitive keeps original case",
			text:  "Cat and CAT",
			rules: []Rule{{Word: "cat", Color: "red"}},
			want:  `<span class="hl" style="color:red">Cat</span> and <span class="hl" style="color:red">CAT</span>`,
		},
		{
			name:  "style order is fixed",
			text:  "boom",
			rules: []Rule{{Word: "boom", Color: "red", Size: "2em", Weight: "700", Underline: true, Background: "#ff0"}},
			want:  `<span class="hl" style="color:red;font-size:2em;font-weight:700;text-decoration:underline;background:#ff0">boom</span>`,
		},
		{
			name:  "metacharacters are literal",
			text:  "a.b axb",
			rules: []Rule{{Word: "a.b", Color: "red"}},
			want:  `<span class="hl" style="color:red">a.b</span> axb`,
		},
		{
			name:  "dollar signs are not expanded",
			text:  "pay now",
			rules: []Rule{{Word: "pay", Color: "$1"}},
			want:  `<span class="hl" style="color:$1">pay</span> now`,
		},
		{
			name:  "later rules see earlier markup",
			text:  "cat",
			rules: []Rule{{Word: "cat", Color: "red"}, {Word: "red", Color: "blue"}},
			want:  `<span class="hl" style="color:<span class="hl" style="color:blue">red</span>">cat</span>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.text, tt.rules))
		})
	}
}

func TestApplyIsOrderDependent(t *testing.T) {
	a := Rule{Word: "hl", Color: "red"}
	b := Rule{Word: "cat", Color: "blue"}
	assert.NotEqual(t, Apply("cat hl", []Rule{a, b}), Apply("cat hl", []Rule{b, a}))
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, `the <span class="hl" style="color:#ff0000">cat</span> sat`, Highlight("the cat sat", "cat:#ff0000;bad-clause-no-colon"))
	assert.Equal(t, "plain", Highlight("plain", ""))
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, []string{"one", "two\nlines", "three"}, Paragraphs("one\n\ntwo\nlines\n\nthree"))
	assert.Equal(t, []string{"single"}, Paragraphs("single"))
}
