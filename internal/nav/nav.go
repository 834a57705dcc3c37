// internal/nav/nav.go
package nav

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// State is the position of the reader within the document.
type State struct {
	Current int
	Total   int
}

// ParseRequested reads a page selector the way a browser's parseInt would:
// leading whitespace and sign allowed, digits up to the first non-digit.
// Anything that does not yield a number >= 1 selects the first page.
func ParseRequested(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		// too large to represent, it clamps to the last page anyway
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Resolve clamps the requested page into [1, total]. A document always has at least
// one page to show, even when it is empty.
func Resolve(requested, total int) State {
	if total < 1 {
		total = 1
	}
	current := requested
	switch {
	case current < 1:
		current = 1
	case current > total:
		current = total
	}
	return State{Current: current, Total: total}
}

// Prev is the page the back link points to; it wraps to the last page.
func (s State) Prev() int {
	if s.Current == 1 {
		return s.Total
	}
	return s.Current - 1
}

// Next is the page the forward link points to; it wraps to the first page.
func (s State) Next() int {
	if s.Current == s.Total {
		return 1
	}
	return s.Current + 1
}

// HasPrev and HasNext report whether a non-wrapping step is possible,
// used for keyboard navigation.
func (s State) HasPrev() bool { return s.Current > 1 }

func (s State) HasNext() bool { return s.Current < s.Total }

// Index is the zero-based position of the current page in the page list.
func (s State) Index() int {
	return s.Current - 1
}
