package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequested(t *testing.T) {
	tests := map[string]int{
		"":       1,
		"abc":    1,
		"0":      1,
		"-3":     1,
		"1":      1,
		"7":      7,
		" 12 ":   12,
		"+4":     4,
		"3abc":   3,
		"2.9":    2,
		"999999": 999999,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseRequested(raw), "raw %q", raw)
	}
	assert.Equal(t, math.MaxInt, ParseRequested("99999999999999999999999"))
	assert.Equal(t, 1, ParseRequested("-99999999999999999999999"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		total     int
		current   int
		prev      int
		next      int
	}{
		{name: "below range wraps back", requested: 0, total: 5, current: 1, prev: 5, next: 2},
		{name: "last page wraps forward", requested: 5, total: 5, current: 5, prev: 4, next: 1},
		{name: "middle", requested: 3, total: 5, current: 3, prev: 2, next: 4},
		{name: "above range clamps", requested: 42, total: 5, current: 5, prev: 4, next: 1},
		{name: "single page", requested: 1, total: 1, current: 1, prev: 1, next: 1},
		{name: "empty document", requested: 3, total: 0, current: 1, prev: 1, next: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Resolve(tt.requested, tt.total)
			assert.Equal(t, tt.current, s.Current)
			assert.Equal(t, tt.prev, s.Prev())
			assert.Equal(t, tt.next, s.Next())
			assert.Equal(t, tt.current-1, s.Index())
		})
	}
}

func TestHasPrevNext(t *testing.T) {
	first := Resolve(1, 3)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	last := Resolve(3, 3)
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
}
