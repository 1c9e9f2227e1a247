package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoyobot/hoyobot-go/pkg/games"
)

func TestSelectorAdvance(t *testing.T) {
	s := NewSelector(games.Endpoints{
		Primary:  "https://primary.example",
		Fallback: []string{"https://fb1.example", "https://fb2.example"},
	})

	assert.Equal(t, "https://primary.example", s.Current())

	assert.True(t, s.Advance())
	assert.Equal(t, "https://fb1.example", s.Current())

	assert.True(t, s.Advance())
	assert.Equal(t, "https://fb2.example", s.Current())

	// Exhausted: refuses and leaves state unchanged.
	assert.False(t, s.Advance())
	assert.Equal(t, "https://fb2.example", s.Current())
	assert.False(t, s.Advance())
	assert.Equal(t, "https://fb2.example", s.Current())
}

func TestSelectorNoFallback(t *testing.T) {
	s := NewSelector(games.Endpoints{Primary: "https://only.example"})
	assert.False(t, s.Advance())
	assert.Equal(t, "https://only.example", s.Current())
}
