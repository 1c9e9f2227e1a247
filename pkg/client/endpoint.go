package client

import "github.com/hoyobot/hoyobot-go/pkg/games"

// Selector tracks the active base URL for a game's API family and advances
// through the fallback list when told to. One instance per game, used by a
// single workflow at a time; not safe for concurrent use.
type Selector struct {
	current  string
	fallback []string
	cursor   int
}

// NewSelector starts at the primary endpoint.
func NewSelector(ep games.Endpoints) *Selector {
	return &Selector{
		current:  ep.Primary,
		fallback: ep.Fallback,
	}
}

// Current returns the active base URL.
func (s *Selector) Current() string {
	return s.current
}

// Advance switches to the next unused fallback URL. Once the list is
// exhausted it returns false and leaves the current URL unchanged.
func (s *Selector) Advance() bool {
	if s.cursor >= len(s.fallback) {
		return false
	}
	s.current = s.fallback[s.cursor]
	s.cursor++
	return true
}
