package summary

import "github.com/riskibarqy/sports-scoreboard/internal/domain/game"

// Summary is the flattened detail view of a single event.
type Summary struct {
	Status   string
	Headline string
	Venue    string
	Location string
	Home     game.Side
	Away     game.Side
}

// HasVenue reports whether any venue information is available.
func (s Summary) HasVenue() bool {
	return s.Venue != "" || s.Location != ""
}
