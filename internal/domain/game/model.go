package game

import "strings"

// StatusVariant is the coarse display bucket derived from provider status text.
type StatusVariant string

const (
	VariantLive      StatusVariant = "live"
	VariantFinal     StatusVariant = "final"
	VariantScheduled StatusVariant = "scheduled"
)

const (
	UnknownDate     = "unknown"
	HomePlaceholder = "Home"
	AwayPlaceholder = "Away"
)

// Side is one competitor of a game. Absent fields are empty strings.
type Side struct {
	Name  string
	Short string
	Logo  string
	Score string
}

// Game is a flat view of one scoreboard event.
type Game struct {
	ID     string
	Status string
	Date   string
	Home   Side
	Away   Side
}

// Variant classifies the game's status text.
func (g Game) Variant() StatusVariant {
	return StatusVariantOf(g.Status)
}

// StatusVariantOf matches free-text provider status strings, case-insensitively:
// "live" or "in progress" is live, otherwise "final" is final, anything else is scheduled.
func StatusVariantOf(status string) StatusVariant {
	s := strings.ToLower(status)
	if strings.Contains(s, "live") || strings.Contains(s, "in progress") {
		return VariantLive
	}
	if strings.Contains(s, "final") {
		return VariantFinal
	}
	return VariantScheduled
}
