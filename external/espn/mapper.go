package espn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/sports-scoreboard/internal/domain/game"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/summary"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/team"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MapEventsToGames flattens every scoreboard event into a Game, preserving
// event order. It never fails: missing fields resolve to defaults.
func MapEventsToGames(p Payload) []game.Game {
	items, _ := p["events"].([]any)
	out := make([]game.Game, 0, len(items))
	for idx, item := range items {
		out = append(out, mapEvent(asMap(item), idx))
	}
	return out
}

func mapEvent(ev map[string]any, idx int) game.Game {
	comp := firstObject(ev, "competitions")
	home, away := splitCompetitors(comp)

	date := firstNonEmpty(stringAt(ev, "date"), stringAt(comp, "date"), game.UnknownDate)

	return game.Game{
		ID: firstNonEmpty(
			stringAt(ev, "id"),
			stringAt(comp, "id"),
			fmt.Sprintf("%s-%d", date, idx),
		),
		Status: eventStatus(ev),
		Date:   date,
		Home:   mapSide(home, game.HomePlaceholder),
		Away:   mapSide(away, game.AwayPlaceholder),
	}
}

// eventStatus prefers the short form of a status.type block.
func eventStatus(src map[string]any) string {
	return firstNonEmpty(
		stringAt(src, "status", "type", "shortDetail"),
		stringAt(src, "status", "type", "description"),
	)
}

// splitCompetitors picks the first home and the first away competitor.
func splitCompetitors(comp map[string]any) (home, away map[string]any) {
	for _, c := range objects(comp["competitors"]) {
		switch stringAt(c, "homeAway") {
		case "home":
			if home == nil {
				home = c
			}
		case "away":
			if away == nil {
				away = c
			}
		}
	}
	return home, away
}

func mapSide(competitor map[string]any, placeholder string) game.Side {
	t := objectAt(competitor, "team")
	return game.Side{
		Name:  firstNonEmpty(stringAt(t, "displayName"), placeholder),
		Short: stringAt(t, "abbreviation"),
		Logo:  stringAt(t, "logo"),
		Score: stringAt(competitor, "score"),
	}
}

// deriveTeamID derives a stable id from a team object: its id, else abbreviation,
// else display name. Empty means the team cannot be identified.
func deriveTeamID(t map[string]any) string {
	return firstNonEmpty(
		stringAt(t, "id"),
		stringAt(t, "abbreviation"),
		stringAt(t, "displayName"),
	)
}

// AggregateTeams collects the distinct teams of a scoreboard. Later sightings
// of an id replace earlier ones. The result is sorted by name for English.
func AggregateTeams(p Payload) []team.Team {
	byID := make(map[string]team.Team)
	for _, ev := range p.Events() {
		comp := firstObject(ev, "competitions")
		for _, c := range objects(comp["competitors"]) {
			t := objectAt(c, "team")
			if t == nil {
				continue
			}
			id := deriveTeamID(t)
			if id == "" {
				continue
			}
			byID[id] = team.Team{
				ID:           id,
				Name:         stringAt(t, "displayName"),
				Abbreviation: stringAt(t, "abbreviation"),
				Logo:         stringAt(t, "logo"),
			}
		}
	}

	out := make([]team.Team, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	SortTeams(out)
	return out
}

// SortTeams orders teams by name with English collation, then by id so the
// order does not depend on map iteration.
func SortTeams(teams []team.Team) {
	col := collate.New(language.English)
	sort.SliceStable(teams, func(i, j int) bool {
		if cmp := col.CompareString(teams[i].Name, teams[j].Name); cmp != 0 {
			return cmp < 0
		}
		return teams[i].ID < teams[j].ID
	})
}

// FilterEventsByTeam returns the games whose first competition includes the
// given team id, in scoreboard order. A limit of zero or less keeps all.
func FilterEventsByTeam(p Payload, teamID string, limit int) []game.Game {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return []game.Game{}
	}

	items, _ := p["events"].([]any)
	out := make([]game.Game, 0)
	for idx, item := range items {
		ev := asMap(item)
		comp := firstObject(ev, "competitions")
		if !hasCompetitor(comp, teamID) {
			continue
		}
		out = append(out, mapEvent(ev, idx))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func hasCompetitor(comp map[string]any, teamID string) bool {
	for _, c := range objects(comp["competitors"]) {
		if stringAt(c, "team", "id") == teamID {
			return true
		}
	}
	return false
}

// MapSummary flattens a game summary document.
func MapSummary(p Payload) summary.Summary {
	comp := firstObject(p, "header", "competitions")
	home, away := splitCompetitors(comp)
	headline := firstObject(comp, "headlines")

	location := make([]string, 0, 2)
	for _, part := range []string{
		stringAt(p, "gameInfo", "venue", "address", "city"),
		stringAt(p, "gameInfo", "venue", "address", "state"),
	} {
		if part != "" {
			location = append(location, part)
		}
	}

	return summary.Summary{
		Status:   eventStatus(comp),
		Headline: firstNonEmpty(stringAt(headline, "headline"), stringAt(headline, "shortLinkText")),
		Venue:    stringAt(p, "gameInfo", "venue", "fullName"),
		Location: strings.Join(location, ", "),
		Home:     mapSide(home, game.HomePlaceholder),
		Away:     mapSide(away, game.AwayPlaceholder),
	}
}
