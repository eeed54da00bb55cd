package team

// Team is a club seen in a scoreboard snapshot.
type Team struct {
	ID           string
	Name         string
	Abbreviation string
	Logo         string
}
