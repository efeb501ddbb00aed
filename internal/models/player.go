package models

import "fmt"

// Position is the single position class a player occupies.
type Position string

const (
	Goalkeeper Position = "GK"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Forward    Position = "FWD"
)

// AllPositions lists position classes in display order.
var AllPositions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// ParsePosition accepts both the short codes and the long names used by
// forecast exports ("Goalkeeper", "Defender", ...).
func ParsePosition(s string) (Position, error) {
	switch s {
	case "GK", "GKP", "Goalkeeper":
		return Goalkeeper, nil
	case "DEF", "Defender":
		return Defender, nil
	case "MID", "Midfielder":
		return Midfielder, nil
	case "FWD", "Forward":
		return Forward, nil
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// Player is a read-only input record for one solve. ExpectedScore is the
// forecast of points for the upcoming gameweek; Price is in budget units.
type Player struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Club          string   `json:"club"`
	Position      Position `json:"position"`
	Price         float64  `json:"price"`
	ExpectedScore float64  `json:"expected_score"`
}
