package league

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLeague = errors.New("unknown league")

// League is one supported sport/competition family.
type League string

const (
	NBA League = "NBA"
	NFL League = "NFL"
)

var paths = map[League]string{
	NBA: "basketball/nba",
	NFL: "football/nfl",
}

// All returns the supported leagues in display order.
func All() []League {
	return []League{NBA, NFL}
}

// Path maps a league to the provider path segment. It returns an empty string
// for leagues outside the supported set.
func Path(l League) string {
	return paths[l]
}

func Parse(raw string) (League, error) {
	candidate := League(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := paths[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLeague, raw)
	}
	return candidate, nil
}

func (l League) Validate() error {
	if _, ok := paths[l]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLeague, string(l))
	}
	return nil
}

func (l League) String() string {
	return string(l)
}
