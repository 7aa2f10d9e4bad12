package domain

import (
	"fmt"
	"strings"
)

// Continent is the persisted region ordinal. The values are stored as-is and must not change.
type Continent int

const (
	Asia       Continent = 1
	Europe     Continent = 2
	America    Continent = 3
	Africa     Continent = 4
	Oceania    Continent = 5
	Antarctica Continent = 6
)

// AllContinentsName is the display name of the pseudo-filter covering every continent.
const AllContinentsName = "All Continents"

// Continents returns every continent in ordinal order.
func Continents() []Continent {
	return []Continent{Asia, Europe, America, Africa, Oceania, Antarctica}
}

func (c Continent) Valid() bool {
	return c >= Asia && c <= Antarctica
}

func (c Continent) String() string {
	switch c {
	case Asia:
		return "Asia"
	case Europe:
		return "Europe"
	case America:
		return "America"
	case Africa:
		return "Africa"
	case Oceania:
		return "Oceania"
	case Antarctica:
		return "Antarctica"
	}
	return fmt.Sprintf("Continent(%d)", int(c))
}

// Emoji is the decorative glyph shown next to the continent name.
func (c Continent) Emoji() string {
	switch c {
	case Asia:
		return "🌏"
	case America:
		return "🌎"
	case Oceania:
		return "🏝️"
	case Antarctica:
		return "🧊"
	}
	return "🌍"
}

// ParseContinent accepts a continent name (any case) or its ordinal.
func ParseContinent(raw string) (Continent, error) {
	s := strings.TrimSpace(raw)
	for _, c := range Continents() {
		if strings.EqualFold(s, c.String()) || s == fmt.Sprint(int(c)) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown continent %q", raw)
}

// ContinentFilter scopes a quiz to a single continent or to all of them.
type ContinentFilter struct {
	All       bool
	Continent Continent
}

func AllContinents() ContinentFilter {
	return ContinentFilter{All: true}
}

func OnlyContinent(c Continent) ContinentFilter {
	return ContinentFilter{Continent: c}
}

// ParseContinentFilter accepts "all" (or an empty string) or anything ParseContinent accepts.
func ParseContinentFilter(raw string) (ContinentFilter, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "all") || strings.EqualFold(s, AllContinentsName) {
		return AllContinents(), nil
	}
	c, err := ParseContinent(s)
	if err != nil {
		return ContinentFilter{}, err
	}
	return OnlyContinent(c), nil
}

// DisplayName is the denormalized name stored on quiz results.
func (f ContinentFilter) DisplayName() string {
	if f.All {
		return AllContinentsName
	}
	return f.Continent.String()
}

// Key is a stable identifier usable in cache keys.
func (f ContinentFilter) Key() string {
	if f.All {
		return "all"
	}
	return strings.ToLower(f.Continent.String())
}

// Matches reports whether a question from continent c belongs to the filter.
func (f ContinentFilter) Matches(c Continent) bool {
	return f.All || f.Continent == c
}

// Selected is the ordinal persisted on results; the "all" filter has no backing member and stores 0.
func (f ContinentFilter) Selected() Continent {
	if f.All {
		return 0
	}
	return f.Continent
}
