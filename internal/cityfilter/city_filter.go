package cityfilter

import (
	"sort"
	"strings"

	"atlas-tracker/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Marker names follow the "<Frame> <City> <street...>" convention of the
// upstream API, so the city is the second whitespace token. Case mapping is
// locale-aware because the data is Finnish ("Jyväskylä").

// CityOf returns the lowercased city token of a marker name, or an empty
// string for single-word names.
func CityOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return ""
	}
	return cases.Lower(language.Finnish).String(fields[1])
}

// ExtractCities derives the selectable city list from the base location set:
// unique city tokens, capitalized, sorted. Recompute after every base refresh.
func ExtractCities(locations []*models.Location) []string {
	seen := make(map[string]bool)
	for _, location := range locations {
		city := CityOf(location.Name)
		if city != "" {
			seen[city] = true
		}
	}

	title := cases.Title(language.Finnish)
	cities := make([]string, 0, len(seen))
	for city := range seen {
		cities = append(cities, title.String(city))
	}
	sort.Strings(cities)
	return cities
}

// Matches reports whether a marker name passes the selected city filter.
// An empty selection matches everything; a single-word name can never match
// an active filter.
func Matches(name, selected string) bool {
	if selected == "" {
		return true
	}
	city := CityOf(name)
	if city == "" {
		return false
	}
	return city == cases.Lower(language.Finnish).String(selected)
}
